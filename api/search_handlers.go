package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/gcbaptista/gedcom-search/internal/logger"
	"github.com/gcbaptista/gedcom-search/services"
)

// SearchRequest defines the structure for search queries.
type SearchRequest struct {
	Query      string `json:"query"`
	Limit      *int   `json:"limit,omitempty"`       // Defaults to the configured default limit
	MaxRecords int    `json:"max_records,omitempty"` // Optional: stop after scanning this many records
	TimeoutMs  int    `json:"timeout_ms,omitempty"`  // Optional: return partial results after this long
}

// MultiSearchRequest represents the JSON request for multi-search
type MultiSearchRequest struct {
	Queries   []NamedSearchRequest `json:"queries" binding:"required"`
	Limit     *int                 `json:"limit,omitempty"`
	TimeoutMs int                  `json:"timeout_ms,omitempty"`
}

// NamedSearchRequest represents a single named search query in the request
type NamedSearchRequest struct {
	Name  string `json:"name" binding:"required"`
	Query string `json:"query"`
}

// SearchHandler handles search requests.
// Request Body: SearchRequest
func (api *API) SearchHandler(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Invalid request body: "+err.Error())
		return
	}

	limit := api.defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}
	if result := ValidateLimit("limit", limit, api.maxLimit); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	ctx, cancel := withTimeout(c.Request.Context(), req.TimeoutMs)
	defer cancel()

	results, err := api.engine.Search(ctx, services.SearchQuery{
		QueryString: req.Query,
		Limit:       limit,
		MaxRecords:  req.MaxRecords,
	})
	if err != nil {
		SendEngineError(c, "search", err)
		return
	}

	if results.Partial || len(results.Warnings) > 0 {
		logger.FromContext(c.Request.Context()).Info("search returned incomplete results",
			zap.String("query_id", results.QueryId),
			zap.Bool("partial", results.Partial),
			zap.Int("warnings", len(results.Warnings)),
		)
	}

	c.JSON(http.StatusOK, results)
}

// MultiSearchHandler handles multi-query search requests.
// Request Body: MultiSearchRequest
func (api *API) MultiSearchHandler(c *gin.Context) {
	var req MultiSearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidQuery, "Invalid request body: "+err.Error())
		return
	}

	if result := ValidateMultiSearchRequest(&req, api.maxLimit); result.HasErrors() {
		SendStructuredValidationError(c, result)
		return
	}

	limit := api.defaultLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	multiQuery := services.MultiSearchQuery{
		Queries: make([]services.NamedSearchQuery, len(req.Queries)),
		Limit:   limit,
	}
	for i, q := range req.Queries {
		multiQuery.Queries[i] = services.NamedSearchQuery{Name: q.Name, Query: q.Query}
	}

	ctx, cancel := withTimeout(c.Request.Context(), req.TimeoutMs)
	defer cancel()

	results, err := api.engine.MultiSearch(ctx, multiQuery)
	if err != nil {
		SendEngineError(c, "multi-search", err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func withTimeout(ctx context.Context, timeoutMs int) (context.Context, context.CancelFunc) {
	if timeoutMs <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(timeoutMs)*time.Millisecond)
}
