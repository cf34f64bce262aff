package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gcbaptista/gedcom-search/config"
	"github.com/gcbaptista/gedcom-search/model"
	"github.com/gcbaptista/gedcom-search/services"
	"github.com/gcbaptista/gedcom-search/store"
)

// API holds dependencies for API handlers, primarily the search engine.
type API struct {
	engine       services.Engine
	defaultLimit int
	maxLimit     int
	logger       *zap.Logger
}

// NewAPI creates a new API handler structure. Result limits come from settings.
func NewAPI(engine services.Engine, settings config.EngineSettings, logger *zap.Logger) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaultLimit := settings.DefaultResultsLimit
	if defaultLimit <= 0 {
		defaultLimit = config.DefaultResultsLimit
	}
	return &API{
		engine:       engine,
		defaultLimit: defaultLimit,
		maxLimit:     settings.MaxResultsLimit,
		logger:       logger,
	}
}

// SetupRoutes defines all the API routes for the search engine.
func SetupRoutes(router *gin.Engine, engine services.Engine, settings config.EngineSettings, logger *zap.Logger) {
	apiHandler := NewAPI(engine, settings, logger)

	router.Use(RequestIDMiddleware(), LoggerMiddleware(apiHandler.logger))

	// Health check and metrics routes
	router.GET("/health", apiHandler.HealthCheckHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Weight management routes
	weightRoutes := router.Group("/weights")
	{
		weightRoutes.GET("", apiHandler.GetWeightsHandler)      // Current weight model
		weightRoutes.PUT("", apiHandler.UpdateWeightsHandler)   // Merge an override over the defaults
		weightRoutes.DELETE("", apiHandler.ResetWeightsHandler) // Back to the defaults
	}

	// Record management routes
	recordRoutes := router.Group("/records")
	{
		recordRoutes.PUT("", apiHandler.AddRecordsHandler)                // Add/Update records
		recordRoutes.POST("/_import", apiHandler.ImportRecordsHandler)    // Add/Update records on a background job
		recordRoutes.GET("", apiHandler.ListRecordsHandler)               // Counts, or IDs of one type with ?type=
		recordRoutes.GET("/:type/:id", apiHandler.GetRecordHandler)       // Get specific record
		recordRoutes.DELETE("/:type/:id", apiHandler.DeleteRecordHandler) // Delete specific record
	}

	// Job routes
	jobRoutes := router.Group("/jobs")
	{
		jobRoutes.GET("", apiHandler.ListJobsHandler)      // List jobs, optionally ?status=
		jobRoutes.GET("/:jobId", apiHandler.GetJobHandler) // Get job status by ID
	}

	// Search routes
	router.POST("/_search", apiHandler.SearchHandler)
	router.POST("/_multi_search", apiHandler.MultiSearchHandler)
}

// HealthCheckHandler provides a simple health check endpoint
func (api *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "gedcom-search",
		"timestamp": fmt.Sprintf("%d", time.Now().Unix()),
	})
}

// GetWeightsHandler returns the weight model in use.
func (api *API) GetWeightsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, api.engine.Weights())
}

// UpdateWeightsHandler merges a weight override over the defaults.
// Request Body: {"match": {...}, "type": {...}, "object": {...}}, every section optional.
func (api *API) UpdateWeightsHandler(c *gin.Context) {
	var raw map[string]interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	override, err := config.ParseWeightOverride(raw)
	if err != nil {
		SendEngineError(c, "update weights", err)
		return
	}
	if err := api.engine.UpdateWeights(override); err != nil {
		SendEngineError(c, "update weights", err)
		return
	}

	c.JSON(http.StatusOK, api.engine.Weights())
}

// ResetWeightsHandler restores the default weights.
func (api *API) ResetWeightsHandler(c *gin.Context) {
	if err := api.engine.ResetWeights(); err != nil {
		SendEngineError(c, "reset weights", err)
		return
	}
	c.JSON(http.StatusOK, api.engine.Weights())
}

// AddRecordsHandler handles adding/updating records. The body is a single
// record document or a list of them:
//
//	{"type": "indi", "id": "@I1@", "fields": {"name": "John Smith", "event": [{"place": {"name": "Paris"}}]}}
func (api *API) AddRecordsHandler(c *gin.Context) {
	records, ok := bindRecords(c)
	if !ok {
		return
	}

	if err := api.engine.AddRecords(records); err != nil {
		SendEngineError(c, "add records", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d record(s) added", len(records)),
		"count":   len(records),
	})
}

// ImportRecordsHandler validates the records like AddRecordsHandler and
// stores them on a background job.
func (api *API) ImportRecordsHandler(c *gin.Context) {
	records, ok := bindRecords(c)
	if !ok {
		return
	}

	jobID := api.engine.ImportRecordsAsync(records)
	c.JSON(http.StatusAccepted, gin.H{
		"status":  "accepted",
		"message": fmt.Sprintf("Import of %d record(s) started", len(records)),
		"job_id":  jobID,
	})
}

// bindRecords decodes and validates a record document or a list of them.
// It sends the error response itself and reports whether binding succeeded.
func bindRecords(c *gin.Context) ([]model.Record, bool) {
	var rawData interface{}
	if err := c.ShouldBindJSON(&rawData); err != nil {
		SendInvalidJSONError(c, err)
		return nil, false
	}

	var docs []interface{}
	switch v := rawData.(type) {
	case []interface{}:
		docs = v
	case map[string]interface{}:
		docs = []interface{}{v}
	default:
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "Request body must be a record or a list of records")
		return nil, false
	}

	validation := &ValidationResult{Valid: true}
	if len(docs) == 0 {
		validation.AddError("records", "No records provided")
	}

	records := make([]model.Record, 0, len(docs))
	for i, item := range docs {
		doc, ok := item.(map[string]interface{})
		if !ok {
			validation.AddError(fmt.Sprintf("records[%d]", i), "Record must be an object")
			continue
		}
		record, err := store.RecordFromDocument(doc)
		if err != nil {
			validation.AddError(fmt.Sprintf("records[%d]", i), err.Error())
			continue
		}
		records = append(records, record)
	}
	if validation.HasErrors() {
		SendStructuredValidationError(c, validation)
		return nil, false
	}
	return records, true
}

// ListRecordsHandler returns record counts per type, or the IDs of one type
// when ?type= is given. IDs are paginated with ?offset= and ?limit=.
func (api *API) ListRecordsHandler(c *gin.Context) {
	rawType, hasType := c.GetQuery("type")
	if !hasType {
		counts := api.engine.RecordCount()
		total := 0
		for _, n := range counts {
			total += n
		}
		c.JSON(http.StatusOK, gin.H{"counts": counts, "total": total})
		return
	}

	recordType, validation := ValidateRecordType(rawType)
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		validation.AddError("offset", "Offset must be a non-negative integer")
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit <= 0 {
		validation.AddError("limit", "Limit must be a positive integer")
	}
	if validation.HasErrors() {
		SendStructuredValidationError(c, validation)
		return
	}

	ids, err := api.engine.ListRecordIDs(recordType)
	if err != nil {
		SendEngineError(c, "list records", err)
		return
	}

	total := len(ids)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"type":   recordType,
		"ids":    ids[start:end],
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

// GetRecordHandler returns one record.
func (api *API) GetRecordHandler(c *gin.Context) {
	recordType, id, ok := api.recordPathParams(c)
	if !ok {
		return
	}

	record, err := api.engine.GetRecord(recordType, id)
	if err != nil {
		SendEngineError(c, "get record", err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// DeleteRecordHandler removes one record.
func (api *API) DeleteRecordHandler(c *gin.Context) {
	recordType, id, ok := api.recordPathParams(c)
	if !ok {
		return
	}

	if err := api.engine.DeleteRecord(recordType, id); err != nil {
		SendEngineError(c, "delete record", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%s record '%s' deleted", recordType, id)})
}

func (api *API) recordPathParams(c *gin.Context) (model.RecordType, string, bool) {
	recordType, validation := ValidateRecordType(c.Param("type"))
	id := c.Param("id")
	for _, e := range ValidateRecordID(id).Errors {
		validation.AddError(e.Field, e.Message)
	}
	if validation.HasErrors() {
		SendStructuredValidationError(c, validation)
		return "", "", false
	}
	return recordType, id, true
}

// GetJobHandler returns one background job.
func (api *API) GetJobHandler(c *gin.Context) {
	job, err := api.engine.GetJob(c.Param("jobId"))
	if err != nil {
		SendEngineError(c, "get job", err)
		return
	}
	c.JSON(http.StatusOK, job)
}

// ListJobsHandler returns background jobs, newest first.
func (api *API) ListJobsHandler(c *gin.Context) {
	var status *model.JobStatus
	if raw, ok := c.GetQuery("status"); ok {
		s := model.JobStatus(raw)
		status = &s
	}
	jobs := api.engine.ListJobs(status)
	c.JSON(http.StatusOK, gin.H{"jobs": jobs, "total": len(jobs)})
}
