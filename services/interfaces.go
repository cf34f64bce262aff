package services

import (
	"context"

	"github.com/gcbaptista/gedcom-search/config"
	"github.com/gcbaptista/gedcom-search/model"
)

// FieldMatch describes how one field path of a record matched the query.
type FieldMatch struct {
	RecordID     string         `json:"record_id"`
	FieldPath    string         `json:"field_path"`   // e.g. "event.place.name"
	Strategy     model.Strategy `json:"strategy"`     // Winning match strategy
	MatchScore   float64        `json:"match_score"`  // Score of the winning strategy
	FieldWeight  float64        `json:"field_weight"` // Weight of the field path for the record type
	Contribution float64        `json:"contribution"` // MatchScore * FieldWeight
	Value        string         `json:"value"`        // Field value that produced the best score
}

// ScoredResult represents a single record in the search results, including
// the fields that contributed to its score.
type ScoredResult struct {
	RecordID      string           `json:"record_id"`
	RecordType    model.RecordType `json:"record_type"`
	Score         float64          `json:"score"` // TypeWeight * sum of contributions
	MatchedFields []FieldMatch     `json:"matched_fields"`
}

// Warning reports a record that was skipped because the provider could not
// read it. Warnings never abort a search.
type Warning struct {
	RecordType model.RecordType `json:"record_type"`
	RecordID   string           `json:"record_id,omitempty"` // Empty when a whole record type could not be listed
	Message    string           `json:"message"`
}

type SearchResult struct {
	Hits           []ScoredResult `json:"hits"`
	Total          int            `json:"total"` // Matching records before truncation
	Limit          int            `json:"limit"`
	Took           int64          `json:"took"` // milliseconds
	QueryId        string         `json:"query_id"`
	Tokens         []string       `json:"tokens"`          // Normalized query tokens
	RecordsScanned int            `json:"records_scanned"` // Records whose fields were scored
	Partial        bool           `json:"partial"`         // Iteration stopped early (deadline or MaxRecords)
	Warnings       []Warning      `json:"warnings,omitempty"`
}

type SearchQuery struct {
	QueryString string
	Limit       int // Must be positive; see NewSearchQuery for the default
	MaxRecords  int // Optional: stop after scanning this many records (0 = no limit)
}

// NewSearchQuery returns a query with the default results limit.
func NewSearchQuery(queryString string) SearchQuery {
	return SearchQuery{QueryString: queryString, Limit: config.DefaultResultsLimit}
}

// MultiSearchQuery represents a request to execute multiple named search queries
type MultiSearchQuery struct {
	Queries []NamedSearchQuery `json:"queries"`
	Limit   int                `json:"limit,omitempty"`
}

// NamedSearchQuery represents a single named search query within a multi-search request
type NamedSearchQuery struct {
	Name  string `json:"name"`
	Query string `json:"query"`
}

// MultiSearchResult represents the response from a multi-search operation
type MultiSearchResult struct {
	Results          map[string]SearchResult `json:"results"`
	TotalQueries     int                     `json:"total_queries"`
	ProcessingTimeMs float64                 `json:"processing_time_ms"`
}

// RecordProvider supplies already-parsed records. Iteration order must be
// stable: search ties are broken by the order records are listed here.
type RecordProvider interface {
	// RecordTypes returns the record types the provider exposes.
	RecordTypes() []model.RecordType
	// RecordIDs lists the identifiers of every record of a type.
	RecordIDs(recordType model.RecordType) ([]string, error)
	// RecordFields returns the field values of one record keyed by field path.
	RecordFields(recordType model.RecordType, id string) (model.Fields, error)
}

// Searcher defines operations for querying records
type Searcher interface {
	Search(ctx context.Context, query SearchQuery) (SearchResult, error)
}

// MultiSearcher defines operations for performing multiple queries in a single request
type MultiSearcher interface {
	MultiSearch(ctx context.Context, query MultiSearchQuery) (*MultiSearchResult, error)
}

// RecordManager defines operations for adding and removing records
type RecordManager interface {
	AddRecords(records []model.Record) error
	GetRecord(recordType model.RecordType, id string) (model.Record, error)
	DeleteRecord(recordType model.RecordType, id string) error
	ListRecordIDs(recordType model.RecordType) ([]string, error)
	RecordCount() map[model.RecordType]int
}

// WeightManager defines operations for inspecting and replacing the weights
// used for scoring
type WeightManager interface {
	Weights() *config.WeightModel
	UpdateWeights(override *config.WeightOverride) error
	ResetWeights() error
}

// RecordImporter defines operations for importing records on background jobs
type RecordImporter interface {
	ImportRecordsAsync(records []model.Record) string
	GetJob(jobID string) (model.Job, error)
	ListJobs(status *model.JobStatus) []model.Job
}

// Engine combines record management and search with the weights in use.
type Engine interface {
	RecordManager
	RecordImporter
	Searcher
	MultiSearcher
	WeightManager
}
