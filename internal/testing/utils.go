// Package testing provides utilities and helpers for testing the search engine.
package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gcbaptista/gedcom-search/config"
	"github.com/gcbaptista/gedcom-search/internal/engine"
	"github.com/gcbaptista/gedcom-search/model"
	"github.com/gcbaptista/gedcom-search/services"
)

// CreateTestEngine creates an engine persisting to a temporary directory.
// The engine is closed when the test ends.
func CreateTestEngine(t *testing.T, settings config.EngineSettings) *engine.Engine {
	t.Helper()
	eng, err := engine.NewEngine(t.TempDir(), settings, nil)
	require.NoError(t, err, "Failed to create test engine")
	t.Cleanup(eng.Close)
	return eng
}

// SampleRecords returns a small family tree: the Smiths of Boston, the
// Joneses and a parish register mentioning both.
func SampleRecords() []model.Record {
	return []model.Record{
		{Type: model.Individual, ID: "@I1@", Fields: model.Fields{
			"name":             {"John Smith"},
			"note":             {"Blacksmith, emigrated in 1850"},
			"event.place.name": {"Boston, Massachusetts"},
			"event.date":       {"1850"},
		}},
		{Type: model.Individual, ID: "@I2@", Fields: model.Fields{
			"name": {"Mary Jones"},
			"note": {"Born in Cardiff"},
		}},
		{Type: model.Individual, ID: "@I3@", Fields: model.Fields{
			"name": {"Jon Smyth"},
		}},
		{Type: model.Family, ID: "@F1@", Fields: model.Fields{
			"spouseName":   {"John Smith", "Mary Jones"},
			"childrenName": {"William Smith"},
		}},
		{Type: model.Source, ID: "@S1@", Fields: model.Fields{
			"note": {"Parish register of Boston listing John Smith and Mary Jones"},
		}},
		{Type: model.Media, ID: "@M1@", Fields: model.Fields{
			"fileName": {"smith_john_portrait.jpg"},
		}},
	}
}

// AddSampleRecords stores SampleRecords in eng.
func AddSampleRecords(t *testing.T, eng *engine.Engine) []model.Record {
	t.Helper()
	records := SampleRecords()
	require.NoError(t, eng.AddRecords(records), "Failed to add sample records")
	return records
}

// JobPollingOptions configures how tests wait for background jobs
type JobPollingOptions struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

// DefaultJobPollingOptions returns polling options suited to unit tests
func DefaultJobPollingOptions() JobPollingOptions {
	return JobPollingOptions{
		Timeout:      5 * time.Second,
		PollInterval: 10 * time.Millisecond,
	}
}

// WaitForJobCompletion polls a job until it reaches a final status and
// fails the test on timeout.
func WaitForJobCompletion(t *testing.T, importer services.RecordImporter, jobID string, opts JobPollingOptions) model.Job {
	t.Helper()

	deadline := time.Now().Add(opts.Timeout)
	for time.Now().Before(deadline) {
		job, err := importer.GetJob(jobID)
		require.NoError(t, err, "Failed to get job %s", jobID)
		if job.Status.Finished() {
			return job
		}
		time.Sleep(opts.PollInterval)
	}

	t.Fatalf("Job %s did not finish within %v", jobID, opts.Timeout)
	return model.Job{}
}

// SearchTestCase describes an expected ranking for a query
type SearchTestCase struct {
	Name        string
	Query       string
	Limit       int      // 0 uses the default limit
	ExpectedIDs []string // Expected record IDs in rank order; nil expects no hits
}

// RunSearchTests runs search test cases against a searcher and checks the
// ranked record IDs.
func RunSearchTests(t *testing.T, searcher services.Searcher, tests []SearchTestCase) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			query := services.NewSearchQuery(tt.Query)
			if tt.Limit != 0 {
				query.Limit = tt.Limit
			}

			result, err := searcher.Search(context.Background(), query)
			require.NoError(t, err)

			ids := make([]string, 0, len(result.Hits))
			for _, hit := range result.Hits {
				ids = append(ids, hit.RecordID)
			}
			if tt.ExpectedIDs == nil {
				assert.Empty(t, ids)
				return
			}
			assert.Equal(t, tt.ExpectedIDs, ids)
		})
	}
}
