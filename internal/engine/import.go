package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gcbaptista/gedcom-search/internal/jobs"
	"github.com/gcbaptista/gedcom-search/model"
)

const (
	maxConcurrentJobs = 2
	importBatchSize   = 500
)

// ImportRecordsAsync adds records in batches on a background job and returns
// the job ID. Each batch is stored and persisted before the next one starts,
// so a failed or cancelled import keeps the batches already done.
func (e *Engine) ImportRecordsAsync(records []model.Record) string {
	records = append([]model.Record(nil), records...)
	metadata := map[string]string{"records": strconv.Itoa(len(records))}

	return e.jobManager.Submit(model.JobTypeImportRecords, metadata, func(ctx context.Context, progress jobs.ProgressFunc) error {
		total := len(records)
		progress(0, total, "Importing records")
		for start := 0; start < total; start += importBatchSize {
			if err := ctx.Err(); err != nil {
				return err
			}
			end := start + importBatchSize
			if end > total {
				end = total
			}
			if err := e.AddRecords(records[start:end]); err != nil {
				return fmt.Errorf("records %d-%d: %w", start, end-1, err)
			}
			progress(end, total, fmt.Sprintf("Imported %d of %d records", end, total))
		}
		return nil
	})
}

// GetJob returns a background job by ID.
func (e *Engine) GetJob(jobID string) (model.Job, error) {
	return e.jobManager.Get(jobID)
}

// ListJobs returns background jobs, newest first, optionally filtered by status.
func (e *Engine) ListJobs(status *model.JobStatus) []model.Job {
	return e.jobManager.List(status)
}
