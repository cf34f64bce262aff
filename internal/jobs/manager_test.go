package jobs

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	internalErrors "github.com/gcbaptista/gedcom-search/internal/errors"
	"github.com/gcbaptista/gedcom-search/model"
)

func waitForJob(t *testing.T, manager *Manager, jobID string) model.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := manager.Get(jobID)
		if err != nil {
			t.Fatalf("Failed to get job: %v", err)
		}
		if job.Status.Finished() {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Job %s did not finish in time", jobID)
	return model.Job{}
}

func TestJobManager_Submit(t *testing.T) {
	manager := NewManager(2, nil)
	defer manager.Stop()

	jobID := manager.Submit(model.JobTypeImportRecords, map[string]string{"records": "100"},
		func(ctx context.Context, progress ProgressFunc) error {
			progress(50, 100, "Halfway done")
			progress(100, 100, "Completed")
			return nil
		})

	if jobID == "" {
		t.Fatal("Expected non-empty job ID")
	}

	job := waitForJob(t, manager, jobID)
	if job.Status != model.JobStatusCompleted {
		t.Errorf("Expected job status %s, got %s", model.JobStatusCompleted, job.Status)
	}
	if job.Type != model.JobTypeImportRecords {
		t.Errorf("Expected job type %s, got %s", model.JobTypeImportRecords, job.Type)
	}
	if job.Metadata["records"] != "100" {
		t.Errorf("Expected metadata to be kept, got %v", job.Metadata)
	}
	if job.Progress == nil || job.Progress.Current != 100 || job.Progress.Total != 100 {
		t.Errorf("Unexpected progress: %+v", job.Progress)
	} else if job.Progress.Percentage() != 100 {
		t.Errorf("Expected 100%%, got %v", job.Progress.Percentage())
	}
	if job.StartedAt == nil || job.CompletedAt == nil {
		t.Error("Expected start and completion times to be set")
	}
}

func TestJobManager_FailedJob(t *testing.T) {
	manager := NewManager(1, nil)
	defer manager.Stop()

	jobID := manager.Submit(model.JobTypeImportRecords, nil, func(ctx context.Context, progress ProgressFunc) error {
		return fmt.Errorf("records file is corrupt")
	})

	job := waitForJob(t, manager, jobID)
	if job.Status != model.JobStatusFailed {
		t.Errorf("Expected job status %s, got %s", model.JobStatusFailed, job.Status)
	}
	if job.Error != "records file is corrupt" {
		t.Errorf("Unexpected error message: %q", job.Error)
	}
}

func TestJobManager_StopCancelsRunningJobs(t *testing.T) {
	manager := NewManager(1, nil)

	started := make(chan struct{})
	jobID := manager.Submit(model.JobTypeImportRecords, nil, func(ctx context.Context, progress ProgressFunc) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started

	manager.Stop()

	job, err := manager.Get(jobID)
	if err != nil {
		t.Fatalf("Failed to get job: %v", err)
	}
	if job.Status != model.JobStatusCancelled {
		t.Errorf("Expected job status %s, got %s", model.JobStatusCancelled, job.Status)
	}
}

func TestJobManager_GetUnknownJob(t *testing.T) {
	manager := NewManager(1, nil)
	defer manager.Stop()

	if _, err := manager.Get("missing"); !errors.Is(err, internalErrors.ErrJobNotFound) {
		t.Errorf("Expected job not found, got %v", err)
	}
}

func TestJobManager_ListAndCleanup(t *testing.T) {
	manager := NewManager(2, nil)
	defer manager.Stop()

	ok := manager.Submit(model.JobTypeImportRecords, nil, func(ctx context.Context, progress ProgressFunc) error { return nil })
	failed := manager.Submit(model.JobTypeImportRecords, nil, func(ctx context.Context, progress ProgressFunc) error {
		return fmt.Errorf("boom")
	})
	waitForJob(t, manager, ok)
	waitForJob(t, manager, failed)

	if jobs := manager.List(nil); len(jobs) != 2 {
		t.Errorf("Expected 2 jobs, got %d", len(jobs))
	}
	status := model.JobStatusFailed
	if jobs := manager.List(&status); len(jobs) != 1 || jobs[0].ID != failed {
		t.Errorf("Expected only the failed job, got %+v", jobs)
	}

	if cleaned := manager.CleanupOldJobs(time.Hour); cleaned != 0 {
		t.Errorf("Expected recent jobs to be kept, cleaned %d", cleaned)
	}
	if cleaned := manager.CleanupOldJobs(-time.Second); cleaned != 2 {
		t.Errorf("Expected 2 jobs cleaned, got %d", cleaned)
	}
	if jobs := manager.List(nil); len(jobs) != 0 {
		t.Errorf("Expected no jobs left, got %d", len(jobs))
	}
}
