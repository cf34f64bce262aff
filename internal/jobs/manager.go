// Package jobs runs long operations, such as bulk record imports, in the
// background and tracks their progress.
package jobs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gcbaptista/gedcom-search/internal/errors"
	"github.com/gcbaptista/gedcom-search/internal/metrics"
	"github.com/gcbaptista/gedcom-search/model"
)

const (
	cleanupInterval = time.Hour
	finishedJobTTL  = 24 * time.Hour
)

// JobFunc is the work of a job. It should return promptly once ctx is done.
type JobFunc func(ctx context.Context, progress ProgressFunc) error

// ProgressFunc reports how far a job got.
type ProgressFunc func(current, total int, message string)

// Manager handles background job execution and tracking
type Manager struct {
	mu      sync.RWMutex
	jobs    map[string]*model.Job
	workers chan struct{} // Limits concurrent jobs
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	logger  *zap.Logger
}

// NewManager creates a job manager running at most maxWorkers jobs at once
// and starts its cleanup routine. Stop must be called to release it.
func NewManager(maxWorkers int, logger *zap.Logger) *Manager {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		jobs:    make(map[string]*model.Job),
		workers: make(chan struct{}, maxWorkers),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger,
	}

	m.wg.Add(1)
	go m.cleanupRoutine()
	return m
}

// Stop cancels running jobs and waits for them to return. Jobs still waiting
// for a worker end as cancelled.
func (m *Manager) Stop() {
	m.cancel()
	m.wg.Wait()
	m.logger.Debug("job manager stopped")
}

// Submit registers a job and runs fn in the background. The returned ID can
// be polled with Get.
func (m *Manager) Submit(jobType model.JobType, metadata map[string]string, fn JobFunc) string {
	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusPending,
		CreatedAt: time.Now(),
		Metadata:  metadata,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	m.logger.Info("job submitted", zap.String("job_id", job.ID), zap.String("type", string(jobType)))

	m.wg.Add(1)
	go m.run(job.ID, jobType, fn)
	return job.ID
}

func (m *Manager) run(jobID string, jobType model.JobType, fn JobFunc) {
	defer m.wg.Done()

	select {
	case m.workers <- struct{}{}:
	case <-m.ctx.Done():
		m.finish(jobID, jobType, model.JobStatusCancelled, "job manager shutting down", 0)
		return
	}
	defer func() { <-m.workers }()

	m.mu.Lock()
	if job, ok := m.jobs[jobID]; ok {
		now := time.Now()
		job.Status = model.JobStatusRunning
		job.StartedAt = &now
	}
	m.mu.Unlock()

	metrics.JobsRunning.Inc()
	defer metrics.JobsRunning.Dec()

	start := time.Now()
	err := fn(m.ctx, func(current, total int, message string) {
		m.updateProgress(jobID, current, total, message)
	})
	elapsed := time.Since(start)

	switch {
	case err != nil && m.ctx.Err() != nil:
		m.finish(jobID, jobType, model.JobStatusCancelled, err.Error(), elapsed)
	case err != nil:
		m.logger.Warn("job failed", zap.String("job_id", jobID), zap.Duration("elapsed", elapsed), zap.Error(err))
		m.finish(jobID, jobType, model.JobStatusFailed, err.Error(), elapsed)
	default:
		m.logger.Info("job completed", zap.String("job_id", jobID), zap.Duration("elapsed", elapsed))
		m.finish(jobID, jobType, model.JobStatusCompleted, "", elapsed)
	}
}

func (m *Manager) finish(jobID string, jobType model.JobType, status model.JobStatus, errorMsg string, elapsed time.Duration) {
	m.mu.Lock()
	if job, ok := m.jobs[jobID]; ok {
		now := time.Now()
		job.Status = status
		job.Error = errorMsg
		job.CompletedAt = &now
	}
	m.mu.Unlock()

	metrics.JobsTotal.WithLabelValues(string(jobType), string(status)).Inc()
	if status != model.JobStatusCancelled {
		metrics.JobDuration.WithLabelValues(string(jobType)).Observe(elapsed.Seconds())
	}
}

func (m *Manager) updateProgress(jobID string, current, total int, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return
	}
	if job.Progress == nil {
		job.Progress = &model.JobProgress{}
	}
	job.Progress.Current = current
	job.Progress.Total = total
	job.Progress.Message = message
}

// Get returns a copy of a job.
func (m *Manager) Get(jobID string) (model.Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, ok := m.jobs[jobID]
	if !ok {
		return model.Job{}, errors.NewJobNotFoundError(jobID)
	}
	return copyJob(job), nil
}

// List returns copies of all jobs, newest first, optionally filtered by status.
func (m *Manager) List(status *model.JobStatus) []model.Job {
	m.mu.RLock()
	result := make([]model.Job, 0, len(m.jobs))
	for _, job := range m.jobs {
		if status == nil || job.Status == *status {
			result = append(result, copyJob(job))
		}
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func copyJob(job *model.Job) model.Job {
	jobCopy := *job
	if job.Progress != nil {
		progressCopy := *job.Progress
		jobCopy.Progress = &progressCopy
	}
	return jobCopy
}

func (m *Manager) cleanupRoutine() {
	defer m.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CleanupOldJobs(finishedJobTTL)
		case <-m.ctx.Done():
			return
		}
	}
}

// CleanupOldJobs removes finished jobs that completed more than maxAge ago
// and returns how many were removed.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	cleaned := 0
	for jobID, job := range m.jobs {
		if job.Status.Finished() && job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
			delete(m.jobs, jobID)
			cleaned++
		}
	}

	if cleaned > 0 {
		m.logger.Debug("cleaned up old jobs", zap.Int("count", cleaned))
	}
	return cleaned
}
