package engine

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/gcbaptista/gedcom-search/config"
	"github.com/gcbaptista/gedcom-search/internal/jobs"
	"github.com/gcbaptista/gedcom-search/internal/match"
	"github.com/gcbaptista/gedcom-search/internal/phonetic"
	"github.com/gcbaptista/gedcom-search/internal/search"
	"github.com/gcbaptista/gedcom-search/services"
	"github.com/gcbaptista/gedcom-search/store"
)

// Engine owns the record store, the weight model and the search service
// built on top of them. It implements the services.Engine interface.
//
// With a data directory, records and weight updates are persisted after
// every change and reloaded on start. An empty data directory keeps
// everything in memory.
type Engine struct {
	mu       sync.RWMutex
	settings config.EngineSettings
	dataDir  string
	logger   *zap.Logger

	records  *store.RecordStore
	encoder  *phonetic.CachedEncoder
	weights  *config.WeightModel
	searcher *search.Service

	jobManager *jobs.Manager
}

// NewEngine creates a search engine. Settings are completed with defaults
// and validated. Weights come from settings.WeightsFile when set, otherwise
// from a previously persisted weight update, otherwise the defaults.
// Close must be called to stop background jobs.
func NewEngine(dataDir string, settings config.EngineSettings, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	settings.ApplyDefaults()
	if problems := settings.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid engine settings: %v", problems)
	}

	enc, err := phonetic.New(settings.PhoneticAlgorithm)
	if err != nil {
		return nil, err
	}

	eng := &Engine{
		settings: settings,
		dataDir:  dataDir,
		logger:   logger,
		records:  store.NewRecordStore(),
		encoder:  phonetic.NewCachedEncoder(enc, settings.PhoneticCacheSize),
	}

	if dataDir != "" {
		if err := os.MkdirAll(dataDir, dataDirPerm); err != nil {
			logger.Warn("could not create data directory, records will not be persisted",
				zap.String("data_dir", dataDir), zap.Error(err))
		}
		eng.loadRecordsFromDisk()
	}

	weights, err := eng.loadWeights()
	if err != nil {
		return nil, err
	}
	if err := eng.useWeights(weights); err != nil {
		return nil, err
	}
	eng.updateRecordMetrics()
	eng.jobManager = jobs.NewManager(maxConcurrentJobs, logger)

	logger.Info("engine ready",
		zap.String("phonetic_algorithm", eng.encoder.Name()),
		zap.Int("workers", settings.Workers),
		zap.String("data_dir", dataDir),
	)
	return eng, nil
}

// useWeights rebuilds the search service for a new weight model.
// The caller must hold the write lock or be the constructor.
func (e *Engine) useWeights(weights *config.WeightModel) error {
	searcher, err := search.NewService(e.records, weights, match.NewScorer(e.encoder), e.settings.Workers, e.logger)
	if err != nil {
		return fmt.Errorf("failed to create search service: %w", err)
	}
	e.weights = weights
	e.searcher = searcher
	return nil
}

func (e *Engine) currentSearcher() *search.Service {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.searcher
}

// Search delegates to the search service using the current weights.
func (e *Engine) Search(ctx context.Context, query services.SearchQuery) (services.SearchResult, error) {
	return e.currentSearcher().Search(ctx, query)
}

// MultiSearch delegates to the search service using the current weights.
func (e *Engine) MultiSearch(ctx context.Context, query services.MultiSearchQuery) (*services.MultiSearchResult, error) {
	return e.currentSearcher().MultiSearch(ctx, query)
}

// Weights returns the weight model in use.
func (e *Engine) Weights() *config.WeightModel {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.weights
}

// Settings returns a copy of the engine settings.
func (e *Engine) Settings() config.EngineSettings {
	return e.settings
}

// UpdateWeights merges override over the default weights and switches
// searches to the result. Searches already running finish with the old
// weights. With a data directory the new weights are persisted first, and a
// failed write leaves the current weights in place.
func (e *Engine) UpdateWeights(override *config.WeightOverride) error {
	weights, err := config.NewWeightModel(override)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.persistWeightsUnsafe(weights); err != nil {
		return err
	}
	if err := e.useWeights(weights); err != nil {
		return err
	}
	e.logger.Info("weights updated")
	return nil
}

// ResetWeights switches back to the default weights and removes any
// persisted weight update.
func (e *Engine) ResetWeights() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.useWeights(config.DefaultWeightModel()); err != nil {
		return err
	}
	if e.dataDir != "" {
		if err := os.Remove(e.weightsPath()); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove persisted weights: %w", err)
		}
	}
	e.logger.Info("weights reset to defaults")
	return nil
}

// Close stops background jobs. Running imports are cancelled between batches.
func (e *Engine) Close() {
	e.jobManager.Stop()
}

var _ services.Engine = (*Engine)(nil)
