package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/gcbaptista/gedcom-search/config"
	"github.com/gcbaptista/gedcom-search/internal/persistence"
	"github.com/gcbaptista/gedcom-search/store"
)

const (
	dataDirPerm = 0750
	recordsFile = "records.gob"
	weightsFile = "weights.json"
	weightsPerm = 0600
)

func (e *Engine) recordsPath() string {
	return filepath.Join(e.dataDir, recordsFile)
}

func (e *Engine) weightsPath() string {
	return filepath.Join(e.dataDir, weightsFile)
}

// loadRecordsFromDisk restores the record store snapshot. A missing or
// unreadable snapshot leaves the store empty.
func (e *Engine) loadRecordsFromDisk() {
	path := e.recordsPath()
	loaded := store.NewRecordStore()
	err := persistence.LoadGob(path, loaded)
	switch {
	case errors.Is(err, os.ErrNotExist):
		e.logger.Info("no record snapshot found, starting empty", zap.String("path", path))
		return
	case err != nil:
		e.logger.Warn("failed to load record snapshot, starting empty", zap.String("path", path), zap.Error(err))
		return
	}

	e.records = loaded
	total := 0
	for _, n := range loaded.Count() {
		total += n
	}
	e.logger.Info("records loaded", zap.String("path", path), zap.Int("records", total))
}

// loadWeights picks the weight model: the configured weights file, then a
// persisted weight update, then the defaults.
func (e *Engine) loadWeights() (*config.WeightModel, error) {
	if e.settings.WeightsFile != "" {
		weights, err := config.LoadWeightModel(e.settings.WeightsFile)
		if err != nil {
			return nil, err
		}
		e.logger.Info("weights loaded", zap.String("path", e.settings.WeightsFile))
		return weights, nil
	}

	if e.dataDir != "" {
		path := e.weightsPath()
		if _, err := os.Stat(path); err == nil {
			weights, err := config.LoadWeightModel(path)
			if err != nil {
				return nil, err
			}
			e.logger.Info("persisted weights loaded", zap.String("path", path))
			return weights, nil
		}
	}

	return config.DefaultWeightModel(), nil
}

// persistRecordsUnsafe saves the record store snapshot.
// This method assumes the caller holds the write lock.
func (e *Engine) persistRecordsUnsafe() error {
	if e.dataDir == "" {
		return nil
	}
	if err := persistence.SaveGob(e.recordsPath(), e.records); err != nil {
		return fmt.Errorf("failed to save records: %w", err)
	}
	return nil
}

// persistWeightsUnsafe saves a complete weight model as JSON so it can be
// loaded back as an override.
// This method assumes the caller holds the write lock.
func (e *Engine) persistWeightsUnsafe(weights *config.WeightModel) error {
	if e.dataDir == "" {
		return nil
	}
	data, err := weights.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}
	if err := os.WriteFile(e.weightsPath(), data, weightsPerm); err != nil {
		return fmt.Errorf("failed to save weights: %w", err)
	}
	return nil
}
