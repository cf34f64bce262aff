package engine

import (
	"go.uber.org/zap"

	"github.com/gcbaptista/gedcom-search/internal/metrics"
	"github.com/gcbaptista/gedcom-search/model"
)

// AddRecords adds or replaces records and persists the store.
func (e *Engine) AddRecords(records []model.Record) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.records.Put(records...); err != nil {
		return err
	}
	e.updateRecordMetrics()
	e.logger.Debug("records added", zap.Int("count", len(records)))
	return e.persistRecordsUnsafe()
}

// GetRecord returns one record.
func (e *Engine) GetRecord(recordType model.RecordType, id string) (model.Record, error) {
	return e.records.Get(recordType, id)
}

// DeleteRecord removes one record and persists the store.
func (e *Engine) DeleteRecord(recordType model.RecordType, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.records.Delete(recordType, id); err != nil {
		return err
	}
	e.updateRecordMetrics()
	e.logger.Debug("record deleted", zap.String("record_type", string(recordType)), zap.String("record_id", id))
	return e.persistRecordsUnsafe()
}

// ListRecordIDs returns the IDs of a record type in insertion order.
func (e *Engine) ListRecordIDs(recordType model.RecordType) ([]string, error) {
	return e.records.RecordIDs(recordType)
}

// RecordCount returns the number of records per type.
func (e *Engine) RecordCount() map[model.RecordType]int {
	return e.records.Count()
}

func (e *Engine) updateRecordMetrics() {
	counts := e.records.Count()
	for _, recordType := range e.records.RecordTypes() {
		metrics.RecordsStored.WithLabelValues(string(recordType)).Set(float64(counts[recordType]))
	}
}
