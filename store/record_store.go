package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
	"strings"
	"sync"

	internalErrors "github.com/gcbaptista/gedcom-search/internal/errors"
	"github.com/gcbaptista/gedcom-search/model"
)

// RecordStore is an in-memory record provider. Records keep the order in
// which they were first added; replacing a record keeps its position.
// It implements services.RecordProvider.
type RecordStore struct {
	Mu      sync.RWMutex
	Records map[model.RecordType]map[string]model.Fields // Record type -> record ID -> fields
	Order   map[model.RecordType][]string                // Record type -> IDs in insertion order
}

// gobRecordStoreData is a helper struct for Gob encoding/decoding RecordStore data.
// It excludes the mutex.
type gobRecordStoreData struct {
	Records map[model.RecordType]map[string]model.Fields
	Order   map[model.RecordType][]string
}

// NewRecordStore creates an empty record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		Records: make(map[model.RecordType]map[string]model.Fields),
		Order:   make(map[model.RecordType][]string),
	}
}

// Put adds or replaces records.
func (rs *RecordStore) Put(records ...model.Record) error {
	for i, record := range records {
		if strings.TrimSpace(string(record.Type)) == "" {
			return internalErrors.NewInvalidArgumentError(fmt.Sprintf("records[%d].type", i), "record type is required")
		}
		if strings.TrimSpace(record.ID) == "" {
			return internalErrors.NewInvalidArgumentError(fmt.Sprintf("records[%d].id", i), "record ID is required")
		}
	}

	rs.Mu.Lock()
	defer rs.Mu.Unlock()

	for _, record := range records {
		byID, ok := rs.Records[record.Type]
		if !ok {
			byID = make(map[string]model.Fields)
			rs.Records[record.Type] = byID
		}
		if _, exists := byID[record.ID]; !exists {
			rs.Order[record.Type] = append(rs.Order[record.Type], record.ID)
		}
		fields := record.Fields.Clone()
		if fields == nil {
			fields = model.Fields{}
		}
		byID[record.ID] = fields
	}
	return nil
}

// Get returns a copy of one record.
func (rs *RecordStore) Get(recordType model.RecordType, id string) (model.Record, error) {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()

	fields, ok := rs.Records[recordType][id]
	if !ok {
		return model.Record{}, internalErrors.NewRecordNotFoundError(string(recordType), id)
	}
	return model.Record{Type: recordType, ID: id, Fields: fields.Clone()}, nil
}

// Delete removes one record.
func (rs *RecordStore) Delete(recordType model.RecordType, id string) error {
	rs.Mu.Lock()
	defer rs.Mu.Unlock()

	if _, ok := rs.Records[recordType][id]; !ok {
		return internalErrors.NewRecordNotFoundError(string(recordType), id)
	}
	delete(rs.Records[recordType], id)

	order := rs.Order[recordType]
	for i, existing := range order {
		if existing == id {
			rs.Order[recordType] = append(order[:i:i], order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of records per type.
func (rs *RecordStore) Count() map[model.RecordType]int {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()

	counts := make(map[model.RecordType]int, len(rs.Records))
	for recordType, byID := range rs.Records {
		counts[recordType] = len(byID)
	}
	return counts
}

// RecordTypes returns the built-in record types followed by any other type
// present in the store, sorted.
func (rs *RecordStore) RecordTypes() []model.RecordType {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()

	types := append([]model.RecordType(nil), model.RecordTypes...)
	builtin := make(map[model.RecordType]bool, len(types))
	for _, recordType := range types {
		builtin[recordType] = true
	}

	var extra []model.RecordType
	for recordType := range rs.Records {
		if !builtin[recordType] {
			extra = append(extra, recordType)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(types, extra...)
}

// RecordIDs returns the IDs of a record type in insertion order.
func (rs *RecordStore) RecordIDs(recordType model.RecordType) ([]string, error) {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()

	return append([]string(nil), rs.Order[recordType]...), nil
}

// RecordFields returns a copy of the fields of one record.
func (rs *RecordStore) RecordFields(recordType model.RecordType, id string) (model.Fields, error) {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()

	fields, ok := rs.Records[recordType][id]
	if !ok {
		return nil, internalErrors.NewRecordNotFoundError(string(recordType), id)
	}
	return fields.Clone(), nil
}

// GobEncode implements the gob.GobEncoder interface for RecordStore.
func (rs *RecordStore) GobEncode() ([]byte, error) {
	rs.Mu.RLock()
	defer rs.Mu.RUnlock()

	dataToEncode := gobRecordStoreData{
		Records: rs.Records,
		Order:   rs.Order,
	}

	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)
	if err := encoder.Encode(dataToEncode); err != nil {
		return nil, fmt.Errorf("failed to gob encode record store data: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for RecordStore.
func (rs *RecordStore) GobDecode(data []byte) error {
	decodedData := gobRecordStoreData{}

	buf := bytes.NewBuffer(data)
	decoder := gob.NewDecoder(buf)
	if err := decoder.Decode(&decodedData); err != nil {
		return fmt.Errorf("failed to gob decode record store data: %w", err)
	}

	rs.Mu.Lock()
	defer rs.Mu.Unlock()

	rs.Records = decodedData.Records
	rs.Order = decodedData.Order

	// Ensure maps are initialized if they were nil after decoding
	if rs.Records == nil {
		rs.Records = make(map[model.RecordType]map[string]model.Fields)
	}
	if rs.Order == nil {
		rs.Order = make(map[model.RecordType][]string)
	}

	return nil
}
