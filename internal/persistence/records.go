package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gcbaptista/gedcom-search/model"
	"github.com/gcbaptista/gedcom-search/store"
)

// LoadRecordFile reads records from a JSON (.json) or YAML (.yaml, .yml) file.
// The file holds either a list of record documents or an object with a
// "records" list. See store.RecordFromDocument for the document layout.
func LoadRecordFile(path string) ([]model.Record, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read records file %s: %w", path, err)
	}
	return ParseRecords(filepath.Ext(path), data)
}

// ParseRecords decodes record documents. ext selects the format: ".json"
// decodes JSON, anything else YAML.
func ParseRecords(ext string, data []byte) ([]model.Record, error) {
	var raw interface{}
	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse records: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse records: %w", err)
		}
	}

	var items []interface{}
	switch v := raw.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		list, ok := v["records"].([]interface{})
		if !ok {
			return nil, fmt.Errorf("records file must contain a list or a \"records\" list")
		}
		items = list
	case nil:
		return []model.Record{}, nil
	default:
		return nil, fmt.Errorf("records file must contain a list or a \"records\" list")
	}

	records := make([]model.Record, 0, len(items))
	for i, item := range items {
		doc, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("record %d must be an object", i)
		}
		record, err := store.RecordFromDocument(doc)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, record)
	}
	return records, nil
}
