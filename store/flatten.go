package store

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	internalErrors "github.com/gcbaptista/gedcom-search/internal/errors"
	"github.com/gcbaptista/gedcom-search/model"
)

// FlattenFields converts a nested record document into dotted field paths.
//
//	{"name": {"givn": "John"}, "event": [{"place": {"name": "Paris"}}]}
//
// becomes "name.givn" -> ["John"] and "event.place.name" -> ["Paris"]. Lists
// contribute one value per element at the same path. Numbers and booleans are
// formatted as text; null values are dropped.
func FlattenFields(raw map[string]interface{}) model.Fields {
	fields := model.Fields{}
	keys := sortedKeys(raw)
	for _, key := range keys {
		flattenValue(fields, key, raw[key])
	}
	return fields
}

func flattenValue(fields model.Fields, path string, value interface{}) {
	switch v := value.(type) {
	case nil:
		return
	case string:
		fields[path] = append(fields[path], v)
	case []string:
		fields[path] = append(fields[path], v...)
	case []interface{}:
		for _, item := range v {
			flattenValue(fields, path, item)
		}
	case map[string]interface{}:
		for _, key := range sortedKeys(v) {
			flattenValue(fields, path+"."+key, v[key])
		}
	case map[interface{}]interface{}:
		converted := make(map[string]interface{}, len(v))
		for key, item := range v {
			converted[fmt.Sprint(key)] = item
		}
		flattenValue(fields, path, converted)
	case float64:
		fields[path] = append(fields[path], strconv.FormatFloat(v, 'f', -1, 64))
	default:
		fields[path] = append(fields[path], fmt.Sprint(v))
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// RecordFromDocument builds a record from a decoded document of the form
// {"type": "indi", "id": "@I1@", "fields": {...}}. The record type accepts
// long names ("individual") and aliases ("obje").
func RecordFromDocument(doc map[string]interface{}) (model.Record, error) {
	rawType, _ := doc["type"].(string)
	if strings.TrimSpace(rawType) == "" {
		return model.Record{}, internalErrors.NewInvalidArgumentError("type", "record type is required")
	}
	recordType, ok := model.ParseRecordType(rawType)
	if !ok {
		recordType = model.RecordType(strings.ToLower(strings.TrimSpace(rawType)))
	}

	var id string
	switch v := doc["id"].(type) {
	case string:
		id = strings.TrimSpace(v)
	case nil:
	default:
		id = fmt.Sprint(v)
	}
	if id == "" {
		return model.Record{}, internalErrors.NewInvalidArgumentError("id", "record ID is required")
	}

	record := model.Record{Type: recordType, ID: id, Fields: model.Fields{}}
	switch fields := doc["fields"].(type) {
	case nil:
	case map[string]interface{}:
		record.Fields = FlattenFields(fields)
	case map[interface{}]interface{}:
		converted := make(map[string]interface{}, len(fields))
		for key, item := range fields {
			converted[fmt.Sprint(key)] = item
		}
		record.Fields = FlattenFields(converted)
	default:
		return model.Record{}, internalErrors.NewInvalidArgumentError("fields", "fields must be an object")
	}
	return record, nil
}
