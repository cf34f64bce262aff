package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	internalErrors "github.com/gcbaptista/gedcom-search/internal/errors"
	"github.com/gcbaptista/gedcom-search/model"
)

// Top-level sections of a weight override.
const (
	sectionMatch  = "match"
	sectionType   = "type"
	sectionObject = "object"
)

// WeightOverride holds caller-supplied weights merged over the defaults by
// NewWeightModel. A nil section leaves the defaults of that section intact.
//
// Within a section each key replaces the default entry wholesale: an Object
// entry for "indi" replaces the whole default indi tree. See NewWeightModel.
type WeightOverride struct {
	Match  MatchWeights
	Type   TypeWeights
	Object map[model.RecordType]WeightTree
}

// ParseWeightOverride converts a decoded JSON/YAML document into a
// WeightOverride. Unknown top-level keys, unknown strategies and non-numeric
// weights are reported as configuration errors.
func ParseWeightOverride(raw map[string]interface{}) (*WeightOverride, error) {
	override := &WeightOverride{}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		section, ok := asMap(raw[key])
		if !ok {
			return nil, internalErrors.NewConfigurationError(key, "section must be an object")
		}

		switch key {
		case sectionMatch:
			override.Match = make(MatchWeights, len(section))
			for name, value := range section {
				path := key + "." + name
				strategy := model.Strategy(name)
				if !strategy.Valid() {
					return nil, internalErrors.NewConfigurationError(path, "unknown match strategy")
				}
				weight, err := asWeight(path, value)
				if err != nil {
					return nil, err
				}
				override.Match[strategy] = weight
			}
		case sectionType:
			override.Type = make(TypeWeights, len(section))
			for name, value := range section {
				weight, err := asWeight(key+"."+name, value)
				if err != nil {
					return nil, err
				}
				override.Type[recordTypeKey(name)] = weight
			}
		case sectionObject:
			override.Object = make(map[model.RecordType]WeightTree, len(section))
			for name, value := range section {
				path := key + "." + name
				subtree, ok := asMap(value)
				if !ok {
					return nil, internalErrors.NewConfigurationError(path, "record type weights must be an object")
				}
				tree, err := parseTree(path, subtree)
				if err != nil {
					return nil, err
				}
				override.Object[recordTypeKey(name)] = tree
			}
		default:
			return nil, internalErrors.NewConfigurationError(key,
				fmt.Sprintf("unknown section (expected one of %s, %s, %s)", sectionMatch, sectionType, sectionObject))
		}
	}

	return override, nil
}

// LoadWeightOverride reads a weight override from a YAML (.yaml, .yml) or
// JSON (.json) file.
func LoadWeightOverride(path string) (*WeightOverride, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to read weights file %s: %w", path, err)
	}

	raw, err := decodeDocument(path, data)
	if err != nil {
		return nil, internalErrors.NewConfigurationError("", fmt.Sprintf("failed to parse weights file %s: %v", path, err))
	}
	return ParseWeightOverride(raw)
}

// LoadWeightModel reads an override file and merges it over the defaults.
// An empty path yields the default model.
func LoadWeightModel(path string) (*WeightModel, error) {
	if path == "" {
		return NewWeightModel(nil)
	}
	override, err := LoadWeightOverride(path)
	if err != nil {
		return nil, err
	}
	return NewWeightModel(override)
}

func decodeDocument(path string, data []byte) (map[string]interface{}, error) {
	raw := map[string]interface{}{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&raw); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func parseTree(prefix string, raw map[string]interface{}) (WeightTree, error) {
	tree := make(WeightTree, len(raw))
	for key, value := range raw {
		path := prefix + "." + key
		if nested, ok := asMap(value); ok {
			children, err := parseTree(path, nested)
			if err != nil {
				return nil, err
			}
			tree[key] = Branch(children)
			continue
		}
		weight, err := asWeight(path, value)
		if err != nil {
			return nil, err
		}
		tree[key] = Leaf(weight)
	}
	return tree, nil
}

// recordTypeKey accepts both tags ("indi") and long names ("individual").
// Unrecognized names are kept verbatim so providers can expose extra types.
func recordTypeKey(name string) model.RecordType {
	if recordType, ok := model.ParseRecordType(name); ok {
		return recordType
	}
	return model.RecordType(name)
}

func asMap(value interface{}) (map[string]interface{}, bool) {
	switch v := value.(type) {
	case map[string]interface{}:
		return v, true
	case map[interface{}]interface{}:
		converted := make(map[string]interface{}, len(v))
		for key, item := range v {
			converted[fmt.Sprint(key)] = item
		}
		return converted, true
	}
	return nil, false
}

func asWeight(path string, value interface{}) (float64, error) {
	var weight float64
	switch v := value.(type) {
	case float64:
		weight = v
	case float32:
		weight = float64(v)
	case int:
		weight = float64(v)
	case int64:
		weight = float64(v)
	case uint64:
		weight = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, internalErrors.NewConfigurationError(path, fmt.Sprintf("weight '%s' is not a number", v.String()))
		}
		weight = f
	default:
		return 0, internalErrors.NewConfigurationError(path, fmt.Sprintf("weight must be a number, got %T", value))
	}
	if err := checkWeight(path, weight); err != nil {
		return 0, err
	}
	return weight, nil
}
