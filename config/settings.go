// Package config provides configuration structures for the search engine.
// It defines the weight model used for scoring and the engine settings that
// control phonetic encoding, parallelism and result limits.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultResultsLimit is the number of results returned when the caller does
// not ask for a specific limit.
const DefaultResultsLimit = 10

// EngineSettings contains the runtime options of a search engine instance.
// Weights live in the WeightModel; these settings only shape how scoring runs.
type EngineSettings struct {
	PhoneticAlgorithm   string `json:"phonetic_algorithm" yaml:"phonetic_algorithm"`       // soundex, metaphone, nysiis or phonex
	PhoneticCacheSize   int    `json:"phonetic_cache_size" yaml:"phonetic_cache_size"`     // Number of token codes kept in the LRU cache
	Workers             int    `json:"workers" yaml:"workers"`                             // Goroutines scoring records in parallel
	DefaultResultsLimit int    `json:"default_results_limit" yaml:"default_results_limit"` // Limit applied by the API and CLI when none is given
	MaxResultsLimit     int    `json:"max_results_limit" yaml:"max_results_limit"`         // Upper bound accepted by the API (0 = unbounded)
	WeightsFile         string `json:"weights_file" yaml:"weights_file"`                   // Optional weight override file (YAML or JSON)
}

// ApplyDefaults applies default values to the engine settings
func (settings *EngineSettings) ApplyDefaults() {
	if strings.TrimSpace(settings.PhoneticAlgorithm) == "" {
		settings.PhoneticAlgorithm = "metaphone"
	}
	if settings.PhoneticCacheSize == 0 {
		settings.PhoneticCacheSize = 10000
	}
	if settings.Workers == 0 {
		settings.Workers = runtime.NumCPU()
	}
	if settings.DefaultResultsLimit == 0 {
		settings.DefaultResultsLimit = DefaultResultsLimit
	}
}

// Validate checks the settings and returns one message per problem found.
func (settings *EngineSettings) Validate() []string {
	var problems []string

	if settings.PhoneticCacheSize < 0 {
		problems = append(problems, "phonetic_cache_size cannot be negative")
	}
	if settings.Workers < 0 {
		problems = append(problems, "workers cannot be negative")
	}
	if settings.DefaultResultsLimit < 0 {
		problems = append(problems, "default_results_limit cannot be negative")
	}
	if settings.MaxResultsLimit < 0 {
		problems = append(problems, "max_results_limit cannot be negative")
	}
	if settings.MaxResultsLimit > 0 && settings.DefaultResultsLimit > settings.MaxResultsLimit {
		problems = append(problems, fmt.Sprintf("default_results_limit (%d) exceeds max_results_limit (%d)",
			settings.DefaultResultsLimit, settings.MaxResultsLimit))
	}

	return problems
}

// LoadEngineSettings reads engine settings from a YAML file and applies defaults.
func LoadEngineSettings(path string) (EngineSettings, error) {
	var settings EngineSettings

	data, err := os.ReadFile(path) // #nosec G304 -- path is supplied by the operator
	if err != nil {
		return settings, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings file %s: %w", path, err)
	}

	settings.ApplyDefaults()
	return settings, nil
}
