package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestApplyDefaults(t *testing.T) {
	settings := EngineSettings{}
	settings.ApplyDefaults()

	if settings.PhoneticAlgorithm != "metaphone" {
		t.Errorf("Expected default phonetic algorithm 'metaphone', got '%s'", settings.PhoneticAlgorithm)
	}
	if settings.PhoneticCacheSize != 10000 {
		t.Errorf("Expected default cache size 10000, got %d", settings.PhoneticCacheSize)
	}
	if settings.Workers != runtime.NumCPU() {
		t.Errorf("Expected %d workers, got %d", runtime.NumCPU(), settings.Workers)
	}
	if settings.DefaultResultsLimit != DefaultResultsLimit {
		t.Errorf("Expected default results limit %d, got %d", DefaultResultsLimit, settings.DefaultResultsLimit)
	}

	// Explicit values are kept
	custom := EngineSettings{PhoneticAlgorithm: "soundex", Workers: 2, DefaultResultsLimit: 25}
	custom.ApplyDefaults()
	if custom.PhoneticAlgorithm != "soundex" || custom.Workers != 2 || custom.DefaultResultsLimit != 25 {
		t.Errorf("ApplyDefaults overwrote explicit values: %+v", custom)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name           string
		settings       EngineSettings
		expectedErrors int
	}{
		{
			name:           "valid settings",
			settings:       EngineSettings{Workers: 4, DefaultResultsLimit: 10, MaxResultsLimit: 100},
			expectedErrors: 0,
		},
		{
			name:           "negative values",
			settings:       EngineSettings{Workers: -1, PhoneticCacheSize: -5},
			expectedErrors: 2,
		},
		{
			name:           "default above max",
			settings:       EngineSettings{DefaultResultsLimit: 50, MaxResultsLimit: 20},
			expectedErrors: 1,
		},
		{
			name:           "unbounded max",
			settings:       EngineSettings{DefaultResultsLimit: 50},
			expectedErrors: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			problems := tt.settings.Validate()
			if len(problems) != tt.expectedErrors {
				t.Errorf("Expected %d errors, got %d: %v", tt.expectedErrors, len(problems), problems)
			}
		})
	}
}

func TestLoadEngineSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "phonetic_algorithm: soundex\nworkers: 3\nweights_file: weights.yaml\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to write settings file: %v", err)
	}

	settings, err := LoadEngineSettings(path)
	if err != nil {
		t.Fatalf("LoadEngineSettings returned error: %v", err)
	}
	if settings.PhoneticAlgorithm != "soundex" {
		t.Errorf("Expected 'soundex', got '%s'", settings.PhoneticAlgorithm)
	}
	if settings.Workers != 3 {
		t.Errorf("Expected 3 workers, got %d", settings.Workers)
	}
	if settings.WeightsFile != "weights.yaml" {
		t.Errorf("Expected weights file 'weights.yaml', got '%s'", settings.WeightsFile)
	}
	if settings.DefaultResultsLimit != DefaultResultsLimit {
		t.Errorf("Expected defaults to be applied, got limit %d", settings.DefaultResultsLimit)
	}

	if _, err := LoadEngineSettings(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing settings file")
	}
}
