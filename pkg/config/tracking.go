package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SuiteTracking maps one suite to its external test-management identifiers.
type SuiteTracking struct {
	SuiteID string            `yaml:"suite_id"`
	Cases   map[string]string `yaml:"cases"`
}

// TrackingMap maps suite name to its tracking identifiers.
type TrackingMap map[string]SuiteTracking

// LoadTrackingMap parses a YAML tracking-ID file. An empty path yields a nil
// map, which disables file-based tracking lookup.
func LoadTrackingMap(path string) (TrackingMap, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tracking file: %w", err)
	}

	var m TrackingMap
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing tracking file %s: %w", path, err)
	}

	return m, nil
}
