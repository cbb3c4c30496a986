package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/cardscanner/internal/models"
	"gopkg.in/yaml.v3"
)

// ScanInfo describes where a saved result set came from
type ScanInfo struct {
	Endpoint  string   `yaml:"endpoint"`
	Images    []string `yaml:"images"`
	Timestamp string   `yaml:"timestamp"`
}

// ResultFile is a result set saved to disk
type ResultFile struct {
	Scan    ScanInfo               `yaml:"scan"`
	Records []models.ContactRecord `yaml:"records"`
}

// ResultSet rebuilds the in-memory result set, re-deriving the valid contacts
func (f *ResultFile) ResultSet() *models.ResultSet {
	return models.NewResultSet(f.Records)
}

// SaveYAML writes every record of rs, failed entries included, to path
func SaveYAML(path string, info ScanInfo, rs *models.ResultSet) error {
	if rs == nil {
		return fmt.Errorf("no results to save")
	}
	if info.Timestamp == "" {
		info.Timestamp = time.Now().Format(time.RFC3339)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create results directory: %w", err)
		}
	}

	data, err := yaml.Marshal(&ResultFile{Scan: info, Records: rs.Records})
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}
	return nil
}

// LoadYAML reads a result file written by SaveYAML
func LoadYAML(path string) (*ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results file: %w", err)
	}
	var f ResultFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse results file: %w", err)
	}
	return &f, nil
}
