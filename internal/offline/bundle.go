package offline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/okian/trainhist/internal/app"
)

// File permission constants.
const (
	reportFilePermission = 0o600
	directoryPermission  = 0o750
)

// LoadBundle reads a bundle file. Files ending in .json are decoded as
// JSON; everything else as YAML.
func LoadBundle(path string) (app.Bundle, error) {
	var b app.Bundle
	data, err := os.ReadFile(path)
	if err != nil {
		return b, fmt.Errorf("%w: %w", ErrBundle, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &b)
	} else {
		err = yaml.Unmarshal(data, &b)
	}
	if err != nil {
		return b, fmt.Errorf("%w: %s: %w", ErrBundle, path, err)
	}
	return b, nil
}

// SaveReport writes r as indented JSON, creating parent directories.
func SaveReport(path string, r *app.Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, reportFilePermission); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
