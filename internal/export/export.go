// Package export writes the focus history to CSV, JSON or YAML files.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sadopc/hyperfocus/internal/history"
)

type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts a format name, case-insensitively. "yml" means YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or yaml)", name)
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Write exports entries to path in format f.
func Write(f Format, entries []history.Entry, path string) error {
	switch f {
	case CSV:
		return ToCSV(entries, path)
	case JSON:
		return ToJSON(entries, path)
	case YAML:
		return ToYAML(entries, path)
	}
	return fmt.Errorf("unknown export format %q", f)
}
