package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/hyperfocus/internal/history"
)

func sampleData() []history.Entry {
	now := time.Now().UTC()

	return []history.Entry{
		{
			ID:             "e1",
			StartTime:      now.Add(-1 * time.Hour),
			EndTime:        now,
			Duration:       3600,
			FocusPoints:    []string{"write parser", "fix tests"},
			FeedbackNotes:  "worked on feature",
			NextFocusPlans: []string{"docs"},
		},
		{
			ID:          "e2",
			StartTime:   now.Add(-2 * time.Hour),
			EndTime:     now.Add(-90 * time.Minute),
			Duration:    1800,
			FocusPoints: []string{"review"},
		},
	}
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	entries := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	err := ToCSV(entries, path)
	if err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 2 data rows
	if len(records) != 3 {
		t.Fatalf("expected 3 rows (1 header + 2 data), got %d", len(records))
	}

	header := records[0]
	expectedHeader := []string{"ID", "Start", "End", "Duration (s)", "Duration", "Focus Points", "Feedback", "Next Plans"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	row := records[1]
	if row[0] != "e1" {
		t.Fatalf("ID = %q, want e1", row[0])
	}
	if row[3] != "3600" || row[4] != "01:00:00" {
		t.Fatalf("duration columns = %q %q", row[3], row[4])
	}
	if row[5] != "write parser; fix tests" {
		t.Fatalf("Focus Points = %q", row[5])
	}
	if row[6] != "worked on feature" || row[7] != "docs" {
		t.Fatalf("break info = %q %q", row[6], row[7])
	}

	if records[2][6] != "" || records[2][7] != "" {
		t.Fatal("entry without break info should have empty columns")
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	err := ToCSV(nil, path)
	if err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	records, _ := r.ReadAll()
	if len(records) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(records))
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(nil, "/nonexistent/dir/file.csv")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	now := time.Now()
	entries := []history.Entry{
		{
			ID:            "x",
			StartTime:     now,
			EndTime:       now,
			FocusPoints:   []string{`point "quoted"`},
			FeedbackNotes: `notes with "quotes" and, commas`,
		},
	}
	path := filepath.Join(t.TempDir(), "special.csv")

	if err := ToCSV(entries, path); err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("CSV should be valid even with special chars: %v", err)
	}
	if records[1][5] != `point "quoted"` {
		t.Fatalf("focus point mangled: %q", records[1][5])
	}
	if records[1][6] != `notes with "quotes" and, commas` {
		t.Fatalf("notes mangled: %q", records[1][6])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.json")

	if err := ToJSON(sampleData(), path); err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var result document
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if result.Count != 2 || len(result.Entries) != 2 {
		t.Fatalf("count = %d, entries = %d, want 2", result.Count, len(result.Entries))
	}
	if result.ExportedAt == "" {
		t.Fatal("exported_at should not be empty")
	}

	e := result.Entries[0]
	if e.ID != "e1" || e.DurationSec != 3600 || e.Duration != "01:00:00" {
		t.Fatalf("unexpected entry %+v", e)
	}
	if len(e.FocusPoints) != 2 || e.Feedback != "worked on feature" || len(e.NextPlans) != 1 {
		t.Fatalf("unexpected notes %+v", e)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Fatal("JSON should be pretty-printed")
	}
	if strings.Contains(string(data), `"feedback": ""`) {
		t.Fatal("empty feedback should be omitted")
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	if err := ToJSON(nil, path); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var result document
	json.Unmarshal(data, &result)

	if result.Count != 0 {
		t.Fatalf("count = %d, want 0", result.Count)
	}
	if result.Entries != nil {
		t.Fatal("entries should be nil/null for empty export")
	}
}

func TestToJSONBadPath(t *testing.T) {
	err := ToJSON(nil, "/nonexistent/dir/file.json")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONValidTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ts.json")
	ToJSON(sampleData(), path)

	data, _ := os.ReadFile(path)
	var result document
	json.Unmarshal(data, &result)

	if _, err := time.Parse(time.RFC3339, result.ExportedAt); err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", result.ExportedAt)
	}
	for _, e := range result.Entries {
		if _, err := time.Parse(time.RFC3339, e.StartTime); err != nil {
			t.Fatalf("start_time is not valid RFC3339: %q", e.StartTime)
		}
		if _, err := time.Parse(time.RFC3339, e.EndTime); err != nil {
			t.Fatalf("end_time is not valid RFC3339: %q", e.EndTime)
		}
	}
}

// ============================================================
// YAML
// ============================================================

func TestToYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := ToYAML(sampleData(), path); err != nil {
		t.Fatalf("ToYAML: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var result document
	if err := yaml.Unmarshal(data, &result); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if result.Count != 2 || result.Entries[1].ID != "e2" || result.Entries[1].DurationSec != 1800 {
		t.Fatalf("unexpected document %+v", result)
	}
	if !strings.Contains(string(data), "focus_points:") {
		t.Fatal("expected snake_case keys")
	}
}

func TestToYAMLBadPath(t *testing.T) {
	if err := ToYAML(nil, "/nonexistent/dir/file.yaml"); err == nil {
		t.Fatal("expected error for bad path")
	}
}

// ============================================================
// Format selection
// ============================================================

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", CSV, false},
		{"JSON", JSON, false},
		{" yml ", YAML, false},
		{"yaml", YAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestFormatFromPath(t *testing.T) {
	if f, err := FormatFromPath("/tmp/out.yml"); err != nil || f != YAML {
		t.Fatalf("got %q, %v", f, err)
	}
	if _, err := FormatFromPath("/tmp/out"); err == nil {
		t.Fatal("expected error for missing extension")
	}
}

func TestWriteDispatches(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []Format{CSV, JSON, YAML} {
		path := filepath.Join(dir, "out."+string(f))
		if err := Write(f, sampleData(), path); err != nil {
			t.Fatalf("Write(%s): %v", f, err)
		}
		if info, err := os.Stat(path); err != nil || info.Size() == 0 {
			t.Fatalf("Write(%s) produced no file", f)
		}
	}
	if err := Write("xml", nil, filepath.Join(dir, "out.xml")); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

// ============================================================
// formatDuration (internal helper)
// ============================================================

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		secs int64
		want string
	}{
		{0, "00:00:00"},
		{1, "00:00:01"},
		{60, "00:01:00"},
		{3600, "01:00:00"},
		{3661, "01:01:01"},
		{86400, "24:00:00"},
		{90061, "25:01:01"},
	}

	for _, tt := range tests {
		got := formatDuration(tt.secs)
		if got != tt.want {
			t.Errorf("formatDuration(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}
