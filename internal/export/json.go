package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/hyperfocus/internal/history"
)

type document struct {
	ExportedAt string  `json:"exported_at" yaml:"exported_at"`
	Count      int     `json:"count" yaml:"count"`
	Entries    []entry `json:"entries" yaml:"entries"`
}

type entry struct {
	ID          string   `json:"id" yaml:"id"`
	StartTime   string   `json:"start_time" yaml:"start_time"`
	EndTime     string   `json:"end_time" yaml:"end_time"`
	DurationSec int      `json:"duration_seconds" yaml:"duration_seconds"`
	Duration    string   `json:"duration" yaml:"duration"`
	FocusPoints []string `json:"focus_points" yaml:"focus_points"`
	Feedback    string   `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	NextPlans   []string `json:"next_plans,omitempty" yaml:"next_plans,omitempty"`
}

func newDocument(entries []history.Entry) document {
	doc := document{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(entries),
	}
	for _, e := range entries {
		doc.Entries = append(doc.Entries, entry{
			ID:          e.ID,
			StartTime:   e.StartTime.Local().Format(time.RFC3339),
			EndTime:     e.EndTime.Local().Format(time.RFC3339),
			DurationSec: e.Duration,
			Duration:    formatDuration(int64(e.Duration)),
			FocusPoints: e.FocusPoints,
			Feedback:    e.FeedbackNotes,
			NextPlans:   e.NextFocusPlans,
		})
	}
	return doc
}

func ToJSON(entries []history.Entry, path string) error {
	data, err := json.MarshalIndent(newDocument(entries), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
