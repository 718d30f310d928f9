package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sadopc/hyperfocus/internal/history"
)

func ToCSV(entries []history.Entry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Start", "End", "Duration (s)", "Duration", "Focus Points", "Feedback", "Next Plans"}); err != nil {
		return err
	}

	for _, e := range entries {
		row := []string{
			e.ID,
			e.StartTime.Local().Format(time.RFC3339),
			e.EndTime.Local().Format(time.RFC3339),
			fmt.Sprintf("%d", e.Duration),
			formatDuration(int64(e.Duration)),
			strings.Join(e.FocusPoints, "; "),
			e.FeedbackNotes,
			strings.Join(e.NextFocusPlans, "; "),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
