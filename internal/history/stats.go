package history

import "time"

// DayTotal is the focus time logged on one calendar day.
type DayTotal struct {
	Date     time.Time // midnight in the requested location
	Seconds  int
	Sessions int
}

// DailyTotals buckets entries by the local day of their start time.
// Every day in [from, to) gets a row, including empty ones.
func (l *Ledger) DailyTotals(from, to time.Time, loc *time.Location) []DayTotal {
	if loc == nil {
		loc = time.Local
	}
	start := midnight(from, loc)
	var days []DayTotal
	index := make(map[string]int)
	for d := start; d.Before(to); d = d.AddDate(0, 0, 1) {
		index[d.Format("2006-01-02")] = len(days)
		days = append(days, DayTotal{Date: d})
	}

	for _, e := range l.entries {
		key := e.StartTime.In(loc).Format("2006-01-02")
		i, ok := index[key]
		if !ok {
			continue
		}
		days[i].Seconds += e.Duration
		days[i].Sessions++
	}
	return days
}

// TotalSince sums the duration of entries started at or after t.
func (l *Ledger) TotalSince(t time.Time) int {
	total := 0
	for _, e := range l.entries {
		if !e.StartTime.Before(t) {
			total += e.Duration
		}
	}
	return total
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
