package utils

import (
	"fmt"
	"time"
)

// FormatLocalDate renders a time as a local calendar date, the form program
// days are keyed by.
func FormatLocalDate(t time.Time) string {
	return t.Local().Format("2006-01-02")
}

// FormatDuration renders elapsed seconds as "1h03m" or "42m" for session
// summaries.
func FormatDuration(seconds int) string {
	d := time.Duration(seconds) * time.Second
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// FormatRest renders a rest prescription in seconds as "2m30s" or "90s".
func FormatRest(seconds int) string {
	if seconds >= 120 && seconds%60 == 0 {
		return fmt.Sprintf("%dm", seconds/60)
	}
	if seconds >= 120 {
		return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}
