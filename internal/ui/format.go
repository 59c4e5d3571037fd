package ui

import (
	"fmt"
	"time"
)

// TimestampLayout renders a full local timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders t in local time, or "unknown" for the zero time.
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.Local().Format(TimestampLayout)
}

// RelativeTime describes t relative to now: "Just now", "5m ago", "3h ago",
// "2d ago", and the full timestamp from a week on.
func RelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := now.Sub(t)
	mins := int(d / time.Minute)
	hours := int(d / time.Hour)
	days := int(d / (24 * time.Hour))

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days < 7:
		return fmt.Sprintf("%dd ago", days)
	default:
		return FormatTimestamp(t)
	}
}
