package partials

import (
	"fmt"
	"time"
)

// RelativeTime describes t relative to now ("3 hours ago")
func RelativeTime(t, now time.Time) string {
	duration := now.Sub(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		return plural(int(duration.Minutes()), "minute") + " ago"
	case duration < 24*time.Hour:
		return plural(int(duration.Hours()), "hour") + " ago"
	case duration < 7*24*time.Hour:
		return plural(int(duration.Hours()/24), "day") + " ago"
	}
	return t.In(time.Local).Format("Jan 2, 2006")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// Date formats a calendar date
func Date(t time.Time) string {
	return t.In(time.Local).Format("Jan 2, 2006")
}

// DateTime formats a timestamp in local time
func DateTime(t time.Time) string {
	return t.In(time.Local).Format("Jan 2, 2006 15:04")
}

// AlertClass maps an alert level (success, warning, danger, info) to a CSS class
func AlertClass(level string) string {
	switch level {
	case "success", "warning", "danger", "info":
		return "alert-" + level
	}
	return "alert-secondary"
}
