package models

import "time"

// SQLite keeps timestamps as text with their offset and compares them as
// strings, so every stored instant and every query bound is kept in UTC.
// Calendar arithmetic ("today", day ranges) still happens in local time.

// NowUTC is the gorm clock for created_at/updated_at
func NowUTC() time.Time {
	return time.Now().UTC()
}

// StartOfDay truncates t to midnight in t's own location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayRange returns [midnight, next midnight) for the day containing t, in
// t's location
func DayRange(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// UTCDayRange is DayRange with both bounds converted for use in queries
func UTCDayRange(t time.Time) (time.Time, time.Time) {
	start, end := DayRange(t)
	return start.UTC(), end.UTC()
}

// utc converts the given fields in place; nil and zero values are skipped
func utc(ts ...*time.Time) {
	for _, t := range ts {
		if t != nil && !t.IsZero() {
			*t = t.UTC()
		}
	}
}
