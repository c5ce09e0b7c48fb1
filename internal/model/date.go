package model

import "time"

// DateLayout is the calendar date format used for lastResetDate
const DateLayout = "2006-01-02"

// FormatDate formats t as a UTC calendar date (YYYY-MM-DD)
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
