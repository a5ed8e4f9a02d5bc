package utils

import "time"

const MonthLayout = "2006-01"

// MonthOf formats t as a yyyy-mm period
func MonthOf(t time.Time) string {
	return t.Format(MonthLayout)
}

// StartOfMonth truncates t to the first day of its month
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
