package model

import "time"

const DateLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDay(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

func FormatDay(t time.Time) string {
	return t.Format(DateLayout)
}
