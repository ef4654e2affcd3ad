// Package dateutil provides calendar-date arithmetic over YYYY-MM-DD strings.
// All computation happens in UTC on the date component only, so results never
// depend on the process's local timezone.
package dateutil

import "time"

const Layout = "2006-01-02"

// IsValidDateString reports whether s is a YYYY-MM-DD string denoting a real
// calendar date. Parse alone accepts some normalized forms, so the result is
// formatted back and compared to reject dates like 2026-02-30.
func IsValidDateString(s string) bool {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return false
	}
	return t.Format(Layout) == s
}

// AddDays shifts a YYYY-MM-DD date forward by n days.
func AddDays(s string, n int) string {
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return s
	}
	return t.AddDate(0, 0, n).Format(Layout)
}

// SubtractDays shifts a YYYY-MM-DD date back by n days.
func SubtractDays(s string, n int) string {
	return AddDays(s, -n)
}
