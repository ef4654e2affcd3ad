// Package window computes study windows and review checkpoints from a
// schedule and a reference date. It is pure: no clock, no I/O.
package window

import (
	"github.com/yourusername/kotoba-tracker/internal/models"
	"github.com/yourusername/kotoba-tracker/pkg/dateutil"
)

// StudyRange is a closed calendar-date interval.
type StudyRange struct {
	Start string
	End   string
}

// Contains reports whether date falls in the closed interval. YYYY-MM-DD
// strings order lexicographically, so plain string comparison is exact.
func (r StudyRange) Contains(date string) bool {
	return date >= r.Start && date <= r.End
}

// StudyWindow returns [referenceDate - studyDays, referenceDate], inclusive
// on both ends. A book is in first-pass study iff its creation date falls in
// this interval.
func StudyWindow(schedule *models.Schedule, referenceDate string) StudyRange {
	return StudyRange{
		Start: dateutil.SubtractDays(referenceDate, schedule.StudyDays),
		End:   referenceDate,
	}
}

// ReviewCheckpoints returns one discrete date per configured offset:
// referenceDate - d for each d in ReviewDays. Checkpoints are point-in-time
// anniversaries, not ranges; duplicate offsets yield duplicate entries and
// each is evaluated independently.
func ReviewCheckpoints(schedule *models.Schedule, referenceDate string) []string {
	dates := make([]string, 0, len(schedule.ReviewDays))
	for _, d := range schedule.ReviewDays {
		dates = append(dates, dateutil.SubtractDays(referenceDate, int(d)))
	}
	return dates
}
