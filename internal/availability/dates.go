package availability

import (
	"time"

	"github.com/jwalitptl/booking-api/internal/model"
	"github.com/jwalitptl/booking-api/pkg/locale"
)

const (
	// ModalDays is the date strip length of the booking modal.
	ModalDays = 7
	// ProfileDays is the date strip length of the doctor profile page.
	ProfileDays = 14
)

type DateCandidate struct {
	Date         model.Date `json:"date"`
	Weekday      string     `json:"weekday"`
	WeekdayShort string     `json:"weekday_short"`
	DayOfMonth   int        `json:"day_of_month"`
	Label        string     `json:"label"`
	IsWeekend    bool       `json:"is_weekend"`
	Disabled     bool       `json:"disabled"`
}

// Today returns midnight of now's calendar day in now's location.
func Today(now time.Time) model.Date {
	return model.NewDate(now)
}

// IsSelectableDate reports whether d is today or later, comparing at
// midnight in now's location.
func IsSelectableDate(d model.Date, now time.Time) bool {
	return !d.In(now.Location()).Before(Today(now).Time)
}

// DateCandidates returns n consecutive days starting at from. Days before
// today are returned disabled so a strip that starts in the past can still
// be rendered.
func DateCandidates(now, from time.Time, n int, loc locale.Locale) []DateCandidate {
	if n <= 0 {
		return nil
	}
	start := model.NewDate(from.In(now.Location()))
	out := make([]DateCandidate, 0, n)
	for i := 0; i < n; i++ {
		d := model.Date{Time: start.AddDate(0, 0, i)}
		wd := d.Weekday()
		out = append(out, DateCandidate{
			Date:         d,
			Weekday:      loc.Weekday(wd),
			WeekdayShort: loc.WeekdayShort(wd),
			DayOfMonth:   d.Day(),
			Label:        loc.FormatDate(d.Time),
			IsWeekend:    wd == time.Saturday || wd == time.Sunday,
			Disabled:     !IsSelectableDate(d, now),
		})
	}
	return out
}
