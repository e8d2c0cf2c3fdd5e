package engine

import (
	"errors"
	"time"

	"github.com/tartampluch/go-friends/internal/config"
)

const secondsPerDay = 24 * 60 * 60

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// civilDay numbers a calendar day independently of location and DST, so that
// the difference of two civil days is always a whole number.
func civilDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / secondsPerDay
}

// DaysBetween returns the number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(civilDay(b) - civilDay(a))
}

// DaysUntil returns how many calendar days lie between today and target.
// Both sides are reduced to their calendar day first; a target earlier today or
// later today both count as 0.
func DaysUntil(target, today time.Time) int {
	return DaysBetween(today, target)
}

// NextAnnualOccurrence returns the first occurrence of month/day on or after
// today, starting the search at referenceYear.
// Go's time.Date turns Feb 29 into March 1st in non-leap years; that
// normalization is kept on purpose.
func NextAnnualOccurrence(month time.Month, day, referenceYear int, today time.Time) time.Time {
	loc := today.Location()
	todayStart := StartOfDay(today)

	candidate := time.Date(referenceYear, month, day, 0, 0, 0, 0, loc)
	for year := referenceYear + 1; candidate.Before(todayStart); year++ {
		candidate = time.Date(year, month, day, 0, 0, 0, 0, loc)
	}
	return candidate
}

// NextMonthlyOccurrence returns dayOfMonth in today's month, or in the next
// month when it already passed. Days past the end of a month roll over
// natively (the 31st of a 30-day month is the 1st of the following one).
func NextMonthlyOccurrence(dayOfMonth int, today time.Time) time.Time {
	loc := today.Location()
	todayStart := StartOfDay(today)

	candidate := time.Date(today.Year(), today.Month(), dayOfMonth, 0, 0, 0, 0, loc)
	if candidate.Before(todayStart) {
		candidate = time.Date(today.Year(), today.Month()+1, dayOfMonth, 0, 0, 0, 0, loc)
	}
	return candidate
}

// Age returns the completed years between birthDate and today.
func Age(birthDate, today time.Time) int {
	age := today.Year() - birthDate.Year()
	if today.Month() < birthDate.Month() ||
		(today.Month() == birthDate.Month() && today.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// ParseDate handles the calendar date layouts found in friend records and vCards.
// The boolean reports whether the year was present; year-less dates are
// anchored on config.DefaultLeapYear so that --02-29 survives.
func ParseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return t, true, nil
		}
	}

	formatsWithoutYear := []string{config.DateFormatNoYearD, config.DateFormatNoYearB}
	for _, f := range formatsWithoutYear {
		if t, err := time.Parse(f, value); err == nil {
			safeDate := time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return safeDate, false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}

// FormatDate renders a calendar date in the canonical YYYY-MM-DD form.
func FormatDate(t time.Time) string {
	return t.Format(config.DateFormatFullDash)
}
