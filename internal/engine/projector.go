package engine

import (
	"time"
)

// BirthdayOccurrence is a birthday projected onto its next date.
type BirthdayOccurrence struct {
	Friend    *Friend
	Date      time.Time
	DaysUntil int

	// AgeNext is the age the friend turns on Date. Zero when the birth year is unknown.
	AgeNext int
}

// DateOccurrence is an important date projected onto its next date.
type DateOccurrence struct {
	Friend    *Friend
	Event     ImportantDate
	Date      time.Time
	DaysUntil int
}

// UpcomingBirthdays returns the birthdays falling within [today, today+horizonDays],
// soonest first. Friends without a birthday are skipped.
func UpcomingBirthdays(friends []Friend, today time.Time, horizonDays int) []BirthdayOccurrence {
	var out []BirthdayOccurrence
	for i := range friends {
		f := &friends[i]
		if !f.HasBirthday() {
			continue
		}

		next := NextAnnualOccurrence(f.Birthday.Month(), f.Birthday.Day(), today.Year(), today)
		days := DaysUntil(next, today)
		if days < 0 || days > horizonDays {
			continue
		}

		occ := BirthdayOccurrence{Friend: f, Date: next, DaysUntil: days}
		if f.BirthYearKnown {
			occ.AgeNext = next.Year() - f.Birthday.Year()
		}
		out = append(out, occ)
	}
	byDate(out, func(o BirthdayOccurrence) time.Time { return o.Date })
	return out
}

// NextImportantDateOccurrence projects an important date. One-time dates that
// already passed have no next occurrence.
func NextImportantDateOccurrence(d ImportantDate, today time.Time) (time.Time, bool) {
	switch d.Recurrence {
	case RecurrenceYearly:
		return NextAnnualOccurrence(d.Date.Month(), d.Date.Day(), today.Year(), today), true
	case RecurrenceMonthly:
		return NextMonthlyOccurrence(d.Date.Day(), today), true
	default:
		y, m, day := d.Date.Date()
		literal := time.Date(y, m, day, 0, 0, 0, 0, today.Location())
		if literal.Before(StartOfDay(today)) {
			return time.Time{}, false
		}
		return literal, true
	}
}

// UpcomingImportantDates returns the friend's important dates falling within
// [today, today+horizonDays], soonest first.
func UpcomingImportantDates(f *Friend, today time.Time, horizonDays int) []DateOccurrence {
	var out []DateOccurrence
	for _, d := range f.ImportantDates {
		next, ok := NextImportantDateOccurrence(d, today)
		if !ok {
			continue
		}
		days := DaysUntil(next, today)
		if days < 0 || days > horizonDays {
			continue
		}
		out = append(out, DateOccurrence{Friend: f, Event: d, Date: next, DaysUntil: days})
	}
	byDate(out, func(o DateOccurrence) time.Time { return o.Date })
	return out
}

// UpcomingImportantDatesAll flattens UpcomingImportantDates over every friend,
// soonest first. Ties keep friend order.
func UpcomingImportantDatesAll(friends []Friend, today time.Time, horizonDays int) []DateOccurrence {
	var out []DateOccurrence
	for i := range friends {
		out = append(out, UpcomingImportantDates(&friends[i], today, horizonDays)...)
	}
	byDate(out, func(o DateOccurrence) time.Time { return o.Date })
	return out
}
