package engine

import (
	"log/slog"
	"slices"
	"time"

	"github.com/tartampluch/go-friends/internal/config"
)

// Friend is one relationship tracked by the user.
// The engine treats a Friend as a read-only snapshot supplied by the caller.
type Friend struct {
	ID   string
	Name string

	// Birthday is the calendar date of birth. The zero value means unknown.
	Birthday time.Time

	// BirthYearKnown is false for year-less birthdays (vCard --MM-DD).
	BirthYearKnown bool

	Tier              Tier
	ReminderFrequency Frequency

	// Interactions are kept ascending by Date once NormalizeFriends ran.
	Interactions   []Interaction
	ImportantDates []ImportantDate

	EnableReminders             bool
	EnableBirthdayNotifications bool

	// CreatedAt anchors the consistency score when it predates every interaction.
	CreatedAt time.Time
}

// HasBirthday reports whether a birthday is recorded.
func (f *Friend) HasBirthday() bool {
	return !f.Birthday.IsZero()
}

// Interaction is a contact the user had with a friend.
type Interaction struct {
	// Date is the calendar day the contact happened (or, for a snooze, the day
	// the reminder is pushed to).
	Date time.Time

	// Timestamp is the instant the interaction was logged.
	Timestamp time.Time

	Method string
	Notes  string
}

// Recurrence controls how an ImportantDate repeats.
type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceYearly  Recurrence = "yearly"
	RecurrenceMonthly Recurrence = "monthly"
)

// ParseRecurrence maps a stored recurrence string. Unknown values are one-time events.
func ParseRecurrence(s string) Recurrence {
	switch Recurrence(s) {
	case RecurrenceYearly:
		return RecurrenceYearly
	case RecurrenceMonthly:
		return RecurrenceMonthly
	default:
		return RecurrenceNone
	}
}

// ImportantDate is a custom date attached to a friend (anniversary, exam, ...).
// Date is the first occurrence.
type ImportantDate struct {
	Date        time.Time
	Description string
	Recurrence  Recurrence
}

// NormalizeFriends prepares a freshly loaded snapshot for evaluation.
// It returns copies whose interactions are sorted ascending by Date (ties by
// Timestamp) and drops interactions without a usable Date. The input is not
// modified.
func NormalizeFriends(friends []Friend) []Friend {
	out := make([]Friend, len(friends))
	for i, f := range friends {
		kept := make([]Interaction, 0, len(f.Interactions))
		for _, in := range f.Interactions {
			if in.Date.IsZero() {
				slog.Warn(config.MsgSkippedInteract,
					config.LogKeyComponent, config.CompEngine,
					config.LogKeyFriend, f.ID,
				)
				continue
			}
			kept = append(kept, in)
		}
		slices.SortStableFunc(kept, compareInteractions)

		f.Interactions = kept
		f.ImportantDates = slices.Clone(f.ImportantDates)
		out[i] = f
	}
	return out
}

func compareInteractions(a, b Interaction) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	return a.Timestamp.Compare(b.Timestamp)
}

// sortedByDate returns interactions ascending by Date. Already normalized
// input is returned as is; anything else is sorted on a private copy.
func sortedByDate(interactions []Interaction) []Interaction {
	if slices.IsSortedFunc(interactions, compareInteractions) {
		return interactions
	}
	sorted := slices.Clone(interactions)
	slices.SortStableFunc(sorted, compareInteractions)
	return sorted
}

// FindFriend returns the friend with the given ID.
func FindFriend(friends []Friend, id string) (*Friend, bool) {
	i := slices.IndexFunc(friends, func(f Friend) bool { return f.ID == id })
	if i < 0 {
		return nil, false
	}
	return &friends[i], true
}

// byDate orders occurrences by their projected date, keeping input order on ties.
func byDate[T any](items []T, date func(T) time.Time) {
	slices.SortStableFunc(items, func(a, b T) int {
		return date(a).Compare(date(b))
	})
}
