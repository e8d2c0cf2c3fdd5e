package engine

import (
	"math"
	"time"

	"github.com/tartampluch/go-friends/internal/config"
)

// Evaluation summarizes the contact state of one friend on a given day.
type Evaluation struct {
	IntervalDays int
	// LastContact is the zero time when the friend was never contacted.
	LastContact      time.Time
	NeedsContact     bool
	DaysSinceContact int
	Streak           int
	Consistency      int
}

// Evaluate runs every evaluator on a friend.
func Evaluate(f *Friend, today time.Time) Evaluation {
	interval := ResolveIntervalDays(f)
	last, ok := LatestInteractionDate(f.Interactions)

	ev := Evaluation{
		IntervalDays: interval,
		NeedsContact: NeedsContact(last, interval, today),
		Streak:       MessagingStreak(f.Interactions, interval),
		Consistency:  ConsistencyScore(f, today),
	}
	if ok {
		ev.LastContact = last
		ev.DaysSinceContact = DaysBetween(last, today)
	}
	return ev
}

// LatestInteractionDate returns the Date of the most recently logged
// interaction. Logging order (Timestamp) decides, not Date: a snooze is logged
// now but dated in the future.
func LatestInteractionDate(interactions []Interaction) (time.Time, bool) {
	if len(interactions) == 0 {
		return time.Time{}, false
	}
	latest := interactions[0]
	for _, in := range interactions[1:] {
		if in.Timestamp.After(latest.Timestamp) {
			latest = in
		}
	}
	return latest.Date, true
}

// NeedsContact reports whether more than intervalDays calendar days passed
// since lastDate. A zero lastDate means the friend was never contacted.
func NeedsContact(lastDate time.Time, intervalDays int, today time.Time) bool {
	if lastDate.IsZero() {
		return true
	}
	return DaysBetween(lastDate, today) > intervalDays
}

// MessagingStreak counts the consecutive interactions, ending with the most
// recent one, whose gaps stay within the interval plus one day of tolerance.
// Fewer than two interactions is no streak.
func MessagingStreak(interactions []Interaction, intervalDays int) int {
	if len(interactions) < 2 {
		return 0
	}
	sorted := sortedByDate(interactions)

	streak := 1
	for i := 1; i < len(sorted); i++ {
		gap := DaysBetween(sorted[i-1].Date, sorted[i].Date)
		if gap > intervalDays+config.StreakToleranceDays {
			streak = 1
		} else {
			streak++
		}
	}
	return streak
}

// ConsistencyScore is the percentage of complete cadence windows, since the
// friend was added (or first contacted, if earlier), that contain at least
// one interaction. Windows are half-open [start, start+interval): an
// interaction on a boundary belongs to the later window.
//
// A friend never contacted scores 0. A friend whose history is shorter than
// one window scores 100.
func ConsistencyScore(f *Friend, today time.Time) int {
	if len(f.Interactions) == 0 {
		return 0
	}
	sorted := sortedByDate(f.Interactions)
	interval := int64(ResolveIntervalDays(f))

	start := civilDay(sorted[0].Date)
	if !f.CreatedAt.IsZero() && civilDay(f.CreatedAt) < start {
		start = civilDay(f.CreatedAt)
	}

	span := civilDay(today) - start
	total := span / interval
	if total <= 0 {
		return 100
	}

	met := int64(0)
	idx := 0
	for w := int64(0); w < total; w++ {
		lo, hi := start+w*interval, start+(w+1)*interval
		for idx < len(sorted) && civilDay(sorted[idx].Date) < lo {
			idx++
		}
		if idx < len(sorted) && civilDay(sorted[idx].Date) < hi {
			met++
		}
	}

	score := int(math.Round(100 * float64(met) / float64(total)))
	return min(100, score)
}

// AverageConsistency is the mean consistency score across friends, rounded.
func AverageConsistency(friends []Friend, today time.Time) int {
	if len(friends) == 0 {
		return 0
	}
	sum := 0
	for i := range friends {
		sum += ConsistencyScore(&friends[i], today)
	}
	return int(math.Round(float64(sum) / float64(len(friends))))
}

// OnTrackPercentage is the share of friends that do not need contact today.
func OnTrackPercentage(friends []Friend, today time.Time) int {
	if len(friends) == 0 {
		return 0
	}
	onTrack := 0
	for i := range friends {
		last, _ := LatestInteractionDate(friends[i].Interactions)
		if !NeedsContact(last, ResolveIntervalDays(&friends[i]), today) {
			onTrack++
		}
	}
	return int(math.Round(100 * float64(onTrack) / float64(len(friends))))
}

// FriendsNeedingContact filters the friends that are due, keeping input order.
func FriendsNeedingContact(friends []Friend, today time.Time) []*Friend {
	var due []*Friend
	for i := range friends {
		last, _ := LatestInteractionDate(friends[i].Interactions)
		if NeedsContact(last, ResolveIntervalDays(&friends[i]), today) {
			due = append(due, &friends[i])
		}
	}
	return due
}
