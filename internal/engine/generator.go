package engine

import (
	"log/slog"
	"time"

	"github.com/tartampluch/go-friends/internal/config"
)

// Generator turns a friend snapshot into notification candidates, digests and
// calendar feeds. It holds no state between calls: the same snapshot and
// clock always yield the same output.
type Generator struct {
	Clock Clock

	// Phrases localizes the generated text. Nil renders English.
	Phrases Phrasebook

	// HorizonDays is the look-ahead of interactive notifications.
	HorizonDays int

	// DigestHorizonDays is the look-ahead of the batch digest.
	DigestHorizonDays int
}

// NewGenerator returns a generator with the default horizons.
func NewGenerator(clock Clock, phrases Phrasebook) *Generator {
	return &Generator{
		Clock:             clock,
		Phrases:           phrases,
		HorizonDays:       config.DefaultHorizonDays,
		DigestHorizonDays: config.DefaultDigestHorizon,
	}
}

func (g *Generator) now() time.Time {
	if g.Clock == nil {
		return time.Now()
	}
	return g.Clock.Now()
}

// Candidates lists every event that qualifies for a notification today:
// per friend a contact reminder then its important dates, then all birthdays.
func (g *Generator) Candidates(friends []Friend) []Candidate {
	today := g.now()
	t := texts{book: g.Phrases}
	var out []Candidate

	for i := range friends {
		f := &friends[i]
		name := displayName(f)

		last, _ := LatestInteractionDate(f.Interactions)
		if NeedsContact(last, ResolveIntervalDays(f), today) {
			title, body := t.messageNotification(name)
			out = append(out, Candidate{
				Friend: f,
				Kind:   KindMessage,
				Key:    MessageKey(f.ID),
				Title:  title,
				Body:   body,
			})
		}

		for _, o := range UpcomingImportantDates(f, today, g.HorizonDays) {
			title, body := t.importantDateNotification(name, o.Event.Description, o.Date)
			out = append(out, Candidate{
				Friend: f,
				Kind:   KindImportantDate,
				Key:    ImportantDateKey(f.ID, o.Event.Description, o.Date),
				Title:  title,
				Body:   body,
			})
		}
	}

	for _, o := range UpcomingBirthdays(friends, today, g.HorizonDays) {
		title, body := t.birthdayNotification(displayName(o.Friend), o.Date)
		out = append(out, Candidate{
			Friend: o.Friend,
			Kind:   KindBirthday,
			Key:    BirthdayKey(o.Friend.ID, o.Date),
			Title:  title,
			Body:   body,
		})
	}
	return out
}

// Notifications gates the candidates of the snapshot with the gate's clock
// reading taken from the generator clock.
func (g *Generator) Notifications(friends []Friend, gate *Gate) []NotificationRequest {
	candidates := g.Candidates(friends)
	requests := gate.Filter(g.now(), candidates)
	slog.Info("Notification pass finished",
		config.LogKeyComponent, config.CompEngine,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyTotal, len(candidates)),
			slog.Int(config.LogKeyQueued, len(requests)),
		),
	)
	return requests
}

// SelectDigest picks what the batch digest reports on.
func (g *Generator) SelectDigest(friends []Friend) DigestInput {
	today := g.now()
	return DigestInput{
		NeedingContact: FriendsNeedingContact(friends, today),
		Birthdays:      UpcomingBirthdays(friends, today, g.DigestHorizonDays),
		ImportantDates: UpcomingImportantDatesAll(friends, today, g.DigestHorizonDays),
	}
}

// Digest selects and renders the digest for a snapshot.
func (g *Generator) Digest(friends []Friend) (DigestEmail, DigestInput) {
	in := g.SelectDigest(friends)
	c := Composer{Phrases: g.Phrases}
	return c.Digest(in), in
}
