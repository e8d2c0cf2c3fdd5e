package engine

import (
	"fmt"
	"strings"

	"github.com/tartampluch/go-friends/internal/config"
)

// DigestEmail is handed to the delivery collaborator as is.
type DigestEmail struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DigestInput is what a digest reports on, already selected and ordered.
type DigestInput struct {
	NeedingContact []*Friend
	Birthdays      []BirthdayOccurrence
	ImportantDates []DateOccurrence
}

// Empty reports whether nothing is due.
func (in DigestInput) Empty() bool {
	return len(in.NeedingContact) == 0 && len(in.Birthdays) == 0 && len(in.ImportantDates) == 0
}

// Composer renders digests.
type Composer struct {
	// Phrases localizes the digest. Nil renders English.
	Phrases Phrasebook
}

// Digest renders the subject and body for in.
func (c *Composer) Digest(in DigestInput) DigestEmail {
	t := texts{book: c.Phrases}
	return DigestEmail{
		Subject: t.static(config.TKeyDigestSubject, config.FallbackDigestSubject),
		Body:    c.ComposeDigest(in.NeedingContact, in.Birthdays, in.ImportantDates),
	}
}

// ComposeDigest builds the digest body. Sections only appear when non-empty and
// list their entries in the order given.
func (c *Composer) ComposeDigest(needing []*Friend, birthdays []BirthdayOccurrence, dates []DateOccurrence) string {
	t := texts{book: c.Phrases}
	var b strings.Builder

	b.WriteString(t.static(config.TKeyDigestGreeting, config.FallbackDigestGreeting))
	b.WriteString("\n\n")

	if len(needing) > 0 {
		b.WriteString(t.static(config.TKeyDigestContacts, config.FallbackDigestContacts))
		b.WriteString("\n")
		for _, f := range needing {
			name := displayName(f)
			b.WriteString(t.phrase(config.TKeyDigestContact,
				map[string]any{config.TDataName: name},
				func() string { return fmt.Sprintf(config.FallbackDigestContact, name) }))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(birthdays) > 0 {
		b.WriteString(t.static(config.TKeyDigestBirthdays, config.FallbackDigestBirthdays))
		b.WriteString("\n")
		for _, o := range birthdays {
			name, n := displayName(o.Friend), o.DaysUntil
			b.WriteString(t.phrase(config.TKeyDigestBirthday,
				map[string]any{config.TDataName: name, config.TDataCount: n},
				func() string { return fmt.Sprintf(config.FallbackDigestBirthday, name, n, t.days(n)) }))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(dates) > 0 {
		b.WriteString(t.static(config.TKeyDigestDates, config.FallbackDigestDates))
		b.WriteString("\n")
		for _, o := range dates {
			name, desc, n := displayName(o.Friend), o.Event.Description, o.DaysUntil
			b.WriteString(t.phrase(config.TKeyDigestDate,
				map[string]any{config.TDataName: name, config.TDataDescription: desc, config.TDataCount: n},
				func() string { return fmt.Sprintf(config.FallbackDigestDate, name, desc, n, t.days(n)) }))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(needing) == 0 && len(birthdays) == 0 && len(dates) == 0 {
		b.WriteString(t.static(config.TKeyDigestCaughtUp, config.FallbackDigestCaughtUp))
		b.WriteString("\n\n")
	}

	b.WriteString(t.static(config.TKeyDigestSignOff, config.FallbackDigestSignOff))
	return b.String()
}
