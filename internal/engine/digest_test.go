package engine_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/engine"
)

// stubPhrasebook translates a fixed set of IDs.
type stubPhrasebook map[string]string

func (s stubPhrasebook) Phrase(id string, data map[string]any) (string, bool) {
	tmpl, ok := s[id]
	if !ok {
		return "", false
	}
	if name, ok := data[config.TDataName]; ok {
		return fmt.Sprintf(tmpl, name), true
	}
	return tmpl, true
}

func TestComposeDigest_AllSections(t *testing.T) {
	alice := &engine.Friend{ID: "a", Name: "Alice"}
	bob := &engine.Friend{ID: "b", Name: "Bob"}
	carol := &engine.Friend{ID: "c", Name: "Carol"}

	c := engine.Composer{}
	body := c.ComposeDigest(
		[]*engine.Friend{alice},
		[]engine.BirthdayOccurrence{{Friend: bob, DaysUntil: 1}},
		[]engine.DateOccurrence{{Friend: carol, Event: engine.ImportantDate{Description: "Anniversary"}, DaysUntil: 3}},
	)

	want := "Hello! Here's your daily Friends Reminder digest:\n\n" +
		"📱 Friends to Message:\n• Alice\n\n" +
		"🎂 Upcoming Birthdays:\n• Bob - 1 day away\n\n" +
		"📅 Upcoming Important Dates:\n• Carol - Anniversary in 3 days\n\n" +
		"Keep your friendships strong! 💪"
	assert.Equal(t, want, body)
}

func TestComposeDigest_Empty(t *testing.T) {
	c := engine.Composer{}
	body := c.ComposeDigest(nil, nil, nil)

	want := "Hello! Here's your daily Friends Reminder digest:\n\n" +
		"✅ All caught up! No urgent reminders today.\n\n" +
		"Keep your friendships strong! 💪"
	assert.Equal(t, want, body)
}

func TestComposeDigest_OnlySomeSections(t *testing.T) {
	c := engine.Composer{}
	body := c.ComposeDigest(nil, []engine.BirthdayOccurrence{{Friend: &engine.Friend{}, DaysUntil: 0}}, nil)

	assert.Contains(t, body, "• Unknown - 0 days away")
	assert.NotContains(t, body, "Friends to Message")
	assert.NotContains(t, body, "Important Dates")
	assert.NotContains(t, body, "All caught up")
}

func TestComposeDigest_KeepsGivenOrder(t *testing.T) {
	c := engine.Composer{}
	body := c.ComposeDigest([]*engine.Friend{{Name: "Zed"}, {Name: "Amy"}}, nil, nil)

	assert.Less(t, strings.Index(body, "Zed"), strings.Index(body, "Amy"))
}

func TestComposer_Localized(t *testing.T) {
	book := stubPhrasebook{
		config.TKeyDigestSubject:  "Rappel Amis - Résumé du jour",
		config.TKeyDigestGreeting: "Bonjour !",
		config.TKeyDigestContact:  "• %s (à contacter)",
	}
	c := engine.Composer{Phrases: book}

	email := c.Digest(engine.DigestInput{NeedingContact: []*engine.Friend{{Name: "Léa"}}})

	assert.Equal(t, "Rappel Amis - Résumé du jour", email.Subject)
	assert.Contains(t, email.Body, "Bonjour !\n\n")
	assert.Contains(t, email.Body, "• Léa (à contacter)")
	assert.Contains(t, email.Body, config.FallbackDigestContacts, "Missing translations fall back to English")
}

func TestDigestInput_Empty(t *testing.T) {
	assert.True(t, engine.DigestInput{}.Empty())
	assert.False(t, engine.DigestInput{NeedingContact: []*engine.Friend{{}}}.Empty())
}
