package engine_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-friends/internal/engine"
)

func sampleFriends() []engine.Friend {
	return engine.NormalizeFriends([]engine.Friend{
		{
			ID:                          "alice",
			Name:                        "Alice",
			Tier:                        engine.TierClose,
			Birthday:                    day(1990, 6, 20),
			BirthYearKnown:              true,
			EnableReminders:             true,
			EnableBirthdayNotifications: true,
			CreatedAt:                   day(2025, 1, 1),
			ImportantDates: []engine.ImportantDate{
				{Date: day(2019, 6, 25), Description: "Anniversary", Recurrence: engine.RecurrenceYearly},
			},
		},
		{
			ID:                          "bob",
			Name:                        "Bob",
			Tier:                        engine.TierRegular,
			EnableReminders:             true,
			EnableBirthdayNotifications: false,
			CreatedAt:                   day(2025, 1, 1),
			Birthday:                    day(1988, 6, 17),
			BirthYearKnown:              true,
			Interactions:                []engine.Interaction{contact(2025, 6, 10)},
		},
	})
}

func TestGenerator_Candidates(t *testing.T) {
	g := engine.NewGenerator(engine.FixedClock(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)), nil)

	got := g.Candidates(sampleFriends())

	require.Len(t, got, 4)

	assert.Equal(t, engine.KindMessage, got[0].Kind)
	assert.Equal(t, "message-alice", got[0].Key)
	assert.Equal(t, "Time to message a friend!", got[0].Title)
	assert.Equal(t, "Don't forget to message Alice!", got[0].Body)

	assert.Equal(t, engine.KindImportantDate, got[1].Kind)
	assert.Equal(t, "importantDate-alice-Anniversary-2025-06-25", got[1].Key)
	assert.Equal(t, "Alice's Anniversary is on 2025-06-25!", got[1].Body)

	// Birthdays come last, soonest first.
	assert.Equal(t, "birthday-bob-2025-06-17", got[2].Key)
	assert.Equal(t, "birthday-alice-2025-06-20", got[3].Key)
	assert.Equal(t, "Upcoming Birthday!", got[3].Title)
	assert.Equal(t, "Alice's birthday is on 2025-06-20!", got[3].Body)
}

func TestGenerator_Notifications(t *testing.T) {
	friends := sampleFriends()
	g := engine.NewGenerator(engine.FixedClock(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)), nil)
	gate := defaultGate(t, nil)

	first := g.Notifications(friends, gate)

	require.Len(t, first, 3, "Bob opted out of birthday notifications")
	for _, n := range first {
		assert.True(t, n.Sound)
		assert.NotEqual(t, "bob", n.FriendID)
	}

	assert.Empty(t, g.Notifications(friends, gate), "A second pass in the same session is silent")
}

func TestGenerator_NotificationsOutsideSchedule(t *testing.T) {
	g := engine.NewGenerator(engine.FixedClock(time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC)), nil)
	gate := defaultGate(t, nil)

	assert.Empty(t, g.Notifications(sampleFriends(), gate))
	assert.Empty(t, gate.Keys, "Suppressed candidates are not recorded")
}

func TestGenerator_Digest(t *testing.T) {
	g := engine.NewGenerator(engine.FixedClock(time.Date(2025, 6, 15, 20, 0, 0, 0, time.UTC)), nil)

	email, in := g.Digest(sampleFriends())

	require.Len(t, in.NeedingContact, 1)
	assert.Equal(t, "alice", in.NeedingContact[0].ID)
	require.Len(t, in.Birthdays, 2, "The digest ignores per-friend opt-outs")
	assert.Empty(t, in.ImportantDates, "Jun 25 is beyond the 7 day digest horizon")

	assert.Equal(t, "Friends Reminder - Daily Digest", email.Subject)
	assert.True(t, strings.HasPrefix(email.Body, "Hello!"))
	assert.Contains(t, email.Body, "• Bob - 2 days away")
	assert.Contains(t, email.Body, "• Alice - 5 days away")
}

func TestGenerator_IsPure(t *testing.T) {
	friends := sampleFriends()
	g := engine.NewGenerator(engine.FixedClock(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)), nil)

	assert.Equal(t, g.Candidates(friends), g.Candidates(friends))
	assert.Equal(t, "Alice", friends[0].Name)
	assert.Len(t, friends[1].Interactions, 1)
}

func TestNormalizeFriends(t *testing.T) {
	input := []engine.Friend{{
		ID: "f1",
		Interactions: []engine.Interaction{
			contact(2025, 3, 1),
			{Method: "Text"}, // no date
			contact(2025, 1, 1),
		},
	}}

	got := engine.NormalizeFriends(input)

	require.Len(t, got[0].Interactions, 2)
	assert.Equal(t, day(2025, 1, 1), got[0].Interactions[0].Date)
	assert.Len(t, input[0].Interactions, 3, "The input is not modified")
	assert.Equal(t, day(2025, 3, 1), input[0].Interactions[0].Date)

	f, ok := engine.FindFriend(got, "f1")
	require.True(t, ok)
	assert.Equal(t, "f1", f.ID)
	_, ok = engine.FindFriend(got, "ghost")
	assert.False(t, ok)
}
