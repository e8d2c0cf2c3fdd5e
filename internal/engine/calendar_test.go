package engine_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/engine"
)

func TestCalendar_Events(t *testing.T) {
	g := engine.NewGenerator(engine.FixedClock(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)), nil)
	friends := sampleFriends()
	friends = append(friends, engine.Friend{
		ID:       "carol",
		Name:     "Carol",
		Birthday: day(2000, 12, 1), // year unknown
		ImportantDates: []engine.ImportantDate{
			{Date: day(2024, 1, 5), Description: "Book club", Recurrence: engine.RecurrenceMonthly},
			{Date: day(2025, 8, 1), Description: "Move", Recurrence: engine.RecurrenceNone},
		},
	})

	data, count, err := g.Calendar(friends, config.DefaultFeedHorizon, "")
	require.NoError(t, err)
	ics := string(data)

	assert.Equal(t, 6, count, "Three birthdays and three important dates")
	assert.Equal(t, count, strings.Count(ics, "BEGIN:VEVENT"))
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "SUMMARY:Birthday: Alice (35)")
	assert.Contains(t, ics, "SUMMARY:Birthday: Bob (37)")
	assert.Contains(t, ics, "SUMMARY:Birthday: Carol\r\n", "No age without a birth year")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20250620")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20251201")
	assert.Contains(t, ics, "DTSTART;VALUE=DATE:20250705")

	// Birthdays and the yearly anniversary repeat every year, the book club monthly.
	assert.Equal(t, 4, strings.Count(ics, "RRULE:FREQ=YEARLY"))
	assert.Equal(t, 1, strings.Count(ics, "RRULE:FREQ=MONTHLY"))
	assert.NotContains(t, ics, "BEGIN:VALARM", "No alarm without a trigger")
}

func TestCalendar_Alarm(t *testing.T) {
	g := engine.NewGenerator(engine.FixedClock(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)), nil)

	data, count, err := g.Calendar(sampleFriends(), 30, "-P1D")
	require.NoError(t, err)
	ics := string(data)

	assert.Equal(t, count, strings.Count(ics, "BEGIN:VALARM"), "Every event carries an alarm")
	assert.Contains(t, ics, "TRIGGER:-P1D")
	assert.Contains(t, ics, "ACTION:DISPLAY")
}

func TestCalendar_StableUIDs(t *testing.T) {
	friends := sampleFriends()
	morning := engine.NewGenerator(engine.FixedClock(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)), nil)
	evening := engine.NewGenerator(engine.FixedClock(time.Date(2025, 6, 15, 21, 0, 0, 0, time.UTC)), nil)

	a, _, err := morning.Calendar(friends, 30, "")
	require.NoError(t, err)
	b, _, err := evening.Calendar(friends, 30, "")
	require.NoError(t, err)

	assert.Equal(t, uidLines(string(a)), uidLines(string(b)))
	assert.NotEmpty(t, uidLines(string(a)))
}

func TestCalendar_Empty(t *testing.T) {
	g := engine.NewGenerator(engine.FixedClock(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)), nil)

	data, count, err := g.Calendar(nil, 30, "")

	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, config.StubVCalendar, string(data))
}

func uidLines(ics string) []string {
	var out []string
	for _, line := range strings.Split(ics, "\r\n") {
		if strings.HasPrefix(line, config.PropUID+":") {
			out = append(out, line)
		}
	}
	return out
}
