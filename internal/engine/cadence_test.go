package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/go-friends/internal/engine"
)

func TestResolveIntervalDays(t *testing.T) {
	tests := []struct {
		name      string
		tier      engine.Tier
		frequency string
		want      int
	}{
		{"Close tier default", engine.TierClose, "", 7},
		{"Regular tier default", engine.TierRegular, "", 30},
		{"Distant tier default", engine.TierDistant, "", 90},
		{"Unknown tier", engine.Tier("acquaintance"), "", 30},
		{"Explicit weekly beats distant tier", engine.TierDistant, "weekly", 7},
		{"Explicit bi-weekly", engine.TierClose, "bi-weekly", 14},
		{"Explicit monthly", engine.TierClose, "monthly", 30},
		{"Explicit quarterly", engine.TierRegular, "quarterly", 90},
		{"Case-insensitive", engine.TierRegular, "Weekly", 7},
		{"Unrecognized explicit falls back to monthly", engine.TierClose, "fortnightly", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &engine.Friend{Tier: tt.tier, ReminderFrequency: engine.ParseFrequency(tt.frequency)}
			assert.Equal(t, tt.want, engine.ResolveIntervalDays(f))
		})
	}
}

// TestResolveIntervalDays_ClosedRange checks every tier/frequency combination
// lands on a known cadence.
func TestResolveIntervalDays_ClosedRange(t *testing.T) {
	allowed := []int{7, 14, 30, 90}
	tiers := []engine.Tier{engine.TierClose, engine.TierRegular, engine.TierDistant, "", "???"}
	frequencies := []string{"", "weekly", "bi-weekly", "monthly", "quarterly", "daily", "yearly", " "}

	for _, tier := range tiers {
		for _, freq := range frequencies {
			f := &engine.Friend{Tier: tier, ReminderFrequency: engine.ParseFrequency(freq)}
			assert.Contains(t, allowed, engine.ResolveIntervalDays(f), "tier=%q frequency=%q", tier, freq)
		}
	}
}

func TestParseFrequency(t *testing.T) {
	assert.Equal(t, engine.FrequencyNone, engine.ParseFrequency("").Kind)
	assert.False(t, engine.ParseFrequency("  ").IsSet())
	assert.Equal(t, engine.FrequencyBiWeekly, engine.ParseFrequency("bi-weekly").Kind)

	unknown := engine.ParseFrequency("every full moon")
	assert.Equal(t, engine.FrequencyUnknown, unknown.Kind)
	assert.True(t, unknown.IsSet())
	assert.Equal(t, "every full moon", unknown.String(), "Unknown values keep their raw form")
	assert.Equal(t, 30, unknown.Days())

	assert.Equal(t, "quarterly", engine.ParseFrequency("quarterly").String())
}

func TestParseTier(t *testing.T) {
	assert.Equal(t, engine.TierClose, engine.ParseTier("close"))
	assert.Equal(t, engine.TierDistant, engine.ParseTier(" Distant "))
	assert.Equal(t, engine.TierRegular, engine.ParseTier(""))
	assert.Equal(t, engine.TierRegular, engine.ParseTier("bff"))
	assert.Equal(t, 30, engine.TierDefault(engine.Tier("bff")))
}
