package engine

import (
	"strings"

	"github.com/tartampluch/go-friends/internal/config"
)

// Tier is the coarse closeness bucket that drives the default cadence.
type Tier string

const (
	TierClose   Tier = "close"
	TierRegular Tier = "regular"
	TierDistant Tier = "distant"
)

// ParseTier maps a stored tier string. Unknown or empty tiers become
// TierRegular, the tier new friends are created with.
func ParseTier(s string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(s))) {
	case TierClose:
		return TierClose
	case TierDistant:
		return TierDistant
	default:
		return TierRegular
	}
}

// TierDefault returns the reminder interval in days for a tier.
func TierDefault(t Tier) int {
	switch t {
	case TierClose:
		return config.IntervalWeekly
	case TierRegular:
		return config.IntervalMonthly
	case TierDistant:
		return config.IntervalQuarterly
	default:
		return config.IntervalFallback
	}
}

// FrequencyKind enumerates the reminder frequencies a user can pick.
type FrequencyKind uint8

const (
	// FrequencyNone means no explicit override: the tier decides.
	FrequencyNone FrequencyKind = iota
	FrequencyWeekly
	FrequencyBiWeekly
	FrequencyMonthly
	FrequencyQuarterly
	// FrequencyUnknown keeps an unrecognized stored value around; it behaves as monthly.
	FrequencyUnknown
)

// Frequency is an explicit reminder frequency override.
type Frequency struct {
	Kind FrequencyKind
	// Raw is the original string for FrequencyUnknown.
	Raw string
}

var frequencyNames = map[string]FrequencyKind{
	"weekly":    FrequencyWeekly,
	"bi-weekly": FrequencyBiWeekly,
	"monthly":   FrequencyMonthly,
	"quarterly": FrequencyQuarterly,
}

// ParseFrequency maps a stored frequency string. The empty string is no override.
func ParseFrequency(s string) Frequency {
	s = strings.TrimSpace(s)
	if s == "" {
		return Frequency{Kind: FrequencyNone}
	}
	if kind, ok := frequencyNames[strings.ToLower(s)]; ok {
		return Frequency{Kind: kind}
	}
	return Frequency{Kind: FrequencyUnknown, Raw: s}
}

// IsSet reports whether the friend carries an explicit override.
func (f Frequency) IsSet() bool {
	return f.Kind != FrequencyNone
}

// Days returns the interval of the frequency. Unknown and unset frequencies
// return the monthly fallback.
func (f Frequency) Days() int {
	switch f.Kind {
	case FrequencyWeekly:
		return config.IntervalWeekly
	case FrequencyBiWeekly:
		return config.IntervalBiWeekly
	case FrequencyQuarterly:
		return config.IntervalQuarterly
	default:
		return config.IntervalMonthly
	}
}

// String returns the stored form of the frequency.
func (f Frequency) String() string {
	if f.Kind == FrequencyUnknown {
		return f.Raw
	}
	for name, kind := range frequencyNames {
		if kind == f.Kind {
			return name
		}
	}
	return ""
}

// ResolveIntervalDays returns the cadence for a friend: the explicit frequency
// when set, otherwise the tier default.
func ResolveIntervalDays(f *Friend) int {
	if f.ReminderFrequency.IsSet() {
		return f.ReminderFrequency.Days()
	}
	return TierDefault(f.Tier)
}
