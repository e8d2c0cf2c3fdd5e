package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tartampluch/go-friends/internal/config"
)

// Kind identifies the reason of a notification.
type Kind string

const (
	KindMessage       Kind = "message"
	KindBirthday      Kind = "birthday"
	KindImportantDate Kind = "importantDate"
)

// NotificationRequest is handed to the delivery collaborator as is.
type NotificationRequest struct {
	Title    string `json:"title"`
	Body     string `json:"body"`
	FriendID string `json:"friendId"`
	Kind     Kind   `json:"kind"`
	Sound    bool   `json:"sound"`
}

// Candidate is an event that qualifies for a notification, before gating.
type Candidate struct {
	Friend *Friend
	Kind   Kind
	// Key identifies the (friend, kind, occurrence) tuple for de-duplication.
	Key   string
	Title string
	Body  string
}

// MessageKey is the de-duplication key of a "needs contact" reminder.
func MessageKey(friendID string) string {
	return fmt.Sprintf(config.KeyFormatMessage, friendID)
}

// BirthdayKey is the de-duplication key of one birthday occurrence.
func BirthdayKey(friendID string, occurrence time.Time) string {
	return fmt.Sprintf(config.KeyFormatBirthday, friendID, FormatDate(occurrence))
}

// ImportantDateKey is the de-duplication key of one important date occurrence.
func ImportantDateKey(friendID, description string, occurrence time.Time) string {
	return fmt.Sprintf(config.KeyFormatImportantDate, friendID, description, FormatDate(occurrence))
}

// NotifiedKeys records which notifications were already shown. It is owned by
// the caller and scoped to one session; it is not safe for concurrent writers.
type NotifiedKeys map[string]bool

// Has reports whether key was recorded.
func (k NotifiedKeys) Has(key string) bool {
	return k[key]
}

// Add records key.
func (k NotifiedKeys) Add(key string) {
	k[key] = true
}

// Remove forgets key.
func (k NotifiedKeys) Remove(key string) {
	delete(k, key)
}

// RemoveFriend forgets every key recorded for friendID.
func (k NotifiedKeys) RemoveFriend(friendID string) {
	delete(k, MessageKey(friendID))
	for _, kind := range []Kind{KindBirthday, KindImportantDate} {
		prefix := string(kind) + config.KeyPrefixSeparator + friendID + config.KeyPrefixSeparator
		for key := range k {
			if strings.HasPrefix(key, prefix) {
				delete(k, key)
			}
		}
	}
}

// ClockTime is a time of day at minute precision.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClockTime parses a 24h "HH:MM" string.
func ParseClockTime(s string) (ClockTime, error) {
	t, err := time.Parse(config.ClockFormat, strings.TrimSpace(s))
	if err != nil {
		return ClockTime{}, fmt.Errorf("%s: %q: %w", config.ErrClockParse, s, err)
	}
	return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (c ClockTime) minutes() int {
	return c.Hour*60 + c.Minute
}

// String renders the time as HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// InQuietHours reports whether now falls within [start, end). When start is
// later than end the window spans midnight.
func InQuietHours(now time.Time, start, end ClockTime) bool {
	current := now.Hour()*60 + now.Minute()
	s, e := start.minutes(), end.minutes()
	if s <= e {
		return current >= s && current < e
	}
	return current >= s || current < e
}

// NearPreferredTime reports whether now is in the preferred hour and within
// one minute of the preferred minute. The tolerance does not cross hour
// boundaries.
func NearPreferredTime(now time.Time, preferred ClockTime) bool {
	if now.Hour() != preferred.Hour {
		return false
	}
	diff := now.Minute() - preferred.Minute
	return diff >= -config.PreferredTimeTolerance && diff <= config.PreferredTimeTolerance
}

// GateSettings are the parsed notification settings.
type GateSettings struct {
	QuietHoursStart ClockTime
	QuietHoursEnd   ClockTime
	PreferredTime   ClockTime
	SoundEnabled    bool
}

// ParseGateSettings validates the user settings bundle.
func ParseGateSettings(s config.Settings) (GateSettings, error) {
	start, errStart := ParseClockTime(s.QuietHoursStart)
	end, errEnd := ParseClockTime(s.QuietHoursEnd)
	pref, errPref := ParseClockTime(s.PreferredNotificationTime)
	if err := errors.Join(errStart, errEnd, errPref); err != nil {
		return GateSettings{}, err
	}
	return GateSettings{
		QuietHoursStart: start,
		QuietHoursEnd:   end,
		PreferredTime:   pref,
		SoundEnabled:    s.NotificationSoundEnabled,
	}, nil
}

// Verdict is the outcome of one gating attempt.
type Verdict int

const (
	Admitted Verdict = iota
	SuppressedQuietHours
	SuppressedNotPreferredTime
	SuppressedOptOut
	SuppressedDuplicate
)

func (v Verdict) String() string {
	switch v {
	case Admitted:
		return "admitted"
	case SuppressedQuietHours:
		return "quiet_hours"
	case SuppressedNotPreferredTime:
		return "not_preferred_time"
	case SuppressedOptOut:
		return "opted_out"
	case SuppressedDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// Gate decides whether a candidate may surface as a notification.
// Notification permission is checked by the caller before calling the gate.
type Gate struct {
	Settings GateSettings
	Keys     NotifiedKeys

	// IgnoreSchedule skips the quiet hours and preferred time checks.
	// Opt-in flags and de-duplication still apply.
	IgnoreSchedule bool
}

// NewGate creates a gate recording into keys. A nil keys map starts a fresh session.
func NewGate(settings GateSettings, keys NotifiedKeys) *Gate {
	if keys == nil {
		keys = NotifiedKeys{}
	}
	return &Gate{Settings: settings, Keys: keys}
}

// Admit runs the checks in order and records the key of admitted candidates.
// Suppression is a normal outcome and is only logged.
func (g *Gate) Admit(now time.Time, c Candidate) Verdict {
	v := g.verdict(now, c)
	log := slog.With(
		config.LogKeyComponent, config.CompGate,
		config.LogKeyFriend, c.Friend.ID,
		config.LogKeyKind, string(c.Kind),
		config.LogKeyKey, c.Key,
	)
	if v != Admitted {
		log.Debug(config.MsgSuppressed, config.LogKeyReason, v.String(), config.LogKeyTitle, c.Title)
		return v
	}
	g.Keys.Add(c.Key)
	log.Debug(config.MsgAdmitted)
	return v
}

func (g *Gate) verdict(now time.Time, c Candidate) Verdict {
	if !g.IgnoreSchedule {
		if InQuietHours(now, g.Settings.QuietHoursStart, g.Settings.QuietHoursEnd) {
			return SuppressedQuietHours
		}
		if !NearPreferredTime(now, g.Settings.PreferredTime) {
			return SuppressedNotPreferredTime
		}
	}
	if !optedIn(c.Friend, c.Kind) {
		return SuppressedOptOut
	}
	if g.Keys.Has(c.Key) {
		return SuppressedDuplicate
	}
	return Admitted
}

func optedIn(f *Friend, kind Kind) bool {
	switch kind {
	case KindMessage, KindImportantDate:
		return f.EnableReminders
	case KindBirthday:
		return f.EnableBirthdayNotifications
	default:
		return false
	}
}

// Filter gates every candidate and returns the requests to deliver.
func (g *Gate) Filter(now time.Time, candidates []Candidate) []NotificationRequest {
	var out []NotificationRequest
	for _, c := range candidates {
		if g.Admit(now, c) != Admitted {
			continue
		}
		out = append(out, NotificationRequest{
			Title:    c.Title,
			Body:     c.Body,
			FriendID: c.Friend.ID,
			Kind:     c.Kind,
			Sound:    g.Settings.SoundEnabled,
		})
	}
	return out
}
