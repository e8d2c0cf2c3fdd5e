// Package source loads friend snapshots from files and address books and
// converts them into engine records.
package source

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/tartampluch/go-friends/internal/config"
	"github.com/tartampluch/go-friends/internal/engine"
)

// FriendDoc is the stored shape of a friend, one document per friend.
type FriendDoc struct {
	ID                          string             `json:"id"`
	Name                        string             `json:"name"`
	Birthday                    string             `json:"birthday,omitempty"`
	RelationshipTier            string             `json:"relationshipTier,omitempty"`
	ReminderFrequency           string             `json:"reminderFrequency,omitempty"`
	Interactions                []InteractionDoc   `json:"interactions"`
	ImportantDates              []ImportantDateDoc `json:"importantDates"`
	EnableReminders             *bool              `json:"enableReminders,omitempty"`
	EnableBirthdayNotifications *bool              `json:"enableBirthdayNotifications,omitempty"`
	CreatedAt                   string             `json:"createdAt,omitempty"`
}

// InteractionDoc is the stored shape of an interaction.
type InteractionDoc struct {
	Date      string `json:"date"`
	Method    string `json:"method"`
	Notes     string `json:"notes,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ImportantDateDoc is the stored shape of an important date.
type ImportantDateDoc struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Recurrence  string `json:"recurrence,omitempty"`
}

// Friend converts the document. Absent enable flags default to true; values
// that fail to parse are dropped with a warning rather than failing the load.
func (d FriendDoc) Friend() engine.Friend {
	f := engine.Friend{
		ID:                          d.ID,
		Name:                        d.Name,
		Tier:                        engine.ParseTier(d.RelationshipTier),
		ReminderFrequency:           engine.ParseFrequency(d.ReminderFrequency),
		EnableReminders:             flagOrDefault(d.EnableReminders),
		EnableBirthdayNotifications: flagOrDefault(d.EnableBirthdayNotifications),
		CreatedAt:                   parseInstant(d.CreatedAt),
	}

	if d.Birthday != "" {
		birthday, yearKnown, err := engine.ParseDate(d.Birthday)
		if err != nil {
			warnValue(d.ID, d.Birthday)
		} else {
			f.Birthday, f.BirthYearKnown = birthday, yearKnown
		}
	}

	for _, in := range d.Interactions {
		// An unparsable date stays zero and is dropped by NormalizeFriends.
		date, _, _ := engine.ParseDate(in.Date)
		ts := parseInstant(in.Timestamp)
		if ts.IsZero() {
			ts = date
		}
		f.Interactions = append(f.Interactions, engine.Interaction{
			Date:      date,
			Timestamp: ts,
			Method:    in.Method,
			Notes:     in.Notes,
		})
	}

	for _, id := range d.ImportantDates {
		date, _, err := engine.ParseDate(id.Date)
		if err != nil {
			warnValue(d.ID, id.Date)
			continue
		}
		f.ImportantDates = append(f.ImportantDates, engine.ImportantDate{
			Date:        date,
			Description: id.Description,
			Recurrence:  engine.ParseRecurrence(id.Recurrence),
		})
	}
	return f
}

// NewFriendDoc is the inverse of FriendDoc.Friend.
func NewFriendDoc(f engine.Friend) FriendDoc {
	reminders, birthdays := f.EnableReminders, f.EnableBirthdayNotifications
	d := FriendDoc{
		ID:                          f.ID,
		Name:                        f.Name,
		RelationshipTier:            string(f.Tier),
		ReminderFrequency:           f.ReminderFrequency.String(),
		Interactions:                []InteractionDoc{},
		ImportantDates:              []ImportantDateDoc{},
		EnableReminders:             &reminders,
		EnableBirthdayNotifications: &birthdays,
	}
	if f.HasBirthday() {
		d.Birthday = FormatBirthday(f.Birthday, f.BirthYearKnown)
	}
	if !f.CreatedAt.IsZero() {
		d.CreatedAt = f.CreatedAt.UTC().Format(config.DateFormatTimestamp)
	}
	for _, in := range f.Interactions {
		d.Interactions = append(d.Interactions, InteractionDoc{
			Date:      engine.FormatDate(in.Date),
			Method:    in.Method,
			Notes:     in.Notes,
			Timestamp: in.Timestamp.UTC().Format(config.DateFormatTimestamp),
		})
	}
	for _, id := range f.ImportantDates {
		d.ImportantDates = append(d.ImportantDates, ImportantDateDoc{
			Date:        engine.FormatDate(id.Date),
			Description: id.Description,
			Recurrence:  string(id.Recurrence),
		})
	}
	return d
}

// FormatBirthday renders a birthday the way ParseDate reads it back.
func FormatBirthday(birthday time.Time, yearKnown bool) string {
	if !yearKnown {
		return birthday.Format(config.DateFormatNoYearD)
	}
	return engine.FormatDate(birthday)
}

// DecodeSnapshot reads a JSON array of friend documents and returns the
// normalized friends.
func DecodeSnapshot(r io.Reader) ([]engine.Friend, error) {
	var docs []FriendDoc
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSnapshotDecode, err)
	}

	friends := make([]engine.Friend, 0, len(docs))
	for _, d := range docs {
		friends = append(friends, d.Friend())
	}
	return engine.NormalizeFriends(friends), nil
}

// LoadSnapshot reads a friend snapshot file.
func LoadSnapshot(path string) ([]engine.Friend, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrSnapshotRead, err)
	}
	defer func() { _ = file.Close() }()

	friends, err := DecodeSnapshot(file)
	if err != nil {
		return nil, err
	}

	slog.Info(config.MsgSnapshotLoaded,
		config.LogKeyComponent, config.CompSource,
		config.LogKeyPath, path,
		config.LogKeyCount, len(friends),
	)
	return friends, nil
}

func flagOrDefault(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

// parseInstant accepts RFC3339 timestamps with or without fractional seconds.
func parseInstant(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(config.DateFormatTimestamp, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func warnValue(friendID, value string) {
	slog.Warn(config.MsgSkippedDate,
		config.LogKeyComponent, config.CompSource,
		config.LogKeyFriend, friendID,
		config.LogKeyValue, value,
	)
}
