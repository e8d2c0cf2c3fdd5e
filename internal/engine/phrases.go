package engine

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-friends/internal/config"
)

// Phrasebook renders user-facing text. The boolean is false when the message
// is not available, in which case the engine falls back to English.
// A data entry under config.TDataCount selects the plural form.
type Phrasebook interface {
	Phrase(id string, data map[string]any) (string, bool)
}

// texts resolves messages through an optional Phrasebook.
type texts struct {
	book Phrasebook
}

func (t texts) phrase(id string, data map[string]any, fallback func() string) string {
	if t.book != nil {
		if s, ok := t.book.Phrase(id, data); ok {
			return s
		}
	}
	return fallback()
}

func (t texts) static(id, fallback string) string {
	return t.phrase(id, nil, func() string { return fallback })
}

func (t texts) date(d time.Time) string {
	layout := t.static(config.TKeyFormatDate, config.DateFormatFullDash)
	return d.Format(layout)
}

func (t texts) days(n int) string {
	if n == 1 {
		return config.FallbackDaySingular
	}
	return config.FallbackDayPlural
}

func (t texts) messageNotification(name string) (string, string) {
	title := t.static(config.TKeyMessageTitle, config.FallbackMessageTitle)
	body := t.phrase(config.TKeyMessageBody,
		map[string]any{config.TDataName: name},
		func() string { return fmt.Sprintf(config.FallbackMessageBody, name) })
	return title, body
}

func (t texts) birthdayNotification(name string, on time.Time) (string, string) {
	date := t.date(on)
	title := t.static(config.TKeyBirthdayTitle, config.FallbackBirthdayTitle)
	body := t.phrase(config.TKeyBirthdayBody,
		map[string]any{config.TDataName: name, config.TDataDate: date},
		func() string { return fmt.Sprintf(config.FallbackBirthdayBody, name, date) })
	return title, body
}

func (t texts) importantDateNotification(name, description string, on time.Time) (string, string) {
	date := t.date(on)
	title := t.static(config.TKeyDateTitle, config.FallbackDateTitle)
	body := t.phrase(config.TKeyDateBody,
		map[string]any{config.TDataName: name, config.TDataDescription: description, config.TDataDate: date},
		func() string { return fmt.Sprintf(config.FallbackDateBody, name, description, date) })
	return title, body
}

func (t texts) feedBirthday(name string, age int) string {
	if age > 0 {
		return t.phrase(config.TKeyFeedBirthdayAge,
			map[string]any{config.TDataName: name, config.TDataAge: age},
			func() string { return fmt.Sprintf(config.FallbackFeedBirthdayAge, name, age) })
	}
	return t.phrase(config.TKeyFeedBirthday,
		map[string]any{config.TDataName: name},
		func() string { return fmt.Sprintf(config.FallbackFeedBirthday, name) })
}

func displayName(f *Friend) string {
	if f.Name == "" {
		return config.FallbackName
	}
	return f.Name
}
