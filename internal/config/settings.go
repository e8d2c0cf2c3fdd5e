package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Settings is the user-level notification settings bundle.
// Times of day use the 24h "HH:MM" form.
type Settings struct {
	QuietHoursStart           string `json:"quietHoursStart"`
	QuietHoursEnd             string `json:"quietHoursEnd"`
	PreferredNotificationTime string `json:"preferredNotificationTime"`
	NotificationSoundEnabled  bool   `json:"notificationSoundEnabled"`
	Language                  string `json:"language"`
}

// DefaultSettings returns the settings a new user starts with.
func DefaultSettings() Settings {
	return Settings{
		QuietHoursStart:           DefaultQuietStart,
		QuietHoursEnd:             DefaultQuietEnd,
		PreferredNotificationTime: DefaultPreferredTime,
		NotificationSoundEnabled:  DefaultSoundEnabled,
		Language:                  DefaultLanguage,
	}
}

// LoadSettings reads a JSON settings file on top of DefaultSettings.
// An empty path or a missing file yields the defaults.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("%s: %w", ErrSettingsRead, err)
	}

	// Fields absent from the file keep their default value.
	if err := json.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("%s: %w", ErrSettingsDecode, err)
	}

	if s.Language == "" {
		s.Language = DefaultLanguage
	}
	return s, nil
}
