// Package i18n localizes user-facing notification text from the embedded
// locale files.
package i18n

import (
	"embed"
	"encoding/json"
	"errors"
	"log/slog"
	"slices"
	"strings"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-friends/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

const (
	localeDir    = "locales"
	localePrefix = "active."
	localeSuffix = ".json"
)

// Catalog resolves message IDs in the user's language, falling back to
// English for messages a locale does not translate.
type Catalog struct {
	bundle    *goi18n.Bundle
	localizer *goi18n.Localizer
	languages []string
	lang      string
}

// New loads every embedded locale and selects lang.
func New(lang string) (*Catalog, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		return nil, errors.New(config.ErrLocalesAccess)
	}

	var detected []string
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, localePrefix) || !strings.HasSuffix(name, localeSuffix) {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		code := strings.TrimSuffix(strings.TrimPrefix(name, localePrefix), localeSuffix)
		if code == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, localeDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detected = append(detected, code)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, code,
			config.LogKeyFile, name,
		)
	}

	c := &Catalog{bundle: bundle, languages: detected}
	c.SetLanguage(lang)
	return c, nil
}

// Languages lists the locale codes found in the embedded files.
func (c *Catalog) Languages() []string {
	return slices.Clone(c.languages)
}

// Language returns the active locale code.
func (c *Catalog) Language() string {
	return c.lang
}

// SetLanguage switches the active locale. Empty or unknown codes select the
// default language.
func (c *Catalog) SetLanguage(lang string) {
	lang = strings.TrimSpace(lang)
	if lang == "" || !slices.Contains(c.languages, lang) {
		lang = config.DefaultLanguage
	}
	c.lang = lang
	c.localizer = goi18n.NewLocalizer(c.bundle, lang)
}

// Phrase implements engine.Phrasebook. An entry under config.TDataCount is
// used as the plural count.
func (c *Catalog) Phrase(id string, data map[string]any) (string, bool) {
	lc := &goi18n.LocalizeConfig{MessageID: id, TemplateData: data}
	if n, ok := data[config.TDataCount]; ok {
		lc.PluralCount = n
	}

	msg, err := c.localizer.Localize(lc)
	if err != nil {
		// A message found only in the default language is still usable.
		var notFound *goi18n.MessageNotFoundErr
		if !errors.As(err, &notFound) || msg == "" {
			slog.Debug(config.MsgTransMissing,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyKey, id,
				config.LogKeyError, err,
			)
			return "", false
		}
	}
	return msg, true
}
