// Package messages owns every user-visible string of the bot replies.
// Translations live in embedded locale files; code refers to them through
// the key constants in config.
package messages

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/tartampluch/guild-birthday/internal/config"
	"github.com/tartampluch/guild-birthday/internal/engine"
)

//go:embed locales/*.json
var localeFS embed.FS

// Localizer resolves translation keys for one configured language.
type Localizer struct {
	localizer *i18n.Localizer
}

// New loads the embedded locale bundle and returns a Localizer for lang,
// falling back to English for missing languages or keys.
func New(lang string) (*Localizer, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrLocalesAccess, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrLocaleLoad, err)
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyFile, name,
		)
	}

	return &Localizer{
		localizer: i18n.NewLocalizer(bundle, lang, config.DefaultLanguage),
	}, nil
}

// Get translates a key, returning the key itself when no translation exists.
func (l *Localizer) Get(key string) string {
	if l == nil || l.localizer == nil {
		return key
	}
	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// EngineMessages assembles the localized string set the engine renders with.
func (l *Localizer) EngineMessages() engine.Messages {
	return engine.Messages{
		Upcoming: engine.UpcomingMessages{
			Header:           l.Get(config.TKeyUpcomingHeader),
			TruncationNotice: l.Get(config.TKeyTruncationNotice),
			NoUpcoming:       l.Get(config.TKeyNoUpcoming),
		},
		ListHeaderFormat:   l.Get(config.TKeyListHeader),
		WhenAnswerFormat:   l.Get(config.TKeyWhenAnswer),
		EventSummaryFormat: l.Get(config.TKeyEvtSummary),
	}
}
