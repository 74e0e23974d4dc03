package locale

import (
	"embed"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// DefaultLang is the language player messages are shown in when none is configured
const DefaultLang = "ko"

//go:embed translations/*.toml
var translations embed.FS

var fileRe = regexp.MustCompile(`^active\.(?P<lang>.*)\.toml$`)

// Data is the template data for a message
type Data map[string]interface{}

// Localizer renders player-facing messages in one language
type Localizer struct {
	lang      string
	localizer *i18n.Localizer
	languages map[string]string
}

// New loads the embedded translations and returns a localizer for lang.
// Messages without a translation fall back to their English default.
func New(lang string) (*Localizer, error) {
	if lang == "" {
		lang = DefaultLang
	}
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := translations.ReadDir("translations")
	if err != nil {
		return nil, err
	}
	languages := map[string]string{}
	for _, file := range files {
		match := fileRe.FindStringSubmatch(file.Name())
		if match == nil {
			continue
		}
		data, err := translations.ReadFile(path.Join("translations", file.Name()))
		if err != nil {
			return nil, err
		}
		if _, err := bundle.ParseMessageFileBytes(data, file.Name()); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file.Name(), err)
		}
		fileLang := match[fileRe.SubexpIndex("lang")]
		name, _ := i18n.NewLocalizer(bundle, fileLang).Localize(&i18n.LocalizeConfig{
			DefaultMessage: &i18n.Message{ID: "locale.language.name", Other: "English"},
		})
		languages[fileLang] = name
	}
	if _, ok := languages[lang]; !ok {
		return nil, fmt.Errorf("no translations for language %q", lang)
	}

	slog.Debug("locale loaded", slog.String("lang", lang), slog.Int("languages", len(languages)))
	return &Localizer{
		lang:      lang,
		localizer: i18n.NewLocalizer(bundle, lang),
		languages: languages,
	}, nil
}

// MustNew is New for tests and package initialization
func MustNew(lang string) *Localizer {
	l, err := New(lang)
	if err != nil {
		panic(err)
	}
	return l
}

// Lang is the language the localizer renders
func (l *Localizer) Lang() string { return l.lang }

// Languages maps every loaded language tag to its display name
func (l *Localizer) Languages() map[string]string {
	out := make(map[string]string, len(l.languages))
	for k, v := range l.languages {
		out[k] = v
	}
	return out
}

// Text renders msg with data. A missing translation yields the default text.
func (l *Localizer) Text(msg *i18n.Message, data Data) string {
	if l == nil || msg == nil {
		return ""
	}
	out, err := l.localizer.Localize(&i18n.LocalizeConfig{
		DefaultMessage: msg,
		TemplateData:   map[string]interface{}(data),
	})
	if err != nil {
		// Localize still returns the default message when only the
		// translation is missing.
		slog.Debug("localize", slog.String("id", msg.ID), slog.String("error", err.Error()))
	}
	return strings.ReplaceAll(out, "\\n", "\n")
}
