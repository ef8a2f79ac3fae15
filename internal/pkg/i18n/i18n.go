// Package i18n localizes the messages the API sends back to clients.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

// Translator holds the parsed message catalogs and the languages clients may ask for.
type Translator struct {
	bundle        *i18n.Bundle
	matcher       language.Matcher
	supported     []language.Tag
	defaultLocale language.Tag
}

// NewTranslator loads every embedded locale file. defaultLocale is used when the
// client sends no Accept-Language or asks only for unsupported languages.
func NewTranslator(defaultLocale string) (*Translator, error) {
	def, err := language.Parse(defaultLocale)
	if err != nil {
		return nil, fmt.Errorf("invalid default locale %q: %w", defaultLocale, err)
	}

	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read locales: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		if _, err := bundle.ParseMessageFileBytes(data, e.Name()); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", e.Name(), err)
		}
	}

	// The default goes first so the matcher falls back to it.
	tags := []language.Tag{def}
	for _, tag := range bundle.LanguageTags() {
		if tag != def {
			tags = append(tags, tag)
		}
	}

	return &Translator{
		bundle:        bundle,
		matcher:       language.NewMatcher(tags),
		supported:     tags,
		defaultLocale: def,
	}, nil
}

// Match picks the best supported locale for an Accept-Language header value.
func (t *Translator) Match(acceptLanguage string) string {
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return t.defaultLocale.String()
	}
	_, idx, _ := t.matcher.Match(prefs...)
	return t.supported[idx].String()
}

// Translate renders messageID in locale. The message ID itself is returned when
// no catalog has it, so a missing translation never hides the error.
func (t *Translator) Translate(locale, messageID string, templateData map[string]any) string {
	l := i18n.NewLocalizer(t.bundle, locale, t.defaultLocale.String())
	msg, err := l.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	})
	if err != nil {
		return messageID
	}
	return msg
}

type localized struct {
	translator *Translator
	locale     string
}

// NewContext binds a translator and the request's locale to ctx.
func NewContext(ctx context.Context, t *Translator, locale string) context.Context {
	return context.WithValue(ctx, ctxKey{}, localized{translator: t, locale: locale})
}

// LocaleFromContext returns the locale bound by NewContext, or "" when none is bound.
func LocaleFromContext(ctx context.Context) string {
	if l, ok := ctx.Value(ctxKey{}).(localized); ok {
		return l.locale
	}
	return ""
}

// T translates messageID with the translator bound to ctx. Without one, the
// message ID is returned as is.
func T(ctx context.Context, messageID string, templateData ...map[string]any) string {
	l, ok := ctx.Value(ctxKey{}).(localized)
	if !ok || l.translator == nil {
		return messageID
	}
	var data map[string]any
	if len(templateData) > 0 {
		data = templateData[0]
	}
	return l.translator.Translate(l.locale, messageID, data)
}
