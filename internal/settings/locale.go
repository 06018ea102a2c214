package settings

import (
	"encoding/json"

	"github.com/spf13/cast"
	"golang.org/x/text/language"
)

// Locales supported by the storefront, in fallback priority order. The
// first entry is the default locale.
var Locales = []language.Tag{
	language.French,
	language.English,
	language.German,
}

var matcher = language.NewMatcher(Locales)

// LocaleStrings returns the supported locales as plain tags.
func LocaleStrings() []string {
	out := make([]string, len(Locales))
	for i, tag := range Locales {
		out[i] = tag.String()
	}
	return out
}

// MatchLocale normalizes a requested locale ("fr", "en-US", "de-CH,fr")
// to one of the supported tags.
func MatchLocale(requested string) string {
	if requested == "" {
		return Locales[0].String()
	}
	tag, _ := language.MatchStrings(matcher, requested)
	base, _ := tag.Base()
	return base.String()
}

// ResolveLocalized picks the best value from a locale -> text map:
// requested locale, then the default locale, then any non-empty value.
func ResolveLocalized(values map[string]interface{}, locale string) string {
	if len(values) == 0 {
		return ""
	}
	locale = MatchLocale(locale)
	if v := cast.ToString(values[locale]); v != "" {
		return v
	}
	if v := cast.ToString(values[Locales[0].String()]); v != "" {
		return v
	}
	for _, v := range values {
		if s := cast.ToString(v); s != "" {
			return s
		}
	}
	return ""
}

// ResolveLocalizedJSON resolves a JSON-encoded locale map as stored in
// multilingual settings values.
func ResolveLocalizedJSON(raw string, locale string) string {
	if raw == "" {
		return ""
	}
	values := map[string]interface{}{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		// plain string value, not a locale map
		return raw
	}
	return ResolveLocalized(values, locale)
}

// LocalizedText returns the multilingual settings value resolved against
// the requested locale.
func (m *Manager) LocalizedText(category, name, locale string) string {
	return ResolveLocalizedJSON(m.GetString(category, name), locale)
}
