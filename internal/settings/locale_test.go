package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchLocale(t *testing.T) {
	assert.Equal(t, "fr", MatchLocale(""))
	assert.Equal(t, "fr", MatchLocale("fr"))
	assert.Equal(t, "fr", MatchLocale("fr-CA"))
	assert.Equal(t, "en", MatchLocale("en-US"))
	assert.Equal(t, "de", MatchLocale("de-CH"))
	assert.Equal(t, "en", MatchLocale("en-GB,en;q=0.9,fr;q=0.5"))
	// unsupported languages fall back to the default
	assert.Equal(t, "fr", MatchLocale("ja"))
}

func TestResolveLocalized(t *testing.T) {
	values := map[string]interface{}{
		"fr": "Entrées",
		"en": "Starters",
	}

	assert.Equal(t, "Entrées", ResolveLocalized(values, "fr"))
	assert.Equal(t, "Starters", ResolveLocalized(values, "en"))
	// missing locale falls back to the default locale
	assert.Equal(t, "Entrées", ResolveLocalized(values, "de"))
	assert.Equal(t, "", ResolveLocalized(nil, "fr"))
}

func TestResolveLocalizedAnyNonEmpty(t *testing.T) {
	values := map[string]interface{}{"de": "Vorspeisen"}
	assert.Equal(t, "Vorspeisen", ResolveLocalized(values, "en"))
}

func TestResolveLocalizedJSON(t *testing.T) {
	raw := `{"fr":"La Carte","en":"The Menu"}`
	assert.Equal(t, "La Carte", ResolveLocalizedJSON(raw, "fr"))
	assert.Equal(t, "The Menu", ResolveLocalizedJSON(raw, "en"))

	// plain string values pass through untouched
	assert.Equal(t, "EUR", ResolveLocalizedJSON("EUR", "fr"))
	assert.Equal(t, "", ResolveLocalizedJSON("", "fr"))
}

func TestLocaleStrings(t *testing.T) {
	assert.Equal(t, []string{"fr", "en", "de"}, LocaleStrings())
}
