package config

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DisplayName renders a locale code as a human-readable English name,
// e.g. "es-es" → "European Spanish". Unknown codes fall back to the
// uppercased code so messages never show an empty label.
func DisplayName(locale string) string {
	tag, err := language.Parse(locale)
	if err != nil {
		return strings.ToUpper(locale)
	}

	name := display.English.Tags().Name(tag)
	if name == "" {
		return strings.ToUpper(locale)
	}
	return name
}
