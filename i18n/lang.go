// Package i18n holds the site's translation table, the localized content URL
// rule and the text substitution pass applied to rendered documents.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Lang is a supported site language.
type Lang string

const (
	English Lang = "en"
	Spanish Lang = "es"
)

// Default is used when no preference is stored.
const Default = English

// Supported lists every language the site renders, default first.
var Supported = []Lang{English, Spanish}

// ParseLang normalizes s and reports whether it names a supported language.
func ParseLang(s string) (Lang, bool) {
	switch Lang(strings.ToLower(strings.TrimSpace(s))) {
	case English:
		return English, true
	case Spanish:
		return Spanish, true
	}
	return "", false
}

// Other returns the language the toggle switches to.
func (l Lang) Other() Lang {
	if l == Spanish {
		return English
	}
	return Spanish
}

func (l Lang) String() string { return string(l) }

var matcher = language.NewMatcher([]language.Tag{language.English, language.Spanish})

// Negotiate picks the best supported language for an Accept-Language header,
// falling back to Default when nothing matches.
func Negotiate(acceptLanguage string) Lang {
	if strings.TrimSpace(acceptLanguage) == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return Default
	}
	return Supported[idx]
}
