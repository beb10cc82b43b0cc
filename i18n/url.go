package i18n

import (
	"path"
	"strings"
)

// spanishSuffix marks the Spanish variant of a content file.
const spanishSuffix = "_es"

// LocalizedURL rewrites a content URL for lang. Spanish inserts "_es" right
// before the file extension, English strips it. Applying it twice for the
// same language yields the same URL as applying it once. A leading slash is
// dropped so the result resolves against the content root.
func LocalizedURL(baseURL string, lang Lang) string {
	baseURL = strings.TrimPrefix(baseURL, "/")
	ext := path.Ext(baseURL)
	if ext == "" || strings.Contains(ext, "/") {
		return baseURL
	}
	stem := strings.TrimSuffix(baseURL, ext)
	hasSuffix := strings.HasSuffix(stem, spanishSuffix)
	switch lang {
	case Spanish:
		if hasSuffix {
			return baseURL
		}
		return stem + spanishSuffix + ext
	default:
		if !hasSuffix {
			return baseURL
		}
		return strings.TrimSuffix(stem, spanishSuffix) + ext
	}
}
