// Package normalization provides text normalization utilities for duplicate record matching.
package normalization

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// webPrefixes are the residual leading tokens stripped from a normalized website.
// Normalization has already removed "://" and ".", so only the bare words remain.
var webPrefixes = []string{"https", "http"}

// NormalizeString normalizes a value for comparison.
// It performs the following transformations:
// - Converts to lowercase and trims surrounding whitespace
// - Optionally folds diacritics (é -> e) instead of dropping them
// - Removes every character that is not a-z, 0-9 or whitespace
// - Collapses whitespace runs to a single space
//
// The result is trimmed once more so normalizing twice is a no-op.
func NormalizeString(s string, foldDiacritics bool) string {
	if s == "" {
		return ""
	}

	s = strings.TrimSpace(strings.ToLower(s))

	if foldDiacritics && hasNonASCII(s) {
		s = removeAccents(s)
	}

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// Normalize normalizes a value with default options (diacritics are dropped, not folded).
func Normalize(s string) string {
	return NormalizeString(s, false)
}

// EmailDomain returns the part of the lowercased email after the first "@",
// or "" when the address has no "@".
func EmailDomain(email string) string {
	if email == "" {
		return ""
	}
	_, domain, ok := strings.Cut(strings.ToLower(email), "@")
	if !ok {
		return ""
	}
	return domain
}

// WebDomain normalizes a website URL and strips its scheme and "www" prefix.
func WebDomain(rawURL string) string {
	return StripWebPrefixes(Normalize(rawURL))
}

// StripWebPrefixes removes the residual scheme word and "www" from an
// already-normalized website value.
func StripWebPrefixes(normalized string) string {
	for _, p := range webPrefixes {
		if strings.HasPrefix(normalized, p) {
			normalized = normalized[len(p):]
			break
		}
	}
	normalized = strings.TrimPrefix(normalized, "www")
	return strings.TrimSpace(normalized)
}

// hasNonASCII checks if the string contains non-ASCII characters.
func hasNonASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return true
		}
	}
	return false
}

// removeAccents removes diacritical marks from Unicode characters.
func removeAccents(s string) string {
	var result strings.Builder
	for _, r := range norm.NFD.String(s) {
		if !unicode.Is(unicode.Mn, r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
