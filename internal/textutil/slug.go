package textutil

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxSlugLength caps slugs so derived filenames stay comfortably short.
const maxSlugLength = 64

// deaccent decomposes characters and strips combining marks, turning
// "Łukasiewicz Règles" into "Lukasiewicz Regles" before slugging.
var deaccent = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify converts a display title into a lowercase ASCII slug. Accented
// letters are transliterated, every other non-alphanumeric run collapses to a
// single hyphen, and the result is trimmed and length-capped. Empty or fully
// symbolic input yields "untitled".
func Slugify(title string) string {
	flattened, _, err := transform.String(deaccent, title)
	if err != nil {
		flattened = title
	}

	var b strings.Builder
	b.Grow(len(flattened))
	lastHyphen := false
	for _, r := range strings.ToLower(flattened) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) > maxSlugLength {
		slug = strings.Trim(slug[:maxSlugLength], "-")
	}
	if slug == "" {
		return "untitled"
	}
	return slug
}

// UniqueSlug returns base when it is free, otherwise the first "base-2",
// "base-3", ... candidate for which taken reports false.
func UniqueSlug(base string, taken func(string) bool) string {
	if !taken(base) {
		return base
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken(candidate) {
			return candidate
		}
	}
}
