// AngelaMos | 2026
// slug.go

package core

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9 -]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify lowercases s, folds accents ("Año" -> "ano"), drops anything
// outside [a-z0-9 -], turns spaces into dashes and collapses dash runs.
func Slugify(s string) string {
	folded, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		s,
	)
	if err != nil {
		folded = s
	}

	out := strings.ToLower(strings.TrimSpace(folded))
	out = slugInvalid.ReplaceAllString(out, "")
	out = slugSpaces.ReplaceAllString(out, "-")
	out = slugDashes.ReplaceAllString(out, "-")
	return strings.Trim(out, "-")
}
