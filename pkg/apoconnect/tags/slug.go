package tags

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSuggestions is the most tags ExtractTags returns
const MaxSuggestions = 5

// Keywords are the domain terms ExtractTags looks for, in result order
var Keywords = []string{
	"apotheke", "rezept", "medikament", "arzneimittel", "lieferengpass",
	"rabattvertrag", "retax", "btm", "substitution", "beratung",
	"marketing", "personal", "digitalisierung", "software", "kasse",
	"großhandel", "versicherung", "recht", "steuer", "finanzen",
	"e-rezept", "cardlink", "warenwirtschaft", "notdienst", "impfung",
}

var (
	germanLetters = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")
	nonAlnumRun   = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify turns a tag name into its URL-safe key: German umlauts are
// transliterated, other accents dropped, and every run of anything but
// a-z and 0-9 becomes a single hyphen.
func Slugify(text string) string {
	s := germanLetters.Replace(norm.NFC.String(strings.ToLower(text)))

	// transformers keep state, so build one per call
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(fold, s); err == nil {
		s = folded
	}

	s = nonAlnumRun.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ExtractTags returns the keywords contained in text, at most
// MaxSuggestions, in keyword order. Matching is plain substring
// containment, so "lieferengpässe" does not match "lieferengpass".
func ExtractTags(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0, MaxSuggestions)
	for _, keyword := range Keywords {
		if strings.Contains(lower, keyword) {
			found = append(found, keyword)
			if len(found) == MaxSuggestions {
				break
			}
		}
	}
	return found
}
