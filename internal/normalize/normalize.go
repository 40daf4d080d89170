// Package normalize provides deterministic normalization of bibliographic
// identifiers and titles. Every matching key used by the clustering and
// linking stages passes through this package, so any change here changes
// cluster membership.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	doiPrefixes = []string{
		"https://doi.org/",
		"http://doi.org/",
		"https://dx.doi.org/",
		"http://dx.doi.org/",
		"doi:",
	}

	punctRe      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	// NFD decomposition followed by removal of combining marks.
	deaccent = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// DOI lowercases a DOI and strips URL and "doi:" prefixes.
// Returns "" for values that do not carry a usable identifier.
func DOI(value string) string {
	doi := strings.ToLower(strings.TrimSpace(value))
	if doi == "" {
		return ""
	}

	for _, prefix := range doiPrefixes {
		doi = strings.TrimPrefix(doi, prefix)
	}

	return strings.TrimSpace(doi)
}

// Title lowercases a title, strips diacritics and punctuation, and
// collapses runs of whitespace to single spaces.
func Title(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}

	title, _, err := transform.String(deaccent, value)
	if err != nil {
		// Malformed UTF-8: fall back to the raw value rather than drop the title.
		title = value
	}

	title = strings.ToLower(title)
	title = punctRe.ReplaceAllString(title, " ")
	title = whitespaceRe.ReplaceAllString(title, " ")

	return strings.TrimSpace(title)
}

// SquashTitle is the bucket key form of a title: normalized with all
// whitespace removed, matching how source-internal duplicates differ only
// in spacing or punctuation.
func SquashTitle(value string) string {
	return strings.ReplaceAll(Title(value), " ", "")
}

// TitleTokens splits a normalized title into its tokens.
func TitleTokens(value string) []string {
	title := Title(value)
	if title == "" {
		return nil
	}

	return strings.Split(title, " ")
}

// TokenOverlap computes the Jaccard ratio between the token sets of two
// normalized titles: |A ∩ B| / |A ∪ B|. Identical titles score 1,
// disjoint titles 0.
func TokenOverlap(a, b string) float64 {
	ta := TitleTokens(a)
	tb := TitleTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	set := make(map[string]bool, len(ta))
	for _, tok := range ta {
		set[tok] = true
	}

	intersection := 0
	seen := make(map[string]bool, len(tb))
	for _, tok := range tb {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		if set[tok] {
			intersection++
		}
	}

	union := len(set) + len(seen) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// Year parses a publication year from a free-form value. Returns 0 when no
// year can be extracted.
func Year(value string) int {
	year, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}

	return year
}

// ISSN uppercases an ISSN and strips surrounding whitespace. The hyphen is
// kept: both sources carry the hyphenated form.
func ISSN(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

const openAlexPrefix = "https://openalex.org/"

// OpenAlexID returns an OpenAlex entity id in canonical URL form.
func OpenAlexID(value string) string {
	id := strings.TrimSpace(value)
	if id == "" || strings.HasPrefix(id, openAlexPrefix) {
		return id
	}

	return openAlexPrefix + id
}

// ShortOpenAlexID strips the canonical URL prefix from an OpenAlex id.
func ShortOpenAlexID(value string) string {
	return strings.TrimPrefix(strings.TrimSpace(value), openAlexPrefix)
}
