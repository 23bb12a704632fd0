// Package identity derives the deterministic person key that makes a
// student or staff member addressable across registrations and visits
// without a registry number.
package identity

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FieldSeparator joins the key components. Within a component spaces
// collapse to hyphens, so the underscore can never appear inside one.
const FieldSeparator = "_"

var (
	reNonAlnum   = regexp.MustCompile(`[^a-z0-9]+`)
	reNonDigit   = regexp.MustCompile(`[^0-9]`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify lowercases, strips diacritics and replaces every non
// alphanumeric run with a single hyphen. "José da Silva" becomes
// "jose-da-silva". Deterministic for any input casing or accent form.
func Slugify(s string) string {
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)
	folded = reNonAlnum.ReplaceAllString(folded, "-")
	return strings.Trim(folded, "-")
}

// SlugifyDate keeps only digits: "2012-05-01" and "01/05/2012" keep
// their digit order, so callers must normalize to ISO form first.
func SlugifyDate(s string) string {
	return reNonDigit.ReplaceAllString(s, "")
}

// ValidateFullName requires at least two name tokens with a surname of
// two or more letters. Single-word names cannot produce a stable key.
func ValidateFullName(fullName string) error {
	tokens := strings.Fields(strings.TrimSpace(fullName))
	if len(tokens) < 2 {
		return ErrInvalidName
	}
	if len([]rune(tokens[1])) < 2 {
		return ErrInvalidName
	}
	return nil
}

// ComputePersonKey builds the deterministic record key from the intake
// fields. Two registrations of the same person always produce the same
// key; homonyms are split by birth date and guardian name.
func ComputePersonKey(fullName, birthDate, guardianName, tenantID string) (string, error) {
	if err := ValidateFullName(fullName); err != nil {
		return "", err
	}

	parts := []string{
		Slugify(fullName),
		SlugifyDate(birthDate),
		Slugify(guardianName),
		Slugify(tenantID),
	}
	if parts[0] == "" || parts[3] == "" {
		return "", ErrInvalidInput
	}
	return strings.Join(parts, FieldSeparator), nil
}

// Age derives full years from an ISO birth date at the given instant.
// Returns false for unparsable or future dates.
func Age(birthDate string, now time.Time) (int, bool) {
	born, err := time.Parse("2006-01-02", strings.TrimSpace(birthDate))
	if err != nil {
		return 0, false
	}
	years := now.Year() - born.Year()
	if born.AddDate(years, 0, 0).After(now) {
		years--
	}
	if years < 0 {
		return 0, false
	}
	return years, true
}

// NormalizeText is the storage convention for free-text fields: lower
// case, trimmed, single-spaced, accents preserved.
func NormalizeText(s string) string {
	return reWhitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), " ")
}

// DisplayName title-cases a stored lowercase name for presentation.
// Short connectives stay lowercase, matching Brazilian naming usage.
func DisplayName(s string) string {
	connectives := map[string]bool{"da": true, "de": true, "do": true, "das": true, "dos": true, "e": true}
	tokens := strings.Fields(s)
	for i, tok := range tokens {
		lower := strings.ToLower(tok)
		if i > 0 && connectives[lower] {
			tokens[i] = lower
			continue
		}
		r := []rune(lower)
		r[0] = unicode.ToUpper(r[0])
		tokens[i] = string(r)
	}
	return strings.Join(tokens, " ")
}
