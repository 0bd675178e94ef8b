package model

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ASIN errors.
var (
	// ErrInvalidASIN is returned when the text is not a well-formed product identifier.
	ErrInvalidASIN = errors.New("invalid ASIN: expected 10 alphanumeric characters starting with B0")
	// ErrEmptyASIN is returned when the text is empty after trimming.
	ErrEmptyASIN = errors.New("ASIN cannot be empty")
)

const (
	// ASINLength is the exact number of characters in a product identifier.
	ASINLength = 10
	// ASINPrefix is the prefix every accepted identifier starts with.
	ASINPrefix = "B0"
	// ExampleASIN is shown to users in the usage hint.
	ExampleASIN ASIN = "B0DZGHZQ7V"
)

// ASIN is an immutable Amazon Standard Identification Number.
// The zero value is not a valid identifier; use ParseASIN.
type ASIN string

// ParseASIN trims and upper-cases text and validates it as an ASIN.
//
// Upper-casing uses the root locale so that a Turkish "i" in user input
// is not mapped to a dotted capital.
func ParseASIN(text string) (ASIN, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", ErrEmptyASIN
	}

	normalized := cases.Upper(language.Und).String(trimmed)
	if len(normalized) != ASINLength || !strings.HasPrefix(normalized, ASINPrefix) {
		return "", ErrInvalidASIN
	}
	if !isAlphanumeric(normalized) {
		return "", ErrInvalidASIN
	}

	return ASIN(normalized), nil
}

// MustParseASIN parses an ASIN or panics if invalid.
// Use only for known-valid identifiers in tests or initialization.
func MustParseASIN(text string) ASIN {
	a, err := ParseASIN(text)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the identifier text.
func (a ASIN) String() string {
	return string(a)
}

// isAlphanumeric reports whether s only contains ASCII letters and digits.
func isAlphanumeric(s string) bool {
	for _, c := range s {
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
