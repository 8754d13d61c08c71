// Package textnorm provides text canonicalization utilities for free-form
// status and tag fields. This is part of the platform layer and contains no
// business logic.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Canonical returns the canonical form of a free-form label: trimmed,
// uppercased, with diacritics removed. Accented and unaccented spellings of
// the same label collapse to one key.
func Canonical(s string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}

	folded, _, err := transform.String(stripMarks, trimmed)
	if err != nil {
		folded = trimmed
	}

	return strings.ToUpper(folded)
}

// SplitTags splits a raw tag field on the common separators (comma,
// semicolon, pipe, slash), canonicalizes each piece, and drops empties and
// duplicates. Order of first appearance is preserved.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '/'
	})

	seen := make(map[string]struct{}, len(parts))
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tag := Canonical(part)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	if len(tags) == 0 {
		return nil
	}
	return tags
}
