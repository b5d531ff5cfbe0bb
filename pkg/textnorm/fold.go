// Package textnorm normaliza texto libre en español para comparaciones.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold pasa a minúsculas y elimina tildes y diéresis (á -> a, ñ -> n).
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// ContainsAny indica si el texto normalizado contiene alguna de las palabras (también normalizadas).
func ContainsAny(s string, words ...string) bool {
	f := Fold(s)
	for _, w := range words {
		if strings.Contains(f, Fold(w)) {
			return true
		}
	}
	return false
}
