// Package textnorm normaliza texto vietnamita para búsquedas sin acentos.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold quita diacríticos, pasa a minúsculas y colapsa espacios.
// "Đường Nguyễn Huệ" -> "duong nguyen hue".
func Fold(s string) string {
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = strings.Map(func(r rune) rune {
		switch r {
		case 'đ', 'Đ':
			return 'd'
		}
		return unicode.ToLower(r)
	}, out)
	return strings.Join(strings.Fields(out), " ")
}

// Join pliega y concatena varios campos en un único texto indexable.
func Join(parts ...string) string {
	folded := make([]string, 0, len(parts))
	for _, p := range parts {
		if f := Fold(p); f != "" {
			folded = append(folded, f)
		}
	}
	return strings.Join(folded, " ")
}
