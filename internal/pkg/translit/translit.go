// Package translit converts non-Latin display names to their closest
// Latin-alphabet form.
package translit

import (
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// nonLatin matches any character outside the basic Latin letter / digit /
// space / hyphen / period set accepted by the lookup API consumers.
var nonLatin = regexp.MustCompile(`[^A-Za-z0-9 .\-]`)

// NeedsTransliteration reports whether name contains characters outside the
// basic Latin set.
func NeedsTransliteration(name string) bool {
	return nonLatin.MatchString(name)
}

// Latin implements ports.Transliterator via unidecode.
type Latin struct{}

// Transliterate returns the Latin form of text, trimmed. Unidecode can emit
// ASCII punctuation outside the basic set (apostrophes, mostly); residual
// characters are stripped so a rewritten name is never selected again. An
// empty return means no usable transliteration exists for the input.
func (Latin) Transliterate(text string) string {
	out := unidecode.Unidecode(text)
	out = nonLatin.ReplaceAllString(out, "")
	return strings.TrimSpace(out)
}
