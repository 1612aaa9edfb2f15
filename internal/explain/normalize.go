// Package explain validates the correction explanations returned by the
// completion service and renders the survivors for display.
//
// The model is asked for one pipe-labeled line per correction, e.g.
//
//	1 | "Yo es" was changed to "Yo soy" because ser is conjugated as soy.
//
// but it drifts: it reports accent or punctuation fixes, repeats the
// corrected sentence, or claims changes that change nothing. The pipeline
// drops those lines and keeps the substantive ones in order.
package explain

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
)

// asciiPunctuation is the set removed by Normalize.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// Normalize reduces s to the form used to compare the two halves of a change:
// lower case ASCII transliteration without punctuation. "¿Cómo?" becomes
// "como", "Straße" becomes "strasse" and a no-break space becomes a space.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	// Transliteration can emit upper case ("№" is "No"), so lower again.
	s = strings.ToLower(unidecode.Unidecode(strings.ToLower(s)))
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, s)
}
