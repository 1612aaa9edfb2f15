// Package sentence splits learner input into sentences so that each one can
// be corrected and explained independently.
package sentence

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Split breaks text after sentence-ending punctuation (. ! ? …) that is
// followed by whitespace. Pieces are trimmed and empty pieces dropped, so
// text without a terminator comes back as a single sentence.
//
// Closing quotes and brackets directly after the terminator stay with the
// sentence they close:
//
//	`Dijo "hola." Luego se fue.` → [`Dijo "hola."`, `Luego se fue.`]
func Split(text string) []string {
	var sentences []string
	start := 0

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if !isTerminator(r) {
			continue
		}

		// Absorb runs like "?!" or "..." and trailing closers.
		end := i
		for end < len(text) {
			next, n := utf8.DecodeRuneInString(text[end:])
			if !isTerminator(next) && !isCloser(next) {
				break
			}
			end += n
		}

		if end == len(text) {
			break
		}
		next, _ := utf8.DecodeRuneInString(text[end:])
		if !unicode.IsSpace(next) {
			i = end
			continue
		}

		if s := strings.TrimSpace(text[start:end]); s != "" {
			sentences = append(sentences, s)
		}
		start = end
		i = end
	}

	if s := strings.TrimSpace(text[start:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '»', '”', '’':
		return true
	}
	return false
}
