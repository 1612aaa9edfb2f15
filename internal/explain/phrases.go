package explain

import "strings"

// DefaultBannedPhrases flag explanations that talk about formatting,
// punctuation or the answer itself rather than grammar.
var DefaultBannedPhrases = []string{
	"¿",
	"¡",
	"accent",
	"bracket",
	"comma",
	"corrected sentence",
	"diacritic",
	"exclamation mark",
	"exclamation point",
	"no changes",
	"question mark",
	"the change",
}

// PassesPhraseFilter reports whether explanation contains none of phrases,
// compared case-insensitively. Blank phrases are ignored.
func PassesPhraseFilter(explanation string, phrases []string) bool {
	_, ok := firstBannedPhrase(explanation, phrases)
	return !ok
}

func firstBannedPhrase(explanation string, phrases []string) (string, bool) {
	lower := strings.ToLower(explanation)
	for _, p := range phrases {
		if strings.TrimSpace(p) == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(p)) {
			return p, true
		}
	}
	return "", false
}
