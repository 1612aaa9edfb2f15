package explain

import "regexp"

// DefaultChangePattern matches `"X" was changed to "Y"`. Neither quoted part
// may contain a double quote.
const DefaultChangePattern = `"([^"]+)"\s*was changed to\s*"([^"]+)"`

var defaultChangeRe = regexp.MustCompile(DefaultChangePattern)

// ChangePair is the original and corrected text quoted in an explanation.
type ChangePair struct {
	Original  string
	Corrected string
}

// ExtractChangePair returns the first change pair quoted in s.
func ExtractChangePair(s string) (ChangePair, bool) {
	return extractChangePair(defaultChangeRe, s)
}

func extractChangePair(re *regexp.Regexp, s string) (ChangePair, bool) {
	m := re.FindStringSubmatch(s)
	if len(m) < 3 {
		return ChangePair{}, false
	}
	return ChangePair{Original: m[1], Corrected: m[2]}, true
}

// IsTrivialChange reports whether the two sides of p differ only in case,
// diacritics or punctuation.
func IsTrivialChange(p ChangePair) bool {
	return Normalize(p.Original) == Normalize(p.Corrected)
}
