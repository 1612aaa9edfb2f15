// Package topics loads the list of conversation topics a chat can start from.
package topics

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"regexp"
	"strings"
	"unicode"
)

var delimiters = regexp.MustCompile(`\n|•|→| - |\|`)

// Parse splits a raw topic list into topics. Entries are separated by
// newlines, bullets, arrows, " - " or "|"; runs of words glued together
// without spaces ("AllahBelief") are split at lower-to-upper case boundaries.
func Parse(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	var out []string
	for _, piece := range delimiters.Split(raw, -1) {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if strings.ContainsRune(piece, ' ') {
			out = append(out, piece)
			continue
		}
		out = append(out, splitCamel(piece)...)
	}
	return out
}

func splitCamel(s string) []string {
	var parts []string
	start := 0
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if unicode.IsLower(runes[i-1]) && unicode.IsUpper(runes[i]) {
			parts = append(parts, string(runes[start:i]))
			start = i
		}
	}
	return append(parts, string(runes[start:]))
}

// Load reads one topic per line, skipping blank lines.
func Load(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read topics file: %w", err)
	}

	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no topics in %s", path)
	}
	return out, nil
}

// Pick returns a random topic.
func Pick(list []string, rng *rand.Rand) (string, error) {
	if len(list) == 0 {
		return "", errors.New("empty topic list")
	}
	return list[rng.Intn(len(list))], nil
}
