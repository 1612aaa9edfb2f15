// Package postprocess removes common LLM artifacts from completion output.
//
// Clean is applied to every reply the tutor receives (conversation replies,
// starters, corrected sentences) before it is shown or passed on.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes LLM artifacts from text in three phases and returns the
// trimmed result:
//  1. Thinking / reasoning block removal
//  2. Instruction echo removal (prompt leakage)
//  3. Quote wrapping removal
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: thinking blocks ---

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// Each tag variant is listed explicitly because Go's RE2 engine does not
// support backreferences.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Phase 2: instruction echoes ---

// echoPatterns match introductory phrases that models prepend to a corrected
// sentence or a reply even when told not to. Each is anchored to the start
// and requires a colon.
var echoPatterns = []*regexp.Regexp{
	// "Here is / Here's [the|my] [corrected] [sentence|version|response|reply]:"
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the| my)? (?:corrected |fixed )?(?:sentence|version|text|response|reply)\s*:`),
	// "[The] corrected [sentence|version]:" / "Correction:"
	regexp.MustCompile(`(?i)^(?:the )?(?:corrected (?:sentence|version|text)|correction)\s*:`),
	// "Certainly / Sure / Of course[,] here is [the] corrected sentence:"
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.!]? here(?:'s| is)(?: the| my)? (?:corrected |fixed )?(?:sentence|version|text|response|reply)\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

// --- Phase 3: quote wrapping ---

// removeQuoteWrapping strips a matching pair of outer quotes when the entire
// text is wrapped in them.  Supported pairs:
//
//	"…"  '…'  «…»  "…"  '…'
func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}

// speakerLabelRe matches a dialogue label such as "A:" or "Tutor:" at the
// start of a conversation starter.
var speakerLabelRe = regexp.MustCompile(`(?i)^\s*(?:a|b|assistant|tutor|profesora?|teacher)\s*:\s*`)

// StripSpeakerLabel removes a leading dialogue label from a reply.
func StripSpeakerLabel(text string) string {
	return strings.TrimSpace(speakerLabelRe.ReplaceAllString(text, ""))
}

// StripQuotes removes every double quote from a corrected sentence; the
// correction prompt forbids them and models add them anyway.
func StripQuotes(text string) string {
	text = strings.ReplaceAll(text, "\"", "")
	text = strings.ReplaceAll(text, "“", "")
	text = strings.ReplaceAll(text, "”", "")
	return strings.TrimSpace(text)
}
