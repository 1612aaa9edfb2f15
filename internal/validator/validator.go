// Package validator checks that a corrected sentence is in the language being learned.
package validator

import (
	"fmt"
	"strings"

	"github.com/valpere/hablo/internal/detector"
)

// minValidationLength is the minimum rune count required to attempt language detection.
// Shorter texts produce unreliable results and are accepted without validation.
const minValidationLength = 20

// Validator checks that text is written in an expected language.
// The underlying language detector is expensive to build; reuse the instance.
type Validator struct {
	det *detector.Detector
}

// New creates a Validator over det, or over a detector for all languages when det is nil.
func New(det *detector.Detector) *Validator {
	if det == nil {
		det = detector.MustNew()
	}
	return &Validator{det: det}
}

// IsValid returns true when text appears to be written in lang.
//
// Short texts (fewer than minValidationLength runes) and texts whose language
// cannot be determined pass without error. When the detected language differs
// from lang the returned error names both codes.
func (v *Validator) IsValid(text, lang string) (bool, error) {
	if lang == "" {
		return true, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return false, fmt.Errorf("text is empty")
	}

	if len([]rune(text)) < minValidationLength {
		return true, nil
	}

	detected, ok := v.det.DetectISO(text)
	if !ok {
		return true, nil
	}

	if !strings.EqualFold(detected, lang) {
		return false, fmt.Errorf("expected %s but detected %s", lang, detected)
	}

	return true, nil
}
