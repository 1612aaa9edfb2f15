package detector

import (
	"fmt"
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

type Detector struct {
	detector lingua.LanguageDetector
}

// New builds a detector restricted to the given ISO 639-1 codes. With fewer
// than two codes it considers every language lingua knows.
func New(codes ...string) (*Detector, error) {
	builder := lingua.NewLanguageDetectorBuilder()

	if len(codes) < 2 {
		return &Detector{detector: builder.FromAllLanguages().Build()}, nil
	}

	isoCodes := make([]lingua.IsoCode639_1, 0, len(codes))
	for _, code := range codes {
		iso := lingua.GetIsoCode639_1FromValue(strings.ToUpper(strings.TrimSpace(code)))
		if iso == lingua.UnknownIsoCode639_1 {
			return nil, fmt.Errorf("unknown language code: %s", code)
		}
		isoCodes = append(isoCodes, iso)
	}

	return &Detector{detector: builder.FromIsoCodes639_1(isoCodes...).Build()}, nil
}

// MustNew is New for callers with codes known to be valid.
func MustNew(codes ...string) *Detector {
	d, err := New(codes...)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if text == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}
