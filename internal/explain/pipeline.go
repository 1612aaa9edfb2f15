package explain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

// NoCorrections is displayed when no explanation survives.
const NoCorrections = "No corrections made."

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithBannedPhrases replaces DefaultBannedPhrases.
func WithBannedPhrases(phrases []string) Option {
	return func(p *Pipeline) {
		p.phrases = append([]string(nil), phrases...)
	}
}

// WithChangePattern replaces the change-pair pattern. The pattern must have
// two capture groups, original first.
func WithChangePattern(re *regexp.Regexp) Option {
	return func(p *Pipeline) {
		if re != nil {
			p.changeRe = re
		}
	}
}

// WithLogger sets the logger that records why candidates are rejected.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// Pipeline turns raw explanation outputs into display text. It holds no
// mutable state and is safe for concurrent use.
type Pipeline struct {
	phrases  []string
	changeRe *regexp.Regexp
	logger   *zap.Logger
}

// New returns a Pipeline using the default phrases and pattern unless
// overridden by opts.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		phrases:  append([]string(nil), DefaultBannedPhrases...),
		changeRe: defaultChangeRe,
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// CompileChangePattern compiles a configured pattern and checks it captures
// both sides of the change.
func CompileChangePattern(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid change pattern: %w", err)
	}
	if re.NumSubexp() < 2 {
		return nil, fmt.Errorf("change pattern %q must have two capture groups", pattern)
	}
	return re, nil
}

// Candidates extracts the explanation text from every labeled line of the
// raw outputs, in order. Lines without a pipe and empty results are dropped.
func (p *Pipeline) Candidates(raw []string) []string {
	var out []string
	for _, output := range raw {
		for _, line := range strings.Split(output, "\n") {
			_, text, ok := strings.Cut(line, "|")
			if !ok {
				continue
			}
			text = strings.TrimRightFunc(strings.TrimSpace(text), func(r rune) bool {
				return r == '.' || unicode.IsSpace(r)
			})
			if text == "" {
				continue
			}
			out = append(out, text)
		}
	}
	return out
}

// Check runs the filters on one candidate. When it is rejected the name of
// the failing check is returned.
func (p *Pipeline) Check(candidate string) (bool, string) {
	if phrase, found := firstBannedPhrase(candidate, p.phrases); found {
		return false, fmt.Sprintf("does not contain '%s'", phrase)
	}
	if pair, ok := extractChangePair(p.changeRe, candidate); ok && IsTrivialChange(pair) {
		return false, "change is not punctuation or accent only"
	}
	return true, ""
}

// Validate keeps the candidates that pass Check, preserving order.
func (p *Pipeline) Validate(candidates []string) []string {
	var valid []string
	for i, c := range candidates {
		ok, failed := p.Check(c)
		if !ok {
			p.logger.Debug("Correction explanation rejected",
				zap.Int("index", i+1),
				zap.String("explanation", c),
				zap.String("check", failed))
			continue
		}
		p.logger.Debug("Correction explanation passes all checks",
			zap.Int("index", i+1),
			zap.String("explanation", c))
		valid = append(valid, c)
	}
	return valid
}

// BuildDisplayExplanation validates the raw outputs and renders the result.
func (p *Pipeline) BuildDisplayExplanation(raw []string) string {
	return Render(p.Validate(p.Candidates(raw)))
}

// Render formats validated explanations: NoCorrections when there are none,
// the bare text for one, a numbered list otherwise.
func Render(explanations []string) string {
	switch len(explanations) {
	case 0:
		return NoCorrections
	case 1:
		return explanations[0]
	}
	lines := make([]string, len(explanations))
	for i, e := range explanations {
		lines[i] = fmt.Sprintf("%d. %s", i+1, e)
	}
	return strings.Join(lines, "\n")
}

var defaultPipeline = New()

// BuildDisplayExplanation runs the default pipeline over raw.
func BuildDisplayExplanation(raw []string) string {
	return defaultPipeline.BuildDisplayExplanation(raw)
}
