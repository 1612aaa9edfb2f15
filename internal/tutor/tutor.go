// Package tutor runs a conversation with a language learner. Each learner
// message produces a conversational reply and a correction of every sentence
// with an explanation of what changed.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/valpere/hablo/internal"
	"github.com/valpere/hablo/internal/completion"
	"github.com/valpere/hablo/internal/explain"
	"github.com/valpere/hablo/internal/markdown"
	"github.com/valpere/hablo/internal/orchestrator"
	"github.com/valpere/hablo/internal/postprocess"
	"github.com/valpere/hablo/internal/prompts"
	"github.com/valpere/hablo/internal/sentence"
	"github.com/valpere/hablo/internal/usage"
	"github.com/valpere/hablo/internal/validator"
)

const (
	starterTemperature    = 0.8
	correctionTemperature = 0.1
)

// Config describes the languages of a tutoring session.
type Config struct {
	Language         string `mapstructure:"language"`
	LanguageCode     string `mapstructure:"language_code"`
	NativeLanguage   string `mapstructure:"native_language"`
	NativeCode       string `mapstructure:"native_code"`
	ValidateLanguage bool   `mapstructure:"validate_language"`
}

// Option configures a Tutor.
type Option func(*Tutor)

// WithValidator checks corrected sentences against Config.LanguageCode.
func WithValidator(v *validator.Validator) Option {
	return func(t *Tutor) { t.validator = v }
}

// WithPipeline sets the pipeline that filters correction explanations.
func WithPipeline(p *explain.Pipeline) Option {
	return func(t *Tutor) { t.pipeline = p }
}

// WithPrompts replaces the embedded prompt templates.
func WithPrompts(p *prompts.Set) Option {
	return func(t *Tutor) { t.prompts = p }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(t *Tutor) {
		if l != nil {
			t.logger = l
		}
	}
}

// Tutor turns learner messages into replies and explained corrections.
type Tutor struct {
	orch      *orchestrator.Orchestrator
	cfg       Config
	prompts   *prompts.Set
	pipeline  *explain.Pipeline
	validator *validator.Validator
	logger    *zap.Logger
}

// New returns a Tutor that sends its requests through orch. Prompts and
// pipeline default to the embedded templates and the default filter.
func New(orch *orchestrator.Orchestrator, cfg Config, opts ...Option) *Tutor {
	t := &Tutor{
		orch:   orch,
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.prompts == nil {
		t.prompts = prompts.Default()
	}
	if t.pipeline == nil {
		t.pipeline = explain.New(explain.WithLogger(t.logger))
	}
	return t
}

func (t *Tutor) data() prompts.Data {
	return prompts.Data{Language: t.cfg.Language, NativeLanguage: t.cfg.NativeLanguage}
}

// NewSession starts a session primed with the system prompt.
func (t *Tutor) NewSession() (*Session, error) {
	system, err := t.prompts.Render(prompts.SystemMain, t.data())
	if err != nil {
		return nil, err
	}
	return NewSession(system), nil
}

// Starter asks for an opening line about topic and records it as the first
// assistant message of s.
func (t *Tutor) Starter(ctx context.Context, s *Session, topic string) (string, error) {
	data := t.data()
	data.Topic = topic
	prompt, err := t.prompts.Render(prompts.ConversationStarter, data)
	if err != nil {
		return "", err
	}

	t.logger.Info("Making request for conversation starter", zap.String("topic", topic))
	res, err := t.orch.Complete(ctx, completion.UserPrompt(prompt, completion.Temperature(starterTemperature)))
	if err != nil {
		return "", fmt.Errorf("failed to get conversation starter: %w", err)
	}

	starter := postprocess.StripSpeakerLabel(markdown.ToPlainText(postprocess.Clean(res.Content)))
	if starter == "" {
		return "", errors.New("empty conversation starter")
	}
	t.logger.Debug("Received conversation starter", zap.String("starter", starter))

	s.startWith(topic, starter, res.Usage)
	return starter, nil
}

// Turn handles one learner message. The conversation reply and the sentence
// corrections are requested concurrently, then one explanation per changed
// sentence. s is only updated when every request succeeds.
func (t *Tutor) Turn(ctx context.Context, s *Session, input string) (*internal.Turn, error) {
	input = strings.TrimSpace(input)
	sentences := sentence.Split(input)
	if len(sentences) == 0 {
		return nil, errors.New("empty input")
	}

	turn := &internal.Turn{
		ID:        uuid.New().String(),
		SessionID: s.ID,
		Input:     input,
		Sentences: sentences,
		Timestamp: time.Now(),
	}
	log := t.logger.With(zap.String("session", s.ID), zap.String("turn", turn.ID))

	reqs, err := t.firstRound(s, input, sentences)
	if err != nil {
		return nil, err
	}

	log.Info("Making requests for conversation response and corrections", zap.Int("sentences", len(sentences)))
	results, err := t.orch.CompleteAll(ctx, reqs)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation response or corrections: %w", err)
	}
	for _, res := range results {
		turn.Usage.Add(res.Usage)
	}

	turn.Response = markdown.ToPlainText(postprocess.Clean(results[0].Content))
	if turn.Response == "" {
		return nil, errors.New("empty conversation response")
	}
	log.Debug("Received conversation response", zap.String("response", turn.Response))

	turn.Corrected = make([]string, len(sentences))
	for i, res := range results[1:] {
		turn.Corrected[i] = t.corrected(log, sentences[i], res.Content)
	}

	outputs, u, err := t.explanations(ctx, log, sentences, turn.Corrected)
	if err != nil {
		return nil, err
	}
	turn.Usage.Add(u)
	turn.Explanation = t.pipeline.BuildDisplayExplanation(outputs)

	s.commit(input, turn.Response, turn.Usage)
	return turn, nil
}

// firstRound builds the conversation request followed by one correction
// request per sentence.
func (t *Tutor) firstRound(s *Session, input string, sentences []string) ([]completion.Request, error) {
	history := append(s.History(), completion.Message{Role: completion.RoleUser, Content: input})
	reqs := []completion.Request{{Messages: history}}

	for _, sent := range sentences {
		data := t.data()
		data.Sentence = sent
		prompt, err := t.prompts.Render(prompts.CorrectSentence, data)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, completion.UserPrompt(prompt, completion.Temperature(correctionTemperature)))
	}
	return reqs, nil
}

// corrected cleans a correction reply. A reply that is empty or not in the
// language being learned is replaced by the learner's sentence.
func (t *Tutor) corrected(log *zap.Logger, original, reply string) string {
	out := postprocess.StripQuotes(postprocess.Clean(reply))
	if out == "" {
		log.Warn("Empty corrected sentence, keeping original", zap.String("sentence", original))
		return original
	}

	if t.validator != nil && t.cfg.ValidateLanguage {
		if ok, err := t.validator.IsValid(out, t.cfg.LanguageCode); !ok {
			log.Warn("Corrected sentence failed language check, keeping original",
				zap.String("sentence", original),
				zap.String("corrected", out),
				zap.Error(err))
			return original
		}
	}

	log.Debug("Received corrected sentence", zap.String("sentence", original), zap.String("corrected", out))
	return out
}

// explanations requests an analysis of every sentence the correction changed
// and returns the raw outputs in sentence order.
func (t *Tutor) explanations(ctx context.Context, log *zap.Logger, sentences, corrected []string) ([]string, usage.Usage, error) {
	var reqs []completion.Request
	for i := range sentences {
		if strings.TrimSpace(sentences[i]) == strings.TrimSpace(corrected[i]) {
			continue
		}
		data := t.data()
		data.InputSentence = sentences[i]
		data.CorrectedSentence = corrected[i]
		prompt, err := t.prompts.Render(prompts.AnalyseCorrection, data)
		if err != nil {
			return nil, usage.Usage{}, err
		}
		reqs = append(reqs, completion.UserPrompt(prompt, completion.Temperature(correctionTemperature)))
	}

	var u usage.Usage
	if len(reqs) == 0 {
		return nil, u, nil
	}

	log.Info("Making requests for correction explanations", zap.Int("count", len(reqs)))
	results, err := t.orch.CompleteAll(ctx, reqs)
	if err != nil {
		return nil, u, fmt.Errorf("failed to get correction explanation: %w", err)
	}

	outputs := make([]string, len(results))
	for i, res := range results {
		outputs[i] = res.Content
		u.Add(res.Usage)
		log.Debug("Received correction explanation", zap.String("explanation", res.Content))
	}
	return outputs, u, nil
}
