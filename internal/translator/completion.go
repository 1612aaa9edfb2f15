package translator

import (
	"context"
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/valpere/hablo/internal/completion"
	"github.com/valpere/hablo/internal/postprocess"
)

// CompletionService translates by prompting a chat-completion service. It is
// used when no Google credentials are configured.
type CompletionService struct {
	service completion.Service
}

func NewCompletionService(service completion.Service) *CompletionService {
	return &CompletionService{service: service}
}

func (s *CompletionService) Name() string {
	return s.service.Name()
}

func (s *CompletionService) Translate(ctx context.Context, text, source, target string) (string, error) {
	targetName, err := languageName(target)
	if err != nil {
		return "", fmt.Errorf("invalid target language: %w", err)
	}

	sourceName := "the detected language"
	if !isAuto(source) {
		if sourceName, err = languageName(source); err != nil {
			return "", fmt.Errorf("invalid source language: %w", err)
		}
	}

	prompt := fmt.Sprintf("Translate the following text from %s to %s. "+
		"Reply with the translation only, without quotes or commentary.\n\n%s", sourceName, targetName, text)

	res, err := s.service.Complete(ctx, completion.UserPrompt(prompt, completion.Temperature(0.1)))
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}

	out := postprocess.Clean(res.Content)
	if out == "" {
		return "", fmt.Errorf("empty translation from %s", s.service.Name())
	}
	return out, nil
}

// languageName returns the English name of an ISO 639-1 code ("es" -> "Spanish").
func languageName(code string) (string, error) {
	tag, err := language.Parse(code)
	if err != nil {
		return "", err
	}
	return display.English.Tags().Name(tag), nil
}
