package translator

import (
	"context"
	"fmt"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

type GoogleService struct {
	cfg Config
}

func NewGoogleService(cfg Config) *GoogleService {
	return &GoogleService{cfg: cfg}
}

func (s *GoogleService) Name() string {
	return "google"
}

func (s *GoogleService) clientOptions() []option.ClientOption {
	opts := []option.ClientOption{}
	if s.cfg.Credentials != "" {
		opts = append(opts, option.WithCredentialsFile(s.cfg.Credentials))
	}
	if s.cfg.Project != "" {
		opts = append(opts, option.WithQuotaProject(s.cfg.Project))
	}
	return opts
}

func (s *GoogleService) Translate(ctx context.Context, text, source, target string) (string, error) {
	targetTag, err := language.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target language: %w", err)
	}

	var opts *translate.Options
	if !isAuto(source) {
		sourceTag, err := language.Parse(source)
		if err != nil {
			return "", fmt.Errorf("invalid source language: %w", err)
		}
		opts = &translate.Options{Source: sourceTag, Format: translate.Text}
	}

	client, err := translate.NewClient(ctx, s.clientOptions()...)
	if err != nil {
		return "", fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	translations, err := client.Translate(ctx, []string{text}, targetTag, opts)
	if err != nil {
		return "", fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) == 0 {
		return "", fmt.Errorf("no translation returned")
	}

	return translations[0].Text, nil
}
