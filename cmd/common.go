/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/valpere/hablo/internal/completion"
	"github.com/valpere/hablo/internal/config"
	"github.com/valpere/hablo/internal/detector"
	"github.com/valpere/hablo/internal/explain"
	"github.com/valpere/hablo/internal/orchestrator"
	"github.com/valpere/hablo/internal/prompts"
	"github.com/valpere/hablo/internal/translator"
	"github.com/valpere/hablo/internal/tutor"
	"github.com/valpere/hablo/internal/validator"
)

// ensureAPIKey prompts for a missing API key and saves it to .env.
func ensureAPIKey(in io.Reader, out io.Writer) error {
	if !completion.RequiresAPIKey(cfg.Completion.Provider) || cfg.Completion.APIKey != "" {
		return nil
	}

	key, err := config.PromptAPIKey(in, out, cfg.Completion.Provider)
	if err != nil {
		return err
	}
	if err := config.SaveAPIKey(config.DotEnvFile, cfg.Completion.Provider, key); err != nil {
		return err
	}
	fmt.Fprintln(out, "API key saved successfully.")

	cfg.Completion.APIKey = key
	return nil
}

// buildTutor constructs the tutor and its collaborators from cfg.
func buildTutor(svc completion.Service) (*tutor.Tutor, error) {
	orch := orchestrator.New(svc, orchestrator.OrchestratorConfig{
		Timeout:     cfg.Completion.Timeout,
		MaxAttempts: cfg.Completion.MaxAttempts,
		RetryDelay:  cfg.Completion.RetryDelay,
	}, logger)

	set, err := prompts.Load(cfg.Tutor.PromptsDir)
	if err != nil {
		return nil, err
	}

	pipeline, err := cfg.Pipeline(explain.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	opts := []tutor.Option{
		tutor.WithPrompts(set),
		tutor.WithPipeline(pipeline),
		tutor.WithLogger(logger),
	}

	if cfg.Tutor.ValidateLanguage {
		det, err := detector.New(cfg.Tutor.DetectLanguages...)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tutor.WithValidator(validator.New(det)))
	}

	return tutor.New(orch, cfg.Tutor.Config, opts...), nil
}

// buildTranslator uses Google Cloud Translation when credentials are
// configured and the completion service otherwise.
func buildTranslator(svc completion.Service) translator.Translator {
	if cfg.Translate.Credentials != "" || os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		return translator.NewGoogleService(cfg.Translate)
	}
	logger.Debug("No Google credentials, translating with completion service", zap.String("service", svc.Name()))
	return translator.NewCompletionService(svc)
}
