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
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/valpere/hablo/internal/config"
)

var version = "0.1.0"

var (
	cfgFile string
	verbose bool

	v      = viper.New()
	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "hablo",
	Short: "CLI Language Tutor",
	Long: `A CLI language tutor. Chat in the language you are learning; every message
gets a natural reply plus a corrected version with an explanation of each change.

Supported completion providers: OpenAI, OpenRouter, Ollama

Use "hablo chat --help" to start a conversation.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(config.DotEnvFile); err != nil {
			return err
		}

		var err error
		cfg, err = config.Load(v, cfgFile)
		if err != nil {
			return err
		}

		logger, err = newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// newLogger logs warnings and errors to stderr, everything with verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zcfg.Build()
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default ./hablo.yaml or $HOME/hablo.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	flags.String("provider", "", "Completion provider: openai, openrouter, ollama")
	flags.String("model", "", "Completion model (provider default if empty)")
	flags.String("base-url", "", "Completion API base URL (provider default if empty)")
	flags.String("language", "", "Language being learned (e.g. Spanish)")
	flags.String("language-code", "", "ISO 639-1 code of the language being learned (e.g. es)")

	v.BindPFlag("completion.provider", flags.Lookup("provider"))
	v.BindPFlag("completion.model", flags.Lookup("model"))
	v.BindPFlag("completion.base_url", flags.Lookup("base-url"))
	v.BindPFlag("tutor.language", flags.Lookup("language"))
	v.BindPFlag("tutor.language_code", flags.Lookup("language-code"))
}
