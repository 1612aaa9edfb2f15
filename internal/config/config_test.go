package config

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/valpere/hablo/internal/explain"
	"github.com/valpere/hablo/internal/usage"
)

// isolate runs the test in an empty directory with an empty $HOME and no
// API keys in the environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	t.Setenv(OpenAIKeyEnv, "")
	t.Setenv(OpenRouterEnv, "")
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Completion.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", cfg.Completion.Provider)
	}
	if cfg.Completion.Timeout != 60*time.Second {
		t.Errorf("expected 60s timeout, got %v", cfg.Completion.Timeout)
	}
	if cfg.Completion.MaxAttempts != 2 {
		t.Errorf("expected 2 attempts, got %d", cfg.Completion.MaxAttempts)
	}
	if cfg.Completion.RetryDelay != 500*time.Millisecond {
		t.Errorf("expected 500ms retry delay, got %v", cfg.Completion.RetryDelay)
	}
	if cfg.Tutor.Language != "Spanish" || cfg.Tutor.LanguageCode != "es" {
		t.Errorf("unexpected language %q/%q", cfg.Tutor.Language, cfg.Tutor.LanguageCode)
	}
	if cfg.Tutor.NativeLanguage != "English" || cfg.Tutor.NativeCode != "en" {
		t.Errorf("unexpected native language %q/%q", cfg.Tutor.NativeLanguage, cfg.Tutor.NativeCode)
	}
	if !cfg.Tutor.ValidateLanguage {
		t.Error("expected language validation on by default")
	}
	if cfg.Tutor.TopicsFile != DefaultTopics {
		t.Errorf("unexpected topics file %q", cfg.Tutor.TopicsFile)
	}
	if !reflect.DeepEqual(cfg.Explain.BannedPhrases, explain.DefaultBannedPhrases) {
		t.Errorf("unexpected banned phrases %q", cfg.Explain.BannedPhrases)
	}
	if cfg.Explain.ChangePattern != explain.DefaultChangePattern {
		t.Errorf("unexpected change pattern %q", cfg.Explain.ChangePattern)
	}
	if cfg.Cost != usage.DefaultPricing {
		t.Errorf("unexpected pricing %+v", cfg.Cost)
	}
	if cfg.Completion.APIKey != "" {
		t.Errorf("expected no API key, got %q", cfg.Completion.APIKey)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := isolate(t)

	yaml := `completion:
  provider: ollama
  model: mistral
  timeout: 30s
tutor:
  language: French
  language_code: fr
  validate_language: false
explain:
  banned_phrases:
    - accent
    - cedilla
cost:
  prompt_per_1k: 0
  completion_per_1k: 0
`
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Completion.Provider != "ollama" || cfg.Completion.Model != "mistral" {
		t.Errorf("unexpected completion config %+v", cfg.Completion)
	}
	if cfg.Completion.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Completion.Timeout)
	}
	if cfg.Tutor.Language != "French" || cfg.Tutor.LanguageCode != "fr" {
		t.Errorf("unexpected language %q/%q", cfg.Tutor.Language, cfg.Tutor.LanguageCode)
	}
	if cfg.Tutor.ValidateLanguage {
		t.Error("expected language validation off")
	}
	if cfg.Tutor.NativeLanguage != "English" {
		t.Errorf("expected default native language, got %q", cfg.Tutor.NativeLanguage)
	}
	if !reflect.DeepEqual(cfg.Explain.BannedPhrases, []string{"accent", "cedilla"}) {
		t.Errorf("unexpected banned phrases %q", cfg.Explain.BannedPhrases)
	}
	if cfg.Cost.PromptPer1K != 0 || cfg.Cost.CompletionPer1K != 0 {
		t.Errorf("expected zero pricing, got %+v", cfg.Cost)
	}
}

func TestLoad_SearchesWorkingDirectory(t *testing.T) {
	dir := isolate(t)

	if err := os.WriteFile(filepath.Join(dir, "hablo.yaml"), []byte("tutor:\n  language: Italian\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Tutor.Language != "Italian" {
		t.Errorf("expected 'Italian', got %q", cfg.Tutor.Language)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	if _, err := Load(viper.New(), filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoad_Environment(t *testing.T) {
	isolate(t)
	t.Setenv("HABLO_COMPLETION_PROVIDER", "openrouter")
	t.Setenv("HABLO_TUTOR_LANGUAGE", "German")
	t.Setenv(OpenRouterEnv, "or-key")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Completion.Provider != "openrouter" {
		t.Errorf("expected provider from env, got %q", cfg.Completion.Provider)
	}
	if cfg.Tutor.Language != "German" {
		t.Errorf("expected language from env, got %q", cfg.Tutor.Language)
	}
	if cfg.Completion.APIKey != "or-key" {
		t.Errorf("expected OpenRouter key, got %q", cfg.Completion.APIKey)
	}
}

func TestLoad_ExplicitKeyWins(t *testing.T) {
	isolate(t)
	t.Setenv("HABLO_COMPLETION_API_KEY", "explicit")
	t.Setenv(OpenAIKeyEnv, "from-openai-env")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Completion.APIKey != "explicit" {
		t.Errorf("expected explicit key, got %q", cfg.Completion.APIKey)
	}
}

func TestConfig_Pipeline(t *testing.T) {
	isolate(t)

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p, err := cfg.Pipeline()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := p.BuildDisplayExplanation([]string{`1 | "es" was changed to "soy" because the subject is "yo".`})
	if got != `"es" was changed to "soy" because the subject is "yo"` {
		t.Errorf("unexpected explanation %q", got)
	}

	cfg.Explain.ChangePattern = "no groups"
	if _, err := cfg.Pipeline(); err == nil {
		t.Error("expected error for pattern without groups")
	}
}

func TestAPIKeyEnv(t *testing.T) {
	if got := APIKeyEnv("openrouter"); got != OpenRouterEnv {
		t.Errorf("expected %s, got %s", OpenRouterEnv, got)
	}
	if got := APIKeyEnv("openai"); got != OpenAIKeyEnv {
		t.Errorf("expected %s, got %s", OpenAIKeyEnv, got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	t.Setenv("HABLO_TEST_KEPT", "original")
	t.Setenv("HABLO_TEST_NEW", "")
	os.Unsetenv("HABLO_TEST_NEW")

	path := filepath.Join(dir, DotEnvFile)
	content := "HABLO_TEST_NEW=from-file\nHABLO_TEST_KEPT=overridden\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("HABLO_TEST_NEW"); got != "from-file" {
		t.Errorf("expected value from .env, got %q", got)
	}
	if got := os.Getenv("HABLO_TEST_KEPT"); got != "original" {
		t.Errorf("expected existing value kept, got %q", got)
	}
}

func TestLoadDotEnv_Missing(t *testing.T) {
	dir := isolate(t)

	if err := LoadDotEnv(filepath.Join(dir, DotEnvFile)); err != nil {
		t.Errorf("expected missing .env to be ignored, got %v", err)
	}
}

func TestPromptAPIKey(t *testing.T) {
	var out bytes.Buffer

	key, err := PromptAPIKey(strings.NewReader("  sk-test  \n"), &out, "openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "sk-test" {
		t.Errorf("expected trimmed key, got %q", key)
	}
	if !strings.Contains(out.String(), "platform.openai.com") {
		t.Errorf("expected instructions, got %q", out.String())
	}

	if _, err := PromptAPIKey(strings.NewReader("\n"), &bytes.Buffer{}, "openai"); err == nil {
		t.Error("expected error for empty answer")
	}
	if _, err := PromptAPIKey(strings.NewReader(""), &bytes.Buffer{}, "openrouter"); err == nil {
		t.Error("expected error at EOF")
	}
}

func TestSaveAPIKey(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, DotEnvFile)

	if err := os.WriteFile(path, []byte("OTHER=1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := SaveAPIKey(path, "openai", "sk-saved"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "OTHER=1\nOPENAI_API_KEY=sk-saved\n" {
		t.Errorf("unexpected .env content %q", data)
	}
	if os.Getenv(OpenAIKeyEnv) != "sk-saved" {
		t.Error("expected key exported to the environment")
	}
}
