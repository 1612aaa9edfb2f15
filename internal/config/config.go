// Package config loads hablo settings from defaults, a YAML file, a .env
// file, the environment and command-line flags, in increasing precedence.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/valpere/hablo/internal/completion"
	"github.com/valpere/hablo/internal/explain"
	"github.com/valpere/hablo/internal/translator"
	"github.com/valpere/hablo/internal/tutor"
	"github.com/valpere/hablo/internal/usage"
)

const (
	EnvPrefix      = "HABLO"
	ConfigName     = "hablo"
	DotEnvFile     = ".env"
	OpenAIKeyEnv   = "OPENAI_API_KEY"
	OpenRouterEnv  = "OPENROUTER_API_KEY"
	DefaultTopics  = "conversation_topics_parsed.txt"
	defaultTimeout = 60 * time.Second
)

type Config struct {
	Completion completion.Config `mapstructure:"completion"`
	Tutor      TutorConfig       `mapstructure:"tutor"`
	Explain    ExplainConfig     `mapstructure:"explain"`
	Cost       usage.Pricing     `mapstructure:"cost"`
	Translate  translator.Config `mapstructure:"translate"`
}

type TutorConfig struct {
	tutor.Config `mapstructure:",squash"`

	TopicsFile      string   `mapstructure:"topics_file"`
	PromptsDir      string   `mapstructure:"prompts_dir"`
	DetectLanguages []string `mapstructure:"detect_languages"`
}

type ExplainConfig struct {
	BannedPhrases []string `mapstructure:"banned_phrases"`
	ChangePattern string   `mapstructure:"change_pattern"`
}

// SetDefaults registers every key so that environment variables can
// override it.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("completion.provider", completion.ProviderOpenAI)
	v.SetDefault("completion.model", "")
	v.SetDefault("completion.base_url", "")
	v.SetDefault("completion.api_key", "")
	v.SetDefault("completion.timeout", defaultTimeout)
	v.SetDefault("completion.max_attempts", 2)
	v.SetDefault("completion.retry_delay", 500*time.Millisecond)

	v.SetDefault("tutor.language", "Spanish")
	v.SetDefault("tutor.language_code", "es")
	v.SetDefault("tutor.native_language", "English")
	v.SetDefault("tutor.native_code", "en")
	v.SetDefault("tutor.validate_language", true)
	v.SetDefault("tutor.topics_file", DefaultTopics)
	v.SetDefault("tutor.prompts_dir", "")
	v.SetDefault("tutor.detect_languages", []string{})

	v.SetDefault("explain.banned_phrases", explain.DefaultBannedPhrases)
	v.SetDefault("explain.change_pattern", explain.DefaultChangePattern)

	v.SetDefault("cost.prompt_per_1k", usage.DefaultPricing.PromptPer1K)
	v.SetDefault("cost.completion_per_1k", usage.DefaultPricing.CompletionPer1K)

	v.SetDefault("translate.credentials", "")
	v.SetDefault("translate.project", "")
}

// Load reads configFile, or hablo.yaml from the working directory or $HOME
// when configFile is empty. A missing hablo.yaml is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Completion.APIKey == "" {
		cfg.Completion.APIKey = os.Getenv(APIKeyEnv(cfg.Completion.Provider))
	}

	return &cfg, nil
}

// Pipeline builds the explanation pipeline the config describes.
func (c *Config) Pipeline(opts ...explain.Option) (*explain.Pipeline, error) {
	re, err := explain.CompileChangePattern(c.Explain.ChangePattern)
	if err != nil {
		return nil, err
	}
	opts = append([]explain.Option{
		explain.WithBannedPhrases(c.Explain.BannedPhrases),
		explain.WithChangePattern(re),
	}, opts...)
	return explain.New(opts...), nil
}

// APIKeyEnv names the environment variable holding provider's API key.
func APIKeyEnv(provider string) string {
	if provider == completion.ProviderOpenRouter {
		return OpenRouterEnv
	}
	return OpenAIKeyEnv
}

// LoadDotEnv copies the variables of a .env file into the process
// environment. Variables already set are kept. A missing file is ignored.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return fmt.Errorf("failed to set %s: %w", name, err)
		}
	}
	return nil
}

// PromptAPIKey asks for an API key on out and reads it from in. An empty
// answer is an error.
func PromptAPIKey(in io.Reader, out io.Writer, provider string) (string, error) {
	fmt.Fprintf(out, "You don't seem to have the %s API key set up.\n", provider)
	if provider == completion.ProviderOpenRouter {
		fmt.Fprintln(out, "Please get your API key from https://openrouter.ai/keys")
	} else {
		fmt.Fprintln(out, "Please get your API key from https://platform.openai.com/account/api-keys")
	}
	fmt.Fprint(out, "Enter your API key: ")

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}

	key := strings.TrimSpace(line)
	if key == "" {
		return "", errors.New("no API key provided")
	}
	return key, nil
}

// SaveAPIKey appends the key to the .env file at path and exports it.
func SaveAPIKey(path, provider, key string) error {
	name := APIKeyEnv(provider)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s=%s\n", name, key); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return os.Setenv(name, key)
}
