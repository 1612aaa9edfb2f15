package translator

import (
	"context"
)

// Config configures Google Cloud Translation.
type Config struct {
	Credentials string `mapstructure:"credentials" json:"credentials"`
	Project     string `mapstructure:"project" json:"project"`
}

// Translator translates text between ISO 639-1 language codes. An empty or
// "auto" source lets the service detect it.
type Translator interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (string, error)
}

func isAuto(lang string) bool {
	return lang == "" || lang == "auto"
}
