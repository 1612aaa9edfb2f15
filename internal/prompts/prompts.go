// Package prompts renders the instructions sent to the completion service.
// Templates are baked into the binary and can be overridden per file from a
// directory on disk.
package prompts

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"text/template"
)

// Template names.
const (
	SystemMain          = "system_main"
	ConversationStarter = "conversation_starter"
	CorrectSentence     = "correct_sentence"
	AnalyseCorrection   = "analyse_correction"
)

//go:embed templates
var embedded embed.FS

var names = []string{SystemMain, ConversationStarter, CorrectSentence, AnalyseCorrection}

// Data holds the values a template may reference.
type Data struct {
	Language          string
	NativeLanguage    string
	Topic             string
	Sentence          string
	InputSentence     string
	CorrectedSentence string
}

type Set struct {
	templates map[string]*template.Template
}

// Load parses every template. A file <dir>/<name>.txt replaces the built-in
// template of that name; dir may be empty.
func Load(dir string) (*Set, error) {
	s := &Set{templates: make(map[string]*template.Template, len(names))}

	for _, name := range names {
		text, err := source(dir, name)
		if err != nil {
			return nil, err
		}
		tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("failed to parse prompt %s: %w", name, err)
		}
		s.templates[name] = tmpl
	}

	return s, nil
}

// Default returns the built-in templates.
func Default() *Set {
	s, err := Load("")
	if err != nil {
		panic(err)
	}
	return s
}

func source(dir, name string) (string, error) {
	if dir != "" {
		data, err := os.ReadFile(filepath.Join(dir, name+".txt"))
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to read prompt %s: %w", name, err)
		}
	}

	data, err := embedded.ReadFile("templates/" + name + ".txt")
	if err != nil {
		return "", fmt.Errorf("failed to read embedded prompt %s: %w", name, err)
	}
	return string(data), nil
}

// Render executes the named template.
func (s *Set) Render(name string, data Data) (string, error) {
	tmpl, ok := s.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown prompt: %s", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt %s: %w", name, err)
	}
	return buf.String(), nil
}
