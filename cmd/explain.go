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
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/valpere/hablo/internal/explain"
)

var explainCmd = &cobra.Command{
	Use:   "explain [files...]",
	Short: "Validate raw correction explanations",
	Long: `Run raw model outputs through the correction-explanation filter and print
what the chat would show.

Each file holds one model output. Without files, outputs are read from
stdin, separated by lines containing only "---".

Only lines containing "|" are considered; the text after the first "|" is
kept unless it mentions a banned phrase or describes a punctuation or
accent only change.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []string
		if len(args) == 0 {
			var err error
			if raw, err = readOutputs(cmd.InOrStdin()); err != nil {
				return err
			}
		}
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read input file: %w", err)
			}
			raw = append(raw, string(data))
		}

		pipeline, err := cfg.Pipeline(explain.WithLogger(logger))
		if err != nil {
			return err
		}

		logger.Debug("Validating correction explanations", zap.Int("outputs", len(raw)))
		fmt.Fprintln(cmd.OutOrStdout(), pipeline.BuildDisplayExplanation(raw))
		return nil
	},
}

// readOutputs splits r into model outputs at lines containing only "---".
func readOutputs(r io.Reader) ([]string, error) {
	var (
		outputs []string
		current []string
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "---" {
			outputs = append(outputs, strings.Join(current, "\n"))
			current = nil
			continue
		}
		current = append(current, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(current) > 0 {
		outputs = append(outputs, strings.Join(current, "\n"))
	}
	return outputs, nil
}

func init() {
	rootCmd.AddCommand(explainCmd)
}
