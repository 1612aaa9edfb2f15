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
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/valpere/hablo/internal/topics"
)

var (
	topicsInput  string
	topicsOutput string
	topicsFile   string
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "Manage conversation topics",
}

var topicsParseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Turn a raw topic list into one topic per line",
	Long: `Split a raw topic list on newlines, bullets (•), arrows (→), " - " and "|",
and split words glued together without spaces ("AllahBelief").

The result is written to --output, or stdout when no output file is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if topicsInput == topicsOutput {
			return fmt.Errorf("input file and output file cannot be the same")
		}

		data, err := os.ReadFile(topicsInput)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		parsed := strings.Join(topics.Parse(string(data)), "\n")

		if topicsOutput == "" {
			fmt.Fprintln(cmd.OutOrStdout(), parsed)
			return nil
		}

		if err := os.MkdirAll(filepath.Dir(topicsOutput), 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := os.WriteFile(topicsOutput, []byte(parsed), 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d topics to %s\n", strings.Count(parsed, "\n")+1, topicsOutput)
		return nil
	},
}

var topicsPickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Print a random conversation topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := topicsFile
		if path == "" {
			path = cfg.Tutor.TopicsFile
		}

		list, err := topics.Load(path)
		if err != nil {
			return err
		}
		topic, err := topics.Pick(list, rand.New(rand.NewSource(time.Now().UnixNano())))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), topic)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topicsCmd)
	topicsCmd.AddCommand(topicsParseCmd, topicsPickCmd)

	topicsParseCmd.Flags().StringVarP(&topicsInput, "input", "i", "", "Raw topic list (required)")
	topicsParseCmd.Flags().StringVarP(&topicsOutput, "output", "o", "", "Output file (stdout if empty)")
	topicsParseCmd.MarkFlagRequired("input")

	topicsPickCmd.Flags().StringVarP(&topicsFile, "file", "f", "", "Topics file (tutor.topics_file if empty)")
}
