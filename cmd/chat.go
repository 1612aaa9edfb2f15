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
	"context"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/valpere/hablo/internal/completion"
	"github.com/valpere/hablo/internal/render"
	"github.com/valpere/hablo/internal/topics"
	"github.com/valpere/hablo/internal/translator"
	"github.com/valpere/hablo/internal/tutor"
	"github.com/valpere/hablo/internal/usage"
)

var (
	chatTopic   string
	noStarter   bool
	renderWidth int
)

const chatHelp = `Commands:
  :translate  translate the tutor's last message
  :cost       show what the conversation has cost so far
  :history    show the conversation so far
  :help       show this help
  :quit       leave the chat`

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a tutoring conversation",
	Long: `Start an interactive conversation with the tutor.

Each message you type is answered with three panels:
  Correction  your message corrected, with an explanation of each change
  Response    the tutor's reply
  Accountant  the running cost of the conversation

The conversation opens with a starter about a random topic from the
topics file, or the one given with --topic.

` + chatHelp,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()

		if err := ensureAPIKey(in, out); err != nil {
			return err
		}

		svc, err := completion.New(cfg.Completion)
		if err != nil {
			return err
		}
		t, err := buildTutor(svc)
		if err != nil {
			return err
		}

		c := &chat{
			tutor:      t,
			translator: buildTranslator(svc),
			render:     render.New(out, chatWidth()),
			pricing:    cfg.Cost,
			out:        out,
		}

		s, err := t.NewSession()
		if err != nil {
			return err
		}
		logger.Info("Chat session started", zap.String("session", s.ID), zap.String("service", svc.Name()))

		if !noStarter {
			c.start(cmd.Context(), s)
		}
		return c.loop(cmd.Context(), s, in)
	},
}

type chat struct {
	tutor      *tutor.Tutor
	translator translator.Translator
	render     *render.Renderer
	pricing    usage.Pricing
	out        io.Writer
}

// start opens the conversation with a starter. Failures are shown and the
// chat continues without one.
func (c *chat) start(ctx context.Context, s *tutor.Session) {
	topic := chatTopic
	if topic == "" {
		list, err := topics.Load(cfg.Tutor.TopicsFile)
		if err != nil {
			logger.Warn("No conversation topics, skipping starter", zap.Error(err))
			return
		}
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		if topic, err = topics.Pick(list, rng); err != nil {
			logger.Warn("No conversation topics, skipping starter", zap.Error(err))
			return
		}
	}

	starter, err := c.tutor.Starter(ctx, s, topic)
	if err != nil {
		c.render.Error(err)
		return
	}
	c.render.Banner(cfg.Tutor.Language+" Language Tutor", topic, starter)
}

func (c *chat) loop(ctx context.Context, s *tutor.Session, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ":") {
			if quit := c.command(ctx, s, line); quit {
				return nil
			}
			continue
		}

		turn, err := c.tutor.Turn(ctx, s, line)
		if err != nil {
			logger.Error("Turn failed", zap.String("session", s.ID), zap.Error(err))
			c.render.Error(err)
			continue
		}
		c.render.Turn(turn.Correction(), turn.Response, usage.Accountant(c.pricing.Cost(s.Usage())))
	}
}

// command runs a chat command and reports whether the chat should end.
func (c *chat) command(ctx context.Context, s *tutor.Session, line string) bool {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case ":quit", ":q", ":exit":
		c.render.Info(usage.Accountant(c.pricing.Cost(s.Usage())))
		return true
	case ":cost":
		u := s.Usage()
		c.render.Info(fmt.Sprintf("%s (%d prompt + %d completion tokens)",
			usage.Accountant(c.pricing.Cost(u)), u.PromptTokens, u.CompletionTokens))
	case ":history":
		c.history(s)
	case ":translate":
		c.translate(ctx, s)
	case ":help":
		fmt.Fprintln(c.out, chatHelp)
	default:
		c.render.Error(fmt.Errorf("unknown command %s, try :help", line))
	}
	return false
}

func (c *chat) history(s *tutor.Session) {
	for _, m := range s.History() {
		switch m.Role {
		case completion.RoleUser:
			fmt.Fprintf(c.out, "You:   %s\n", m.Content)
		case completion.RoleAssistant:
			fmt.Fprintf(c.out, "Tutor: %s\n", m.Content)
		}
	}
}

func (c *chat) translate(ctx context.Context, s *tutor.Session) {
	last, ok := s.LastReply()
	if !ok {
		c.render.Info("Nothing to translate yet.")
		return
	}

	text, err := c.translator.Translate(ctx, last, cfg.Tutor.LanguageCode, cfg.Tutor.NativeCode)
	if err != nil {
		c.render.Error(err)
		return
	}
	c.render.Info(text)
}

// chatWidth fits panels to the terminal when there is one.
func chatWidth() int {
	if renderWidth > 0 {
		return renderWidth
	}
	if w, _, err := term.GetSize(0); err == nil && w > 0 {
		return w
	}
	return 0
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().StringVarP(&chatTopic, "topic", "t", "", "Conversation topic (random from the topics file if empty)")
	chatCmd.Flags().BoolVar(&noStarter, "no-starter", false, "Skip the conversation starter")
	chatCmd.Flags().IntVar(&renderWidth, "width", 0, "Panel width (terminal width if 0)")
}
