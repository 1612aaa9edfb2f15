package tutor

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/valpere/hablo/internal/completion"
	"github.com/valpere/hablo/internal/usage"
)

// Session is one learner's conversation: the message history sent with every
// conversation request and the tokens spent so far.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	topic   string
	history []completion.Message
	usage   usage.Usage
	turns   int
}

// NewSession starts a conversation whose history begins with systemPrompt.
func NewSession(systemPrompt string) *Session {
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		history:   []completion.Message{{Role: completion.RoleSystem, Content: systemPrompt}},
	}
}

// History returns a copy of the conversation so far.
func (s *Session) History() []completion.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]completion.Message(nil), s.history...)
}

func (s *Session) Usage() usage.Usage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

func (s *Session) Topic() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topic
}

// Turns is the number of completed learner turns.
func (s *Session) Turns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turns
}

// LastReply returns the most recent assistant message.
func (s *Session) LastReply() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.history) - 1; i >= 0; i-- {
		if s.history[i].Role == completion.RoleAssistant {
			return s.history[i].Content, true
		}
	}
	return "", false
}

func (s *Session) startWith(topic, starter string, u usage.Usage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topic = topic
	s.history = append(s.history, completion.Message{Role: completion.RoleAssistant, Content: starter})
	s.usage.Add(u)
}

func (s *Session) commit(input, reply string, u usage.Usage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history,
		completion.Message{Role: completion.RoleUser, Content: input},
		completion.Message{Role: completion.RoleAssistant, Content: reply},
	)
	s.usage.Add(u)
	s.turns++
}
