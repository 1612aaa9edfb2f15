package internal

import (
	"strings"
	"time"

	"github.com/valpere/hablo/internal/usage"
)

// Turn is the outcome of one learner message.
type Turn struct {
	ID          string      `json:"id"`
	SessionID   string      `json:"session_id"`
	Input       string      `json:"input"`
	Sentences   []string    `json:"sentences"`
	Corrected   []string    `json:"corrected"`
	Explanation string      `json:"explanation"`
	Response    string      `json:"response"`
	Usage       usage.Usage `json:"usage"`
	Timestamp   time.Time   `json:"timestamp"`
}

// Correction is the corrected input followed by a blank line and the
// explanation, as shown in the Correction panel.
func (t *Turn) Correction() string {
	return strings.Join(t.Corrected, " ") + "\n\n" + t.Explanation
}
