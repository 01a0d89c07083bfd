package application

import (
	"fmt"
	"strings"

	"github.com/bnema/chatfs/internal/domain"
)

// Transcript is the append-only record of a session. It is the single source
// of truth replayed to the model; synthetic priming turns are never written
// back into it.
type Transcript struct {
	turns []domain.Turn
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

func (t *Transcript) Append(turn domain.Turn) {
	t.turns = append(t.turns, turn)
}

// Snapshot returns a copy; callers can never mutate the recorded turns.
func (t *Transcript) Snapshot() []domain.Turn {
	out := make([]domain.Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

func (t *Transcript) Len() int { return len(t.turns) }

// buildCallHistory assembles the ephemeral turn sequence for one model call:
// the persisted turns (already excluding the live one), then a priming
// user/assistant pair per pinned document, then the live request last. Pinned
// content sits directly before the live request because the model weights
// proximate context highest; persisting the priming pairs would duplicate
// every document on every later call.
func buildCallHistory(persisted []domain.Turn, docs []domain.ContextDocument, live domain.Turn) []domain.Turn {
	history := make([]domain.Turn, 0, len(persisted)+2*len(docs)+1)
	history = append(history, persisted...)
	for _, doc := range docs {
		history = append(history, domain.UserTurn(contextPrimer(doc)))
		history = append(history, domain.AssistantTurn(contextAck(doc)))
	}
	return append(history, live)
}

func contextPrimer(doc domain.ContextDocument) string {
	var b strings.Builder
	b.WriteString("Reference document ")
	b.WriteString(doc.Path)
	b.WriteString(" from the workspace:\n\n")
	b.WriteString(doc.Content)
	return b.String()
}

func contextAck(doc domain.ContextDocument) string {
	return fmt.Sprintf("Noted. I will use %s as reference.", doc.Path)
}
