package application

import (
	"fmt"
	"sort"

	"github.com/bnema/chatfs/internal/domain"
)

// PendingOperationTable tracks staged mutations awaiting confirmation. At
// most one outstanding proposal exists per target path: staging another for
// the same path replaces the entry and the replaced id turns stale. The
// orchestrator serializes access; the table is not safe for concurrent use.
type PendingOperationTable struct {
	ops    map[string]domain.PendingOperation
	byPath map[string]string
}

func NewPendingOperationTable() *PendingOperationTable {
	return &PendingOperationTable{
		ops:    make(map[string]domain.PendingOperation),
		byPath: make(map[string]string),
	}
}

// Stage records op as the outstanding proposal for its target path and
// returns the id it replaced, if any.
func (t *PendingOperationTable) Stage(op domain.PendingOperation) (replacedID string) {
	op.Status = domain.StatusProposed
	if previous, ok := t.byPath[op.Target.Display]; ok {
		delete(t.ops, previous)
		replacedID = previous
	}
	t.ops[op.ID] = op
	t.byPath[op.Target.Display] = op.ID
	return replacedID
}

// Take removes id from the outstanding set so it is consumed exactly once.
// Unknown, superseded, and already-resolved ids yield ErrStaleOperation.
func (t *PendingOperationTable) Take(id string) (domain.PendingOperation, error) {
	op, ok := t.ops[id]
	if !ok || op.Status != domain.StatusProposed {
		return domain.PendingOperation{}, fmt.Errorf("operation %s: %w", id, domain.ErrStaleOperation)
	}
	delete(t.ops, id)
	if t.byPath[op.Target.Display] == id {
		delete(t.byPath, op.Target.Display)
	}
	return op, nil
}

// Finish re-records a taken operation with its terminal status so later
// confirms of the same id resolve as stale, not unknown.
func (t *PendingOperationTable) Finish(op domain.PendingOperation, status domain.OperationStatus) {
	op.Status = status
	t.ops[op.ID] = op
}

func (t *PendingOperationTable) Get(id string) (domain.PendingOperation, bool) {
	op, ok := t.ops[id]
	return op, ok
}

// Outstanding reports the live proposal id for a display path.
func (t *PendingOperationTable) Outstanding(path string) (string, bool) {
	id, ok := t.byPath[path]
	return id, ok
}

// OutstandingIDs returns every live proposal id, oldest first.
func (t *PendingOperationTable) OutstandingIDs() []string {
	ids := make([]string, 0, len(t.byPath))
	for _, id := range t.byPath {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := t.ops[ids[i]], t.ops[ids[j]]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return ids
}

// Len counts outstanding proposals only; resolved residue is not included.
func (t *PendingOperationTable) Len() int { return len(t.byPath) }
