package domain

import "time"

type OperationKind string

const (
	OpCreate OperationKind = "create"
	OpWrite  OperationKind = "write"
	OpDelete OperationKind = "delete"
)

type OperationStatus string

const (
	StatusProposed  OperationStatus = "proposed"
	StatusApplied   OperationStatus = "applied"
	StatusDiscarded OperationStatus = "discarded"
	StatusFailed    OperationStatus = "failed"
)

// PendingOperation is a staged mutation awaiting explicit confirmation.
// Resolution is terminal: no operation returns to StatusProposed.
type PendingOperation struct {
	ID              string
	Kind            OperationKind
	Target          ResolvedPath
	ProposedContent string
	OriginalContent string
	// TargetStat is the stat taken when a delete was proposed; confirmation
	// re-checks it and fails closed on any difference.
	TargetStat *FileStat
	Status     OperationStatus
	CreatedAt  time.Time
}
