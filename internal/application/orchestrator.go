package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bnema/chatfs/internal/domain"
	"github.com/bnema/chatfs/internal/ports"
	"github.com/bnema/chatfs/internal/sandbox"
)

const (
	DefaultMaxReadBytes = 256 << 10
	DefaultMaxPinBytes  = 48 << 10
)

// Config carries everything a session needs up front. Nothing is read from
// ambient process state, so isolated sessions can coexist in one process.
type Config struct {
	WorkspaceRoot string
	MaxReadBytes  int
	MaxPinBytes   int
}

// Orchestrator drives one conversation session. Each session owns its own
// transcript, context store, and pending table; messages are processed
// strictly one at a time.
type Orchestrator struct {
	mu sync.Mutex

	sandbox *sandbox.Sandbox
	gateway ports.FileGateway
	bridge  ports.ModelBridge
	clock   ports.Clock
	logger  *zap.Logger

	transcript *Transcript
	contexts   *ContextStore
	pending    *PendingOperationTable

	maxReadBytes int
	newID        func() string
}

func NewOrchestrator(cfg Config, gateway ports.FileGateway, bridge ports.ModelBridge, clock ports.Clock, logger *zap.Logger) (*Orchestrator, error) {
	if gateway == nil {
		return nil, errors.New("file gateway is required")
	}
	if bridge == nil {
		return nil, errors.New("model bridge is required")
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sb, err := sandbox.New(cfg.WorkspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}

	maxRead := cfg.MaxReadBytes
	if maxRead <= 0 {
		maxRead = DefaultMaxReadBytes
	}
	maxPin := cfg.MaxPinBytes
	if maxPin <= 0 {
		maxPin = DefaultMaxPinBytes
	}
	if maxRead <= maxPin {
		return nil, fmt.Errorf("max read bytes (%d) must exceed max pin bytes (%d)", maxRead, maxPin)
	}

	return &Orchestrator{
		sandbox:      sb,
		gateway:      gateway,
		bridge:       bridge,
		clock:        clock,
		logger:       logger,
		transcript:   NewTranscript(),
		contexts:     NewContextStore(maxPin),
		pending:      NewPendingOperationTable(),
		maxReadBytes: maxRead,
		newID:        uuid.NewString,
	}, nil
}

func (o *Orchestrator) Root() string { return o.sandbox.Root() }

// HandleMessage processes one inbound chat message to completion. Every
// failure surfaces as an event; no error crosses this boundary.
func (o *Orchestrator) HandleMessage(ctx context.Context, message string) []domain.Event {
	o.mu.Lock()
	defer o.mu.Unlock()

	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return []domain.Event{domain.ErrorEvent{Kind: domain.ErrorUsage, Text: "empty message"}}
	}
	if err := ctx.Err(); err != nil {
		return []domain.Event{domain.ErrorEvent{Kind: domain.ErrorService, Text: err.Error()}}
	}

	o.transcript.Append(domain.UserTurn(trimmed))

	cmd, err := Route(trimmed)
	if err != nil {
		return o.fail(domain.ErrorUsage, err.Error())
	}
	o.logger.Debug("routed message", zap.String("command", fmt.Sprintf("%T", cmd)))

	switch c := cmd.(type) {
	case domain.ReadCommand:
		return o.handleRead(ctx, c)
	case domain.ListCommand:
		return o.handleList(ctx, c)
	case domain.CreateCommand:
		return o.proposeCreate(ctx, c)
	case domain.WriteCommand:
		return o.proposeWrite(ctx, c)
	case domain.DeleteCommand:
		return o.proposeDelete(ctx, c)
	case domain.ContextAddCommand:
		return o.handleContextAdd(ctx, c)
	case domain.ContextListCommand:
		return o.handleContextList()
	case domain.ContextClearCommand:
		return o.handleContextClear()
	case domain.GeneralQuery:
		return o.handleGeneralQuery(ctx, c)
	default:
		return o.fail(domain.ErrorUsage, fmt.Sprintf("unhandled command %T", cmd))
	}
}

// Confirm applies the staged operation id. Duplicate confirmations resolve
// as stale; the underlying mutation runs at most once.
func (o *Orchestrator) Confirm(ctx context.Context, id string) []domain.Event {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return []domain.Event{domain.ErrorEvent{Kind: domain.ErrorService, Text: err.Error()}}
	}

	op, err := o.pending.Take(id)
	if err != nil {
		return o.fail(domain.ErrorStaleOperation, err.Error())
	}

	if op.Kind == domain.OpDelete {
		return o.applyDelete(ctx, op)
	}
	return o.applyContent(ctx, op)
}

// Discard drops the staged operation id without touching the filesystem.
func (o *Orchestrator) Discard(id string) []domain.Event {
	o.mu.Lock()
	defer o.mu.Unlock()

	op, err := o.pending.Take(id)
	if err != nil {
		return o.fail(domain.ErrorStaleOperation, err.Error())
	}
	o.pending.Finish(op, domain.StatusDiscarded)
	o.recordNotice(fmt.Sprintf("discarded proposed %s of %s", op.Kind, op.Target.Display))
	return []domain.Event{domain.OperationDiscardedEvent{Kind: op.Kind, TargetPath: op.Target.Display}}
}

func (o *Orchestrator) applyContent(ctx context.Context, op domain.PendingOperation) []domain.Event {
	if err := o.gateway.Write(ctx, op.Target.Absolute, []byte(op.ProposedContent)); err != nil {
		o.pending.Finish(op, domain.StatusFailed)
		return o.fail(domain.ErrorIO,
			fmt.Sprintf("cannot %s %s: %s", op.Kind, op.Target.Display, describeIOError(err)))
	}
	o.pending.Finish(op, domain.StatusApplied)
	o.recordNotice(fmt.Sprintf("%s %s (%d bytes)", appliedVerb(op.Kind), op.Target.Display, len(op.ProposedContent)))
	return []domain.Event{domain.OperationAppliedEvent{Kind: op.Kind, TargetPath: op.Target.Display}}
}

func (o *Orchestrator) applyDelete(ctx context.Context, op domain.PendingOperation) []domain.Event {
	current, err := o.gateway.Stat(ctx, op.Target.Absolute)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		o.pending.Finish(op, domain.StatusFailed)
		return o.fail(domain.ErrorTargetChanged,
			fmt.Sprintf("%s is already gone: %v", op.Target.Display, domain.ErrTargetChanged))
	case err != nil:
		o.pending.Finish(op, domain.StatusFailed)
		return o.fail(domain.ErrorIO,
			fmt.Sprintf("cannot delete %s: %s", op.Target.Display, describeIOError(err)))
	case op.TargetStat == nil || !current.Same(*op.TargetStat):
		o.pending.Finish(op, domain.StatusFailed)
		return o.fail(domain.ErrorTargetChanged,
			fmt.Sprintf("%s: %v", op.Target.Display, domain.ErrTargetChanged))
	}

	if err := o.gateway.Delete(ctx, op.Target.Absolute); err != nil {
		o.pending.Finish(op, domain.StatusFailed)
		return o.fail(domain.ErrorIO,
			fmt.Sprintf("cannot delete %s: %s", op.Target.Display, describeIOError(err)))
	}
	o.pending.Finish(op, domain.StatusApplied)
	o.recordNotice(fmt.Sprintf("deleted %s", op.Target.Display))

	events := []domain.Event{domain.OperationAppliedEvent{Kind: domain.OpDelete, TargetPath: op.Target.Display}}
	if o.contexts.RemoveIfDeleted(op.Target.Display) {
		events = append(events, o.notice(fmt.Sprintf("unpinned deleted file %s", op.Target.Display)))
	}
	return events
}

// SessionSnapshot exports the conversation state for archiving.
func (o *Orchestrator) SessionSnapshot() (turns []domain.Turn, pinnedPaths []string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	docs := o.contexts.List()
	pinnedPaths = make([]string, 0, len(docs))
	for _, doc := range docs {
		pinnedPaths = append(pinnedPaths, doc.Path)
	}
	return o.transcript.Snapshot(), pinnedPaths
}

// PendingIDs lists outstanding proposal ids, oldest first.
func (o *Orchestrator) PendingIDs() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending.OutstandingIDs()
}

// fail surfaces an error to the user and records it as a system notice so
// later model calls see what happened.
func (o *Orchestrator) fail(kind domain.ErrorKind, text string) []domain.Event {
	o.transcript.Append(domain.SystemTurn("error: " + text))
	return []domain.Event{domain.ErrorEvent{Kind: kind, Text: text}}
}

// failBridge surfaces a model service failure without recording a notice:
// bridge failures are not replayed into the next call as if the user said
// them.
func (o *Orchestrator) failBridge(err error) []domain.Event {
	var blocked *domain.BlockedError
	if errors.As(err, &blocked) {
		return []domain.Event{domain.ErrorEvent{Kind: domain.ErrorServiceBlocked, Text: blocked.Error()}}
	}
	return []domain.Event{domain.ErrorEvent{Kind: domain.ErrorService, Text: err.Error()}}
}

func (o *Orchestrator) notice(text string) domain.Event {
	o.recordNotice(text)
	return domain.SystemNoticeEvent{Text: text}
}

func (o *Orchestrator) recordNotice(text string) {
	o.transcript.Append(domain.SystemTurn(text))
}

// resolve maps a raw path argument into the sandbox, surfacing violations
// as events.
func (o *Orchestrator) resolve(raw string) (domain.ResolvedPath, []domain.Event) {
	resolved, err := o.sandbox.Resolve(raw)
	if err != nil {
		return domain.ResolvedPath{}, o.fail(domain.ErrorSandboxViolation, err.Error())
	}
	return resolved, nil
}

// gatewayFailure translates a gateway error on target into the user-facing
// event, keeping absolute paths out of the surfaced text.
func (o *Orchestrator) gatewayFailure(verb string, target domain.ResolvedPath, err error) []domain.Event {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return o.fail(domain.ErrorNotFound, fmt.Sprintf("%s: %v", target.Display, domain.ErrNotFound))
	case errors.Is(err, domain.ErrIsADirectory):
		return o.fail(domain.ErrorWrongEntryKind, fmt.Sprintf("%s is a directory; use /list", target.Display))
	case errors.Is(err, domain.ErrNotADirectory):
		return o.fail(domain.ErrorWrongEntryKind, fmt.Sprintf("%s is not a directory; use /read", target.Display))
	default:
		return o.fail(domain.ErrorIO, fmt.Sprintf("cannot %s %s: %s", verb, target.Display, describeIOError(err)))
	}
}

func describeIOError(err error) string {
	var ioErr *domain.IOError
	if errors.As(err, &ioErr) {
		return ioErr.Cause.Error()
	}
	return err.Error()
}

func appliedVerb(kind domain.OperationKind) string {
	switch kind {
	case domain.OpCreate:
		return "created"
	case domain.OpWrite:
		return "wrote"
	case domain.OpDelete:
		return "deleted"
	default:
		return "applied"
	}
}
