package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bnema/chatfs/internal/domain"
)

func (o *Orchestrator) proposeCreate(ctx context.Context, cmd domain.CreateCommand) []domain.Event {
	resolved, failed := o.resolve(cmd.Path)
	if failed != nil {
		return failed
	}

	_, err := o.gateway.Stat(ctx, resolved.Absolute)
	if err == nil {
		return o.fail(domain.ErrorAlreadyExists,
			fmt.Sprintf("%s already exists; use /write to modify it", resolved.Display))
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return o.gatewayFailure("create", resolved, err)
	}

	content, events := o.generate(ctx, createInstruction(resolved.Display, cmd.Description))
	if events != nil {
		return events
	}
	return o.stageContent(domain.OpCreate, resolved, content, "")
}

func (o *Orchestrator) proposeWrite(ctx context.Context, cmd domain.WriteCommand) []domain.Event {
	resolved, failed := o.resolve(cmd.Path)
	if failed != nil {
		return failed
	}

	stat, err := o.gateway.Stat(ctx, resolved.Absolute)
	if errors.Is(err, domain.ErrNotFound) {
		return o.fail(domain.ErrorNotFound,
			fmt.Sprintf("%s does not exist; use /create to add it", resolved.Display))
	}
	if err != nil {
		return o.gatewayFailure("write", resolved, err)
	}
	if stat.Kind == domain.EntryDirectory {
		return o.fail(domain.ErrorWrongEntryKind,
			fmt.Sprintf("%s is a directory", resolved.Display))
	}
	if stat.Size > int64(o.maxReadBytes) {
		return o.fail(domain.ErrorTooLarge,
			fmt.Sprintf("%s is %d bytes, rewrite limit is %d", resolved.Display, stat.Size, o.maxReadBytes))
	}

	originalBytes, err := o.gateway.Read(ctx, resolved.Absolute)
	if err != nil {
		return o.gatewayFailure("write", resolved, err)
	}
	original := string(originalBytes)

	content, events := o.generate(ctx, writeInstruction(resolved.Display, original, cmd.Description))
	if events != nil {
		return events
	}
	return o.stageContent(domain.OpWrite, resolved, content, original)
}

// proposeDelete needs no model call: the proposed content is absence. The
// stat taken here is what confirmation later re-checks.
func (o *Orchestrator) proposeDelete(ctx context.Context, cmd domain.DeleteCommand) []domain.Event {
	resolved, failed := o.resolve(cmd.Path)
	if failed != nil {
		return failed
	}

	stat, err := o.gateway.Stat(ctx, resolved.Absolute)
	if errors.Is(err, domain.ErrNotFound) {
		return o.fail(domain.ErrorNotFound, fmt.Sprintf("%s: %v", resolved.Display, domain.ErrNotFound))
	}
	if err != nil {
		return o.gatewayFailure("delete", resolved, err)
	}

	op := domain.PendingOperation{
		ID:         o.newID(),
		Kind:       domain.OpDelete,
		Target:     resolved,
		TargetStat: &stat,
		CreatedAt:  o.clock.Now(),
	}

	var events []domain.Event
	if replaced := o.pending.Stage(op); replaced != "" {
		events = append(events, o.notice(fmt.Sprintf("superseded earlier proposal for %s", resolved.Display)))
	}
	return append(events, domain.ConfirmationPromptEvent{ID: op.ID, TargetPath: resolved.Display})
}

// generate runs one model call for a staged mutation. Failures surface as
// events and no pending entry is created.
func (o *Orchestrator) generate(ctx context.Context, instruction string) (string, []domain.Event) {
	out, err := o.bridge.Generate(ctx, o.callHistory(domain.UserTurn(instruction)))
	if err != nil {
		return "", o.failBridge(err)
	}
	return stripFence(out), nil
}

func (o *Orchestrator) stageContent(kind domain.OperationKind, target domain.ResolvedPath, proposed, original string) []domain.Event {
	op := domain.PendingOperation{
		ID:              o.newID(),
		Kind:            kind,
		Target:          target,
		ProposedContent: proposed,
		OriginalContent: original,
		CreatedAt:       o.clock.Now(),
	}

	var events []domain.Event
	if replaced := o.pending.Stage(op); replaced != "" {
		events = append(events, o.notice(fmt.Sprintf("superseded earlier proposal for %s", target.Display)))
	}
	o.logger.Debug("staged operation",
		zap.String("id", op.ID),
		zap.String("kind", string(kind)),
		zap.String("path", target.Display))

	return append(events, domain.PreviewEvent{
		ID:              op.ID,
		Kind:            kind,
		TargetPath:      target.Display,
		ProposedContent: proposed,
		OriginalContent: original,
	})
}

func createInstruction(display, description string) string {
	var b strings.Builder
	b.WriteString("Create the full content for a new file named ")
	b.WriteString(display)
	b.WriteString(".")
	if strings.TrimSpace(description) != "" {
		b.WriteString(" It should contain: ")
		b.WriteString(description)
		b.WriteString(".")
	}
	b.WriteString("\nRespond with the raw file content only, no commentary and no code fences.")
	return b.String()
}

func writeInstruction(display, original, change string) string {
	var b strings.Builder
	b.WriteString("Rewrite the file ")
	b.WriteString(display)
	b.WriteString(" applying this change: ")
	b.WriteString(change)
	b.WriteString("\n\nCurrent content of ")
	b.WriteString(display)
	b.WriteString(":\n")
	b.WriteString(original)
	b.WriteString("\nRespond with the complete new file content only, no commentary and no code fences.")
	return b.String()
}

// stripFence unwraps a response the model wrapped in a markdown code fence
// despite instructions.
func stripFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 || strings.TrimSpace(lines[len(lines)-1]) != "```" {
		return s
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
