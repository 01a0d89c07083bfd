package application

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"

	"github.com/bnema/chatfs/internal/domain"
)

func (o *Orchestrator) handleRead(ctx context.Context, cmd domain.ReadCommand) []domain.Event {
	resolved, failed := o.resolve(cmd.Path)
	if failed != nil {
		return failed
	}

	stat, err := o.gateway.Stat(ctx, resolved.Absolute)
	if err != nil {
		return o.gatewayFailure("read", resolved, err)
	}
	if stat.Kind == domain.EntryDirectory {
		return o.fail(domain.ErrorWrongEntryKind,
			fmt.Sprintf("%s is a directory; use /list", resolved.Display))
	}
	if stat.Size > int64(o.maxReadBytes) {
		return o.fail(domain.ErrorTooLarge,
			fmt.Sprintf("%s is %d bytes, read limit is %d", resolved.Display, stat.Size, o.maxReadBytes))
	}

	data, err := o.gateway.Read(ctx, resolved.Absolute)
	if err != nil {
		return o.gatewayFailure("read", resolved, err)
	}

	o.recordNotice(fmt.Sprintf("read %s (%d bytes)", resolved.Display, len(data)))
	return []domain.Event{domain.FileContentEvent{Path: resolved.Display, Content: string(data)}}
}

func (o *Orchestrator) handleList(ctx context.Context, cmd domain.ListCommand) []domain.Event {
	raw := cmd.Path
	if raw == "" {
		raw = "."
	}
	resolved, failed := o.resolve(raw)
	if failed != nil {
		return failed
	}

	stat, err := o.gateway.Stat(ctx, resolved.Absolute)
	if err != nil {
		return o.gatewayFailure("list", resolved, err)
	}
	if stat.Kind != domain.EntryDirectory {
		return o.fail(domain.ErrorWrongEntryKind,
			fmt.Sprintf("%s is not a directory; use /read", resolved.Display))
	}

	entries, err := o.gateway.List(ctx, resolved.Absolute)
	if err != nil {
		return o.gatewayFailure("list", resolved, err)
	}
	sortEntries(entries)

	o.recordNotice(fmt.Sprintf("listed %s (%d entries)", resolved.Display, len(entries)))
	return []domain.Event{domain.DirListingEvent{Path: resolved.Display, Entries: entries}}
}

// sortEntries orders directories first, then files, each alphabetically.
func sortEntries(entries []domain.DirEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Kind != entries[j].Kind {
			return entries[i].Kind == domain.EntryDirectory
		}
		return entries[i].Name < entries[j].Name
	})
}

func (o *Orchestrator) handleContextAdd(ctx context.Context, cmd domain.ContextAddCommand) []domain.Event {
	resolved, failed := o.resolve(cmd.Path)
	if failed != nil {
		return failed
	}

	stat, err := o.gateway.Stat(ctx, resolved.Absolute)
	if err != nil {
		return o.gatewayFailure("pin", resolved, err)
	}

	if stat.Kind == domain.EntryDirectory {
		return o.contextAddDirectory(ctx, resolved)
	}
	return o.contextAddFile(ctx, resolved, stat)
}

func (o *Orchestrator) contextAddFile(ctx context.Context, target domain.ResolvedPath, stat domain.FileStat) []domain.Event {
	if stat.Size > int64(o.contexts.MaxDocBytes()) {
		o.recordNotice(fmt.Sprintf("did not pin %s: exceeds pin limit", target.Display))
		return []domain.Event{domain.NewContextReport([]domain.ContextEntryReport{
			skippedOversize(target.Display, int(stat.Size), o.contexts.MaxDocBytes()),
		})}
	}

	data, err := o.gateway.Read(ctx, target.Absolute)
	if err != nil {
		return o.gatewayFailure("pin", target, err)
	}

	outcome, err := o.contexts.Add(target.Display, string(data))
	if err != nil {
		o.recordNotice(fmt.Sprintf("did not pin %s: exceeds pin limit", target.Display))
		return []domain.Event{domain.NewContextReport([]domain.ContextEntryReport{
			skippedOversize(target.Display, len(data), o.contexts.MaxDocBytes()),
		})}
	}

	o.recordNotice(fmt.Sprintf("pinned %s (%d bytes)", target.Display, len(data)))
	return []domain.Event{domain.NewContextReport([]domain.ContextEntryReport{{
		Path:      target.Display,
		Outcome:   outcome,
		SizeBytes: len(data),
	}})}
}

// contextAddDirectory pins the immediate regular files of a directory.
// Subdirectories are reported as skipped, never descended into.
func (o *Orchestrator) contextAddDirectory(ctx context.Context, dir domain.ResolvedPath) []domain.Event {
	children, err := o.gateway.List(ctx, dir.Absolute)
	if err != nil {
		return o.gatewayFailure("pin", dir, err)
	}
	sortEntries(children)

	reports := make([]domain.ContextEntryReport, 0, len(children))
	var batch []domain.ContextEntry
	flush := func() {
		if len(batch) == 0 {
			return
		}
		reports = append(reports, o.contexts.AddMany(batch)...)
		batch = nil
	}

	for _, child := range children {
		display := child.Name
		if dir.Display != "." {
			display = path.Join(dir.Display, child.Name)
		}

		if child.Kind == domain.EntryDirectory {
			flush()
			reports = append(reports, domain.ContextEntryReport{
				Path:    display,
				Outcome: domain.ContextSkipped,
				Reason:  "directory (not descended)",
			})
			continue
		}

		absolute := filepath.Join(dir.Absolute, child.Name)
		stat, err := o.gateway.Stat(ctx, absolute)
		if err != nil {
			flush()
			reports = append(reports, domain.ContextEntryReport{
				Path:    display,
				Outcome: domain.ContextSkipped,
				Reason:  "unreadable",
			})
			continue
		}
		if stat.Size > int64(o.contexts.MaxDocBytes()) {
			flush()
			reports = append(reports, skippedOversize(display, int(stat.Size), o.contexts.MaxDocBytes()))
			continue
		}

		data, err := o.gateway.Read(ctx, absolute)
		if err != nil {
			flush()
			reports = append(reports, domain.ContextEntryReport{
				Path:    display,
				Outcome: domain.ContextSkipped,
				Reason:  "unreadable",
			})
			continue
		}
		batch = append(batch, domain.ContextEntry{Path: display, Content: string(data)})
	}
	flush()

	ev := domain.NewContextReport(reports)
	o.recordNotice(fmt.Sprintf("pinned %d files from %s (%d skipped)", ev.Added+ev.Updated, dir.Display, ev.Skipped))
	return []domain.Event{ev}
}

func skippedOversize(display string, size, limit int) domain.ContextEntryReport {
	return domain.ContextEntryReport{
		Path:    display,
		Outcome: domain.ContextSkipped,
		Reason:  fmt.Sprintf("exceeds pin limit (%d > %d bytes)", size, limit),
	}
}

func (o *Orchestrator) handleContextList() []domain.Event {
	return []domain.Event{domain.ContextListEvent{Documents: o.contexts.List()}}
}

func (o *Orchestrator) handleContextClear() []domain.Event {
	n := o.contexts.Clear()
	return []domain.Event{o.notice(fmt.Sprintf("context cleared (%d documents)", n))}
}

func (o *Orchestrator) handleGeneralQuery(ctx context.Context, cmd domain.GeneralQuery) []domain.Event {
	reply, err := o.bridge.Generate(ctx, o.callHistory(domain.UserTurn(cmd.Text)))
	if err != nil {
		return o.failBridge(err)
	}
	o.transcript.Append(domain.AssistantTurn(reply))
	return []domain.Event{domain.AssistantReplyEvent{Text: reply}}
}

// callHistory derives the ephemeral sequence for one model call: persisted
// turns minus the live user turn, pinned documents, then the live turn last.
func (o *Orchestrator) callHistory(live domain.Turn) []domain.Turn {
	snap := o.transcript.Snapshot()
	if n := len(snap); n > 0 && snap[n-1].Speaker == domain.SpeakerUser {
		snap = snap[:n-1]
	}
	return buildCallHistory(snap, o.contexts.List(), live)
}
