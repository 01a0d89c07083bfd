package chatview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/bnema/chatfs/internal/domain"
)

// RenderEvents formats a batch of events without running a bubbletea
// program, for embedding inside an already-running TUI.
func RenderEvents(events []domain.Event) string {
	return renderView(events, newStyles())
}

func renderView(events []domain.Event, s styles) string {
	if len(events) == 0 {
		return ""
	}

	lines := make([]string, 0, len(events))
	for i, ev := range events {
		rendered := renderEvent(ev, s)
		if i > 0 {
			rendered = s.section.Render(rendered)
		}
		lines = append(lines, rendered)
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderEvent(ev domain.Event, s styles) string {
	switch e := ev.(type) {
	case domain.PreviewEvent:
		return renderPreview(e, s)
	case domain.ConfirmationPromptEvent:
		return lipgloss.JoinVertical(lipgloss.Left,
			s.prompt.Render(fmt.Sprintf("delete %s?", e.TargetPath)),
			s.promptMeta.Render(fmt.Sprintf("confirm with 'y', cancel with 'n' (operation %s)", e.ID)),
		)
	case domain.OperationAppliedEvent:
		return s.applied.Render(fmt.Sprintf("applied %s: %s", e.Kind, e.TargetPath))
	case domain.OperationDiscardedEvent:
		return s.discarded.Render(fmt.Sprintf("discarded %s: %s", e.Kind, e.TargetPath))
	case domain.SystemNoticeEvent:
		return s.system.Render("• " + e.Text)
	case domain.ErrorEvent:
		return s.errText.Render("error: " + e.Text)
	case domain.AssistantReplyEvent:
		return s.assistant.Render(e.Text)
	case domain.FileContentEvent:
		return lipgloss.JoinVertical(lipgloss.Left,
			s.path.Render(e.Path),
			e.Content,
		)
	case domain.DirListingEvent:
		return renderListing(e, s)
	case domain.ContextReportEvent:
		return renderContextReport(e, s)
	case domain.ContextListEvent:
		return renderContextList(e, s)
	default:
		return ""
	}
}

func renderPreview(e domain.PreviewEvent, s styles) string {
	title := fmt.Sprintf("proposed %s: %s", e.Kind, e.TargetPath)

	parts := []string{
		s.prompt.Render(title),
		renderDiff(e.OriginalContent, e.ProposedContent, s),
		s.promptMeta.Render(fmt.Sprintf("confirm with 'y', cancel with 'n' (operation %s)", e.ID)),
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderListing(e domain.DirListingEvent, s styles) string {
	lines := []string{
		s.header.Render(fmt.Sprintf("%s (%d entries)", e.Path, len(e.Entries))),
	}
	if len(e.Entries) == 0 {
		lines = append(lines, s.empty.Render("(empty)"))
	}
	for _, entry := range e.Entries {
		if entry.Kind == domain.EntryDirectory {
			lines = append(lines, s.dirEntry.Render(entry.Name+"/"))
			continue
		}
		lines = append(lines, s.fileEntry.Render(entry.Name))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderContextReport(e domain.ContextReportEvent, s styles) string {
	lines := make([]string, 0, len(e.Entries)+1)
	for _, entry := range e.Entries {
		switch entry.Outcome {
		case domain.ContextAdded:
			lines = append(lines, s.diffAdd.Render(fmt.Sprintf("+ pinned %s (%d bytes)", entry.Path, entry.SizeBytes)))
		case domain.ContextUpdated:
			lines = append(lines, s.diffCtx.Render(fmt.Sprintf("~ updated %s (%d bytes)", entry.Path, entry.SizeBytes)))
		case domain.ContextSkipped:
			lines = append(lines, s.diffDel.Render(fmt.Sprintf("- skipped %s: %s", entry.Path, entry.Reason)))
		}
	}
	lines = append(lines, s.header.Render(
		fmt.Sprintf("%d added, %d updated, %d skipped", e.Added, e.Updated, e.Skipped)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderContextList(e domain.ContextListEvent, s styles) string {
	if len(e.Documents) == 0 {
		return s.empty.Render("context is empty")
	}

	lines := []string{
		s.header.Render(fmt.Sprintf("context: %d documents", len(e.Documents))),
	}
	for _, doc := range e.Documents {
		lines = append(lines, s.fileEntry.Render(fmt.Sprintf("%s (%d bytes)", doc.Path, doc.SizeBytes())))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderDiff shows a line diff between original and proposed content. An
// empty original renders as pure additions.
func renderDiff(original, proposed string, s styles) string {
	dmp := diffmatchpatch.New()
	src, dst, lineArray := dmp.DiffLinesToChars(original, proposed)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(src, dst, false), lineArray)

	var lines []string
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				lines = append(lines, s.diffAdd.Render("+ "+line))
			case diffmatchpatch.DiffDelete:
				lines = append(lines, s.diffDel.Render("- "+line))
			default:
				lines = append(lines, s.diffCtx.Render("  "+line))
			}
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func splitLines(text string) []string {
	trimmed := strings.TrimSuffix(text, "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
