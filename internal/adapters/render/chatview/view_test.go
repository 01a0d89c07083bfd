package chatview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/chatfs/internal/domain"
)

func TestRenderCreatePreviewShowsAdditionsOnly(t *testing.T) {
	output, err := Render([]domain.Event{
		domain.PreviewEvent{
			ID:              "op-1",
			Kind:            domain.OpCreate,
			TargetPath:      "greet.txt",
			ProposedContent: "hello\nworld\n",
		},
	})

	require.NoError(t, err)
	assert.Contains(t, output, "proposed create: greet.txt")
	assert.Contains(t, output, "+ hello")
	assert.Contains(t, output, "+ world")
	assert.NotContains(t, output, "- ")
	assert.Contains(t, output, "operation op-1")
}

func TestRenderWritePreviewShowsLineDiff(t *testing.T) {
	output, err := Render([]domain.Event{
		domain.PreviewEvent{
			ID:              "op-2",
			Kind:            domain.OpWrite,
			TargetPath:      "cfg.json",
			OriginalContent: "alpha\nbeta\ngamma\n",
			ProposedContent: "alpha\nBETA\ngamma\n",
		},
	})

	require.NoError(t, err)
	assert.Contains(t, output, "proposed write: cfg.json")
	assert.Contains(t, output, "- beta")
	assert.Contains(t, output, "+ BETA")
	assert.Contains(t, output, "  alpha")
	assert.Contains(t, output, "  gamma")
}

func TestRenderConfirmationPrompt(t *testing.T) {
	output, err := Render([]domain.Event{
		domain.ConfirmationPromptEvent{ID: "op-3", TargetPath: "old.log"},
	})

	require.NoError(t, err)
	assert.Contains(t, output, "delete old.log?")
	assert.Contains(t, output, "operation op-3")
}

func TestRenderListingMarksDirectories(t *testing.T) {
	output, err := Render([]domain.Event{
		domain.DirListingEvent{
			Path: ".",
			Entries: []domain.DirEntry{
				{Name: "docs", Kind: domain.EntryDirectory},
				{Name: "readme.md", Kind: domain.EntryFile},
			},
		},
	})

	require.NoError(t, err)
	assert.Contains(t, output, ". (2 entries)")
	assert.Contains(t, output, "docs/")
	assert.Contains(t, output, "readme.md")
}

func TestRenderEmptyListing(t *testing.T) {
	output, err := Render([]domain.Event{
		domain.DirListingEvent{Path: "empty-dir"},
	})

	require.NoError(t, err)
	assert.Contains(t, output, "empty-dir (0 entries)")
	assert.Contains(t, output, "(empty)")
}

func TestRenderContextReportInterleavesOutcomes(t *testing.T) {
	output, err := Render([]domain.Event{
		domain.NewContextReport([]domain.ContextEntryReport{
			{Path: "a.md", Outcome: domain.ContextAdded, SizeBytes: 12},
			{Path: "sub", Outcome: domain.ContextSkipped, Reason: "directory (not descended)"},
			{Path: "b.md", Outcome: domain.ContextUpdated, SizeBytes: 30},
		}),
	})

	require.NoError(t, err)
	assert.Contains(t, output, "+ pinned a.md (12 bytes)")
	assert.Contains(t, output, "- skipped sub: directory (not descended)")
	assert.Contains(t, output, "~ updated b.md (30 bytes)")
	assert.Contains(t, output, "1 added, 1 updated, 1 skipped")
}

func TestRenderContextList(t *testing.T) {
	output, err := Render([]domain.Event{
		domain.ContextListEvent{
			Documents: []domain.ContextDocument{
				{Path: "notes.md", Content: "hello notes"},
			},
		},
	})

	require.NoError(t, err)
	assert.Contains(t, output, "context: 1 documents")
	assert.Contains(t, output, "notes.md (11 bytes)")
}

func TestRenderEmptyContextList(t *testing.T) {
	output, err := Render([]domain.Event{domain.ContextListEvent{}})

	require.NoError(t, err)
	assert.Contains(t, output, "context is empty")
}

func TestRenderErrorAndNotice(t *testing.T) {
	output, err := Render([]domain.Event{
		domain.ErrorEvent{Kind: domain.ErrorSandboxViolation, Text: "path escapes the workspace root"},
		domain.SystemNoticeEvent{Text: "context cleared (2 documents)"},
	})

	require.NoError(t, err)
	assert.Contains(t, output, "error: path escapes the workspace root")
	assert.Contains(t, output, "context cleared (2 documents)")
}

func TestRenderAppliedAndDiscarded(t *testing.T) {
	output, err := Render([]domain.Event{
		domain.OperationAppliedEvent{Kind: domain.OpWrite, TargetPath: "cfg.json"},
		domain.OperationDiscardedEvent{Kind: domain.OpDelete, TargetPath: "old.log"},
	})

	require.NoError(t, err)
	assert.Contains(t, output, "applied write: cfg.json")
	assert.Contains(t, output, "discarded delete: old.log")
}

func TestRenderFileContent(t *testing.T) {
	output, err := Render([]domain.Event{
		domain.FileContentEvent{Path: "notes.md", Content: "line one\nline two"},
	})

	require.NoError(t, err)
	assert.Contains(t, output, "notes.md")
	assert.Contains(t, output, "line one")
	assert.Contains(t, output, "line two")
}
