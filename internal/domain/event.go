package domain

// Event is one outbound message to the UI boundary. The variant set is
// closed; renderers switch over it exhaustively.
type Event interface{ isEvent() }

// PreviewEvent carries a staged create or write awaiting confirmation.
type PreviewEvent struct {
	ID              string
	Kind            OperationKind
	TargetPath      string
	ProposedContent string
	OriginalContent string
}

// ConfirmationPromptEvent carries a staged delete awaiting confirmation.
type ConfirmationPromptEvent struct {
	ID         string
	TargetPath string
}

type OperationAppliedEvent struct {
	Kind       OperationKind
	TargetPath string
}

type OperationDiscardedEvent struct {
	Kind       OperationKind
	TargetPath string
}

type SystemNoticeEvent struct{ Text string }

type ErrorKind string

const (
	ErrorSandboxViolation ErrorKind = "sandbox_violation"
	ErrorUsage            ErrorKind = "usage"
	ErrorNotFound         ErrorKind = "not_found"
	ErrorAlreadyExists    ErrorKind = "already_exists"
	ErrorWrongEntryKind   ErrorKind = "wrong_entry_kind"
	ErrorTooLarge         ErrorKind = "too_large"
	ErrorServiceBlocked   ErrorKind = "service_blocked"
	ErrorService          ErrorKind = "service_error"
	ErrorStaleOperation   ErrorKind = "stale_operation"
	ErrorTargetChanged    ErrorKind = "target_changed_since_proposal"
	ErrorIO               ErrorKind = "io_error"
)

type ErrorEvent struct {
	Kind ErrorKind
	Text string
}

type AssistantReplyEvent struct{ Text string }

type FileContentEvent struct {
	Path    string
	Content string
}

type DirListingEvent struct {
	Path    string
	Entries []DirEntry
}

type ContextReportEvent struct {
	Entries []ContextEntryReport
	Added   int
	Updated int
	Skipped int
}

type ContextListEvent struct {
	Documents []ContextDocument
}

func (PreviewEvent) isEvent()            {}
func (ConfirmationPromptEvent) isEvent() {}
func (OperationAppliedEvent) isEvent()   {}
func (OperationDiscardedEvent) isEvent() {}
func (SystemNoticeEvent) isEvent()       {}
func (ErrorEvent) isEvent()              {}
func (AssistantReplyEvent) isEvent()     {}
func (FileContentEvent) isEvent()        {}
func (DirListingEvent) isEvent()         {}
func (ContextReportEvent) isEvent()      {}
func (ContextListEvent) isEvent()        {}

// NewContextReport folds per-entry outcomes into the summary counts shown
// alongside them.
func NewContextReport(entries []ContextEntryReport) ContextReportEvent {
	ev := ContextReportEvent{Entries: entries}
	for _, e := range entries {
		switch e.Outcome {
		case ContextAdded:
			ev.Added++
		case ContextUpdated:
			ev.Updated++
		case ContextSkipped:
			ev.Skipped++
		}
	}
	return ev
}
