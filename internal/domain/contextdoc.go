package domain

// ContextDocument is a workspace file pinned into every subsequent model call
// until removed. Path is the sandbox-relative display path and the unique key.
type ContextDocument struct {
	Path    string
	Content string
}

func (d ContextDocument) SizeBytes() int { return len(d.Content) }

// ContextEntry is a candidate for pinning, before the size bound is applied.
type ContextEntry struct {
	Path    string
	Content string
}

type ContextOutcome string

const (
	ContextAdded   ContextOutcome = "added"
	ContextUpdated ContextOutcome = "updated"
	ContextSkipped ContextOutcome = "skipped"
)

type ContextEntryReport struct {
	Path      string
	Outcome   ContextOutcome
	Reason    string
	SizeBytes int
}
