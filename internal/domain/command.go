package domain

// Command is one parsed chat instruction. The variant set is closed so the
// orchestrator can dispatch exhaustively.
type Command interface{ isCommand() }

type ReadCommand struct{ Path string }

// ListCommand with an empty Path targets the workspace root.
type ListCommand struct{ Path string }

type CreateCommand struct {
	Path        string
	Description string
}

type WriteCommand struct {
	Path        string
	Description string
}

type DeleteCommand struct{ Path string }

type ContextAddCommand struct{ Path string }

type ContextListCommand struct{}

type ContextClearCommand struct{}

type GeneralQuery struct{ Text string }

func (ReadCommand) isCommand()         {}
func (ListCommand) isCommand()         {}
func (CreateCommand) isCommand()       {}
func (WriteCommand) isCommand()        {}
func (DeleteCommand) isCommand()       {}
func (ContextAddCommand) isCommand()   {}
func (ContextListCommand) isCommand()  {}
func (ContextClearCommand) isCommand() {}
func (GeneralQuery) isCommand()        {}
