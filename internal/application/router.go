package application

import (
	"strings"

	"github.com/bnema/chatfs/internal/domain"
)

// Route parses one chat message. Recognized prefixes are case-insensitive
// and committed: once a message matches a known verb, malformed arguments
// surface as *domain.UsageError instead of falling through to a general
// query. Unknown slash verbs are chat, not commands.
func Route(message string) (domain.Command, error) {
	trimmed := strings.TrimSpace(message)
	if !strings.HasPrefix(trimmed, "/") {
		return domain.GeneralQuery{Text: trimmed}, nil
	}

	fields := strings.Fields(trimmed)
	verb := strings.ToLower(fields[0])

	switch verb {
	case "/read":
		if len(fields) != 2 {
			return nil, usageErr(verb, "/read <path>")
		}
		return domain.ReadCommand{Path: fields[1]}, nil

	case "/list":
		switch len(fields) {
		case 1:
			return domain.ListCommand{}, nil
		case 2:
			return domain.ListCommand{Path: fields[1]}, nil
		default:
			return nil, usageErr(verb, "/list [<path>]")
		}

	case "/create":
		if len(fields) < 2 {
			return nil, usageErr(verb, "/create <path> [description]")
		}
		return domain.CreateCommand{
			Path:        fields[1],
			Description: strings.Join(fields[2:], " "),
		}, nil

	case "/write":
		if len(fields) < 3 {
			return nil, usageErr(verb, "/write <path> <description>")
		}
		return domain.WriteCommand{
			Path:        fields[1],
			Description: strings.Join(fields[2:], " "),
		}, nil

	case "/delete":
		if len(fields) != 2 {
			return nil, usageErr(verb, "/delete <path>")
		}
		return domain.DeleteCommand{Path: fields[1]}, nil

	case "/context":
		return routeContext(fields)

	default:
		return domain.GeneralQuery{Text: trimmed}, nil
	}
}

func routeContext(fields []string) (domain.Command, error) {
	const usage = "/context <path> | /context add <path> | /context list | /context clear"

	if len(fields) < 2 {
		return nil, usageErr("/context", usage)
	}

	switch strings.ToLower(fields[1]) {
	case "list":
		if len(fields) != 2 {
			return nil, usageErr("/context list", usage)
		}
		return domain.ContextListCommand{}, nil
	case "clear":
		if len(fields) != 2 {
			return nil, usageErr("/context clear", usage)
		}
		return domain.ContextClearCommand{}, nil
	case "add":
		if len(fields) != 3 {
			return nil, usageErr("/context add", usage)
		}
		return domain.ContextAddCommand{Path: fields[2]}, nil
	default:
		if len(fields) != 2 {
			return nil, usageErr("/context", usage)
		}
		return domain.ContextAddCommand{Path: fields[1]}, nil
	}
}

func usageErr(command, usage string) *domain.UsageError {
	return &domain.UsageError{Command: command, Usage: usage}
}
