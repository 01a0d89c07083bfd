package domain

type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
	SpeakerSystem    Speaker = "system"
)

// Turn is one utterance in a session. Immutable once appended to a transcript.
type Turn struct {
	Speaker Speaker
	Text    string
}

func UserTurn(text string) Turn      { return Turn{Speaker: SpeakerUser, Text: text} }
func AssistantTurn(text string) Turn { return Turn{Speaker: SpeakerAssistant, Text: text} }
func SystemTurn(text string) Turn    { return Turn{Speaker: SpeakerSystem, Text: text} }
