package usecase

import (
	"fmt"
	"strings"

	"textbook-tutor/internal/domain/entity"
)

// MaxHistoryTurns bounds how much conversation is replayed to the model.
const MaxHistoryTurns = 6

const assistantCue = "Assistant:"

// AssemblePrompt renders recent history, the query and an optional grounding
// snippet into one prompt ending with the assistant cue. Turn content is
// never truncated.
func AssemblePrompt(history []entity.ConversationTurn, query, grounding string) string {
	var sb strings.Builder

	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}
	if len(history) > 0 {
		sb.WriteString("Conversation History:\n")
		for i, turn := range history {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "%s: %s", roleLabel(turn.Role), turn.Content)
		}
		sb.WriteString("\n\n")
	}

	sb.WriteString("User: ")
	sb.WriteString(query)

	if grounding != "" {
		sb.WriteString("\n\nReference text:\n'''")
		sb.WriteString(grounding)
		sb.WriteString("'''\n\nPlease explain or answer based on this text.")
	}

	sb.WriteString("\n\n")
	sb.WriteString(assistantCue)
	return sb.String()
}

func roleLabel(r entity.Role) string {
	if r == entity.RoleAssistant {
		return "Assistant"
	}
	return "User"
}
