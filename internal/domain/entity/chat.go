package entity

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one message of a chat, oldest first in any sequence.
type ConversationTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	UserID       string
	Query        string
	SelectedText string
	CurrentPage  string
	History      []ConversationTurn
}

// Search modes reported back to the caller.
const (
	SearchDirectLLM = "direct_llm"
	SearchRAG       = "rag"
	SearchError     = "error"
)

// ChatResult is always well formed, even when generation failed.
type ChatResult struct {
	Answer     string             `json:"answer"`
	Sources    []string           `json:"sources"`
	SearchUsed string             `json:"search_used"`
	Category   ErrorCategory      `json:"category,omitempty"`
	TokenCount int                `json:"token_count"`
	History    []ConversationTurn `json:"conversation_history"`
}
