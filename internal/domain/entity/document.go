package entity

import "fmt"

// DocumentChunk is a trimmed, non-empty, blank-line delimited segment.
// Index is its zero-based position in the source document.
type DocumentChunk struct {
	Index int
	Text  string
}

// ChunkOutcome holds either the transformed text or a failure placeholder.
type ChunkOutcome struct {
	Index  int
	Text   string
	Failed bool
}

type UserProfile struct {
	UserID             string
	SoftwareBackground string
	HardwareBackground string
}

// Descriptor renders the background line injected into personalization prompts.
func (p UserProfile) Descriptor() string {
	return fmt.Sprintf("Software Background: %s. Hardware Background: %s.",
		orNA(p.SoftwareBackground), orNA(p.HardwareBackground))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Passage is a textbook excerpt stored in, or returned by, the vector store.
type Passage struct {
	Content    string
	SourceID   string
	ChunkIndex int
	Score      float32
}

type CollectionHealth struct {
	Name        string `json:"collection_name"`
	Exists      bool   `json:"exists"`
	Status      string `json:"status"`
	PointsCount uint64 `json:"points_count"`
}
