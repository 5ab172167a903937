package usecase

import (
	"strings"

	"textbook-tutor/internal/domain/entity"
)

// ChunkSeparator delimits chunks on both split and join.
const ChunkSeparator = "\n\n"

// SplitDocument cuts a document on blank lines into trimmed, non-empty chunks.
// A document that trims to nothing yields no chunks.
func SplitDocument(document string) []entity.DocumentChunk {
	document = strings.ReplaceAll(document, "\r\n", "\n")

	var chunks []entity.DocumentChunk
	for _, segment := range strings.Split(document, ChunkSeparator) {
		text := strings.TrimSpace(segment)
		if text == "" {
			continue
		}
		chunks = append(chunks, entity.DocumentChunk{Index: len(chunks), Text: text})
	}
	return chunks
}

// JoinOutcomes reassembles outcomes with the separator SplitDocument cuts on.
func JoinOutcomes(outcomes []entity.ChunkOutcome) string {
	parts := make([]string, len(outcomes))
	for i, o := range outcomes {
		parts[i] = o.Text
	}
	return strings.Join(parts, ChunkSeparator)
}
