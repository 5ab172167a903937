package api

import "textbook-tutor/internal/domain/entity"

type Message struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Query               string    `json:"query" validate:"required"`
	SelectedText        string    `json:"selected_text"`
	CurrentPage         string    `json:"current_page"`
	UserID              string    `json:"user_id" validate:"omitempty,max=128"`
	ConversationHistory []Message `json:"conversation_history" validate:"omitempty,dive"`
}

type ChatResponse struct {
	Answer              string    `json:"answer"`
	Sources             []string  `json:"sources"`
	SearchUsed          string    `json:"search_used"`
	ConversationHistory []Message `json:"conversation_history"`
}

type PersonalizationRequest struct {
	ChapterContent     string `json:"chapter_content" validate:"required"`
	UserID             string `json:"user_id" validate:"required"`
	SoftwareBackground string `json:"software_background"`
	HardwareBackground string `json:"hardware_background"`
}

type PersonalizationResponse struct {
	PersonalizedContent string `json:"personalized_content"`
}

type TranslationRequest struct {
	ChapterContent string `json:"chapter_content" validate:"required"`
	TargetLanguage string `json:"target_language" validate:"omitempty,max=64"`
}

type TranslationResponse struct {
	TranslatedContent string `json:"translated_content"`
}

// ConfigStatus is reported by /config/check; it never carries a full secret.
type ConfigStatus struct {
	Provider           string `json:"provider"`
	ProviderConfigured bool   `json:"provider_configured"`
	KeyPreview         string `json:"key_preview,omitempty"`
	RetrievalEnabled   bool   `json:"retrieval_enabled"`
	QdrantConfigured   bool   `json:"qdrant_configured"`
	RedisConfigured    bool   `json:"redis_configured"`
}

func toTurn(m Message, _ int) entity.ConversationTurn {
	return entity.ConversationTurn{Role: entity.Role(m.Role), Content: m.Content}
}

func fromTurn(t entity.ConversationTurn, _ int) Message {
	return Message{Role: string(t.Role), Content: t.Content}
}
