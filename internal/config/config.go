package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port       string `validate:"required,numeric"`
	AppVersion string
	Env        string

	LLMProvider      string `validate:"oneof=openai gemini"`
	OpenAIAPIKey     string
	OpenAIBaseURL    string `validate:"omitempty,url"`
	GeminiAPIKey     string
	GoogleProject    string
	GoogleLocation   string
	ChatModel        string `validate:"required"`
	PersonalizeModel string `validate:"required"`
	TranslateModel   string `validate:"required"`
	FallbackModel    string

	EmbeddingProvider string `validate:"oneof=openai gemini none"`
	EmbeddingModel    string

	QdrantURL        string `validate:"omitempty,url"`
	QdrantHost       string
	QdrantPort       int    `validate:"gte=0,lte=65535"`
	QdrantAPIKey     string
	QdrantCollection string `validate:"required"`
	QdrantVectorSize uint64 `validate:"gt=0"`
	RetrievalLimit   int    `validate:"gte=1,lte=20"`

	RedisAddr      string
	UserTokenLimit int `validate:"gte=0"`

	FanoutMaxConcurrency int           `validate:"gte=0"`
	ChunkTimeout         time.Duration `validate:"gte=0"`
	ProviderTimeout      time.Duration `validate:"gte=0"`
	ProviderMaxRetries   int           `validate:"gte=0,lte=10"`
	ProviderRPS          float64       `validate:"gte=0"`

	LogLevel    string
	LogPretty   bool
	CORSOrigins []string
}

// Load reads an optional .env file and then the process environment.
// A missing .env file is reported through the returned bool, never as an error.
func Load(envFile string) (*Config, bool, error) {
	loaded := godotenv.Load(envFile) == nil

	cfg := &Config{
		Port:       getEnv("PORT", "8000"),
		AppVersion: getEnv("APP_VERSION", "dev"),
		Env:        getEnv("ENV", "development"),

		LLMProvider:      strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		OpenAIAPIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:    os.Getenv("OPENAI_BASE_URL"),
		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		GoogleProject:    os.Getenv("GOOGLE_CLOUD_PROJECT"),
		GoogleLocation:   getEnv("GOOGLE_CLOUD_LOCATION", "us-central1"),
		ChatModel:        getEnv("CHAT_MODEL", "gpt-4o-mini"),
		PersonalizeModel: getEnv("PERSONALIZE_MODEL", "gpt-4o"),
		TranslateModel:   getEnv("TRANSLATE_MODEL", "gpt-4o-mini"),
		FallbackModel:    os.Getenv("FALLBACK_MODEL"),

		EmbeddingProvider: strings.ToLower(getEnv("EMBEDDING_PROVIDER", "none")),
		EmbeddingModel:    getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),

		QdrantURL:        os.Getenv("QDRANT_URL"),
		QdrantHost:       os.Getenv("QDRANT_HOST"),
		QdrantPort:       getInt("QDRANT_PORT", 6334),
		QdrantAPIKey:     os.Getenv("QDRANT_API_KEY"),
		QdrantCollection: getEnv("QDRANT_COLLECTION_NAME", "textbook_chunks"),
		QdrantVectorSize: uint64(getInt("QDRANT_VECTOR_SIZE", 1536)),
		RetrievalLimit:   getInt("RETRIEVAL_LIMIT", 3),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		UserTokenLimit: getInt("USER_TOKEN_LIMIT", 0),

		FanoutMaxConcurrency: getInt("FANOUT_MAX_CONCURRENCY", 32),
		ChunkTimeout:         getDuration("CHUNK_TIMEOUT", 0),
		ProviderTimeout:      getDuration("PROVIDER_TIMEOUT", 60*time.Second),
		ProviderMaxRetries:   getInt("PROVIDER_MAX_RETRIES", 2),
		ProviderRPS:          getFloat("PROVIDER_RPS", 0),

		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   getBool("LOG_PRETTY", false),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:3000,http://127.0.0.1:3000")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, loaded, err
	}
	return cfg, loaded, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ProviderAPIKey returns the credential of the configured LLM provider.
func (c *Config) ProviderAPIKey() string {
	if c.LLMProvider == "gemini" {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

func (c *Config) QdrantConfigured() bool {
	return c.QdrantURL != "" || c.QdrantHost != ""
}

// KeyPreview shows the first 8 and last 4 characters of a secret.
// Short secrets are fully masked.
func KeyPreview(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 12 {
		return "***"
	}
	return key[:8] + "..." + key[len(key)-4:]
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getInt(key string, def int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
