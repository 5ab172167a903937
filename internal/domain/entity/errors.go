package entity

import (
	"errors"
	"fmt"
	"strings"
)

// Standard domain errors
var (
	ErrMissingCredential   = errors.New("llm provider credential is not configured")
	ErrRateLimitExceeded   = errors.New("rate limit exceeded: too many tokens used")
	ErrInvalidRequest      = errors.New("invalid request parameters")
	ErrProviderUnavailable = errors.New("llm provider is not available")
	ErrEmptyResponse       = errors.New("empty response from llm provider")
)

// ProviderError is a raw failure reported by an LLM provider SDK.
// StatusCode is zero when the transport never produced an HTTP status.
type ProviderError struct {
	Provider   string
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	var b strings.Builder
	b.WriteString(e.Provider)
	switch {
	case e.StatusCode > 0 && e.Code != "":
		fmt.Fprintf(&b, " (status %d, %s)", e.StatusCode, e.Code)
	case e.StatusCode > 0:
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	case e.Code != "":
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Is matches ErrProviderUnavailable when the provider never answered with a
// status, e.g. refused connections or transport timeouts.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProviderUnavailable && e.StatusCode == 0
}

// ErrorCategory is the closed set of actionable provider failure kinds.
type ErrorCategory string

const (
	CategoryInvalidCredentials  ErrorCategory = "invalid_credentials"
	CategoryQuotaExceeded       ErrorCategory = "quota_exceeded"
	CategoryRateLimited         ErrorCategory = "rate_limited"
	CategoryProviderServerError ErrorCategory = "provider_server_error"
	CategoryUnclassified        ErrorCategory = "unclassified"
	CategoryConfiguration       ErrorCategory = "configuration"
)

var categoryMessages = map[ErrorCategory]string{
	CategoryInvalidCredentials: "Invalid LLM provider API key. Please verify OPENAI_API_KEY (or GEMINI_API_KEY) in the .env file " +
		"and make sure the key is complete and correct.",
	CategoryQuotaExceeded: "LLM provider quota exceeded. Please check:\n" +
		"1. Visit your provider's billing page (e.g. https://platform.openai.com/account/billing) to verify credits\n" +
		"2. Check that you are using the API key of the account with credits\n" +
		"3. Verify the account has available credits/usage limits",
	CategoryRateLimited:         "LLM provider rate limit exceeded. Please wait a moment and try again.",
	CategoryProviderServerError: "LLM provider server error. Please try again later.",
	CategoryConfiguration:       "LLM provider is not initialized. Please set OPENAI_API_KEY (or GEMINI_API_KEY) in your environment.",
}

// Message returns the fixed remediation text for the category.
// Unclassified has no template; its message is built from the error itself.
func (c ErrorCategory) Message() string {
	return categoryMessages[c]
}

// Retryable reports whether a later attempt could plausibly succeed.
func (c ErrorCategory) Retryable() bool {
	return c == CategoryRateLimited || c == CategoryProviderServerError
}
