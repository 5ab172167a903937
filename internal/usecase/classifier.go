package usecase

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"textbook-tutor/internal/domain/entity"
)

// Classify maps a provider failure to an actionable category and message.
// It performs no I/O, so the same error shape always yields the same answer.
func Classify(err error) (entity.ErrorCategory, string) {
	if err == nil {
		return entity.CategoryUnclassified, "unknown error"
	}
	if errors.Is(err, entity.ErrMissingCredential) {
		return categorized(entity.CategoryConfiguration)
	}

	msg := strings.ToLower(err.Error())

	var perr *entity.ProviderError
	if errors.As(err, &perr) && perr.StatusCode > 0 {
		switch {
		case perr.StatusCode == http.StatusUnauthorized:
			return categorized(entity.CategoryInvalidCredentials)
		case perr.StatusCode == http.StatusTooManyRequests:
			if mentionsQuota(msg) {
				return categorized(entity.CategoryQuotaExceeded)
			}
			return categorized(entity.CategoryRateLimited)
		case perr.StatusCode == http.StatusInternalServerError:
			return categorized(entity.CategoryProviderServerError)
		}
	}

	switch {
	case mentionsQuota(msg):
		return categorized(entity.CategoryQuotaExceeded)
	case strings.Contains(msg, "invalid_api_key") || strings.Contains(msg, "401"):
		return categorized(entity.CategoryInvalidCredentials)
	case strings.Contains(msg, "rate_limit") || strings.Contains(msg, "429"):
		return categorized(entity.CategoryRateLimited)
	}

	// Other gateway failures only count as server errors once the message
	// has had its say.
	if perr != nil && perr.StatusCode > http.StatusInternalServerError && perr.StatusCode <= http.StatusGatewayTimeout {
		return categorized(entity.CategoryProviderServerError)
	}

	return entity.CategoryUnclassified, fmt.Sprintf("%s: %s", errorTypeName(err), err.Error())
}

func categorized(c entity.ErrorCategory) (entity.ErrorCategory, string) {
	return c, c.Message()
}

func mentionsQuota(msg string) bool {
	return strings.Contains(msg, "quota")
}

// errorTypeName names the innermost error of a wrap chain.
func errorTypeName(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			break
		}
		err = next
	}
	t := reflect.TypeOf(err)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
