package easyship

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-easyship/core"
	goerrors "github.com/goliatone/go-errors"
)

// APIError is returned for any non-2xx response. Body holds the raw
// response so callers can decode Easyship's error document themselves.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("easyship: %s %s returned status %d", e.Method, e.URL, e.StatusCode)
}

func (e *APIError) ToServiceError() *goerrors.Error {
	category := categoryForStatus(e.StatusCode)
	err := goerrors.New(e.Error(), category).
		WithCode(statusForAPIError(e.StatusCode)).
		WithTextCode(core.TextCodeForCategory(category))
	metadata := map[string]any{
		"method":      e.Method,
		"url":         e.URL,
		"status_code": e.StatusCode,
	}
	if body := strings.TrimSpace(string(e.Body)); body != "" {
		metadata["response_body"] = truncate(body, 512)
	}
	err.WithMetadata(metadata)
	return err
}

func categoryForStatus(status int) goerrors.Category {
	switch {
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return goerrors.CategoryBadInput
	case status == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case status == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case status == http.StatusNotFound:
		return goerrors.CategoryNotFound
	case status == http.StatusConflict:
		return goerrors.CategoryConflict
	case status == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	case status >= http.StatusInternalServerError:
		return goerrors.CategoryExternal
	default:
		return goerrors.CategoryOperation
	}
}

func statusForAPIError(status int) int {
	if status >= http.StatusInternalServerError {
		return http.StatusBadGateway
	}
	if status >= http.StatusBadRequest {
		return status
	}
	return http.StatusBadGateway
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	return value[:limit]
}

func clientError(message string, category goerrors.Category, code int, metadata map[string]any) *goerrors.Error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(core.TextCodeForCategory(category))
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}
