package webhooks

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goliatone/go-easyship/core"
	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrSignatureInvalid = errors.New("webhooks: signature invalid")
	ErrPayloadInvalid   = errors.New("webhooks: payload invalid")
	ErrListenerFailed   = errors.New("webhooks: listener failed")
)

// SignatureInvalidError reports that no configured key accepted the token.
// Cause holds the failure from the last key tried, if any.
type SignatureInvalidError struct {
	KeysTried int
	Cause     error
}

func (e *SignatureInvalidError) Error() string {
	if e.KeysTried == 0 && e.Cause != nil {
		return "webhooks: signature invalid: " + e.Cause.Error()
	}
	if e.KeysTried == 0 {
		return "webhooks: signature invalid: no secret keys configured"
	}
	return fmt.Sprintf("webhooks: signature invalid for %d key(s)", e.KeysTried)
}

func (e *SignatureInvalidError) Unwrap() []error {
	return unwrapPair(ErrSignatureInvalid, e.Cause)
}

func (e *SignatureInvalidError) ToServiceError() *goerrors.Error {
	return webhookError(
		e.Error(),
		goerrors.CategoryAuth,
		http.StatusUnauthorized,
		core.ErrorSignatureInvalid,
		map[string]any{"keys_tried": e.KeysTried},
	)
}

type PayloadInvalidError struct {
	Reason string
	Value  any
}

func (e *PayloadInvalidError) Error() string {
	return "webhooks: payload invalid: " + e.Reason
}

func (e *PayloadInvalidError) Unwrap() error {
	return ErrPayloadInvalid
}

func (e *PayloadInvalidError) ToServiceError() *goerrors.Error {
	metadata := map[string]any{"reason": e.Reason}
	if e.Value != nil {
		metadata["event_type"] = fmt.Sprint(e.Value)
	}
	return webhookError(
		e.Error(),
		goerrors.CategoryBadInput,
		http.StatusBadRequest,
		core.ErrorPayloadInvalid,
		metadata,
	)
}

// ListenerError reports the listener that aborted a fan-out.
type ListenerError struct {
	EventType EventType
	Index     int
	Cause     error
}

func (e *ListenerError) Error() string {
	return fmt.Sprintf("webhooks: listener %d for %q failed: %v", e.Index, e.EventType, e.Cause)
}

func (e *ListenerError) Unwrap() []error {
	return unwrapPair(ErrListenerFailed, e.Cause)
}

func (e *ListenerError) ToServiceError() *goerrors.Error {
	return webhookWrapError(
		e.Cause,
		goerrors.CategoryOperation,
		e.Error(),
		http.StatusInternalServerError,
		core.ErrorListenerFailed,
		map[string]any{"event_type": string(e.EventType), "listener_index": e.Index},
	)
}

func unwrapPair(sentinel error, cause error) []error {
	if cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, cause}
}

func webhookError(
	message string,
	category goerrors.Category,
	code int,
	textCode string,
	metadata map[string]any,
) *goerrors.Error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func webhookWrapError(
	source error,
	category goerrors.Category,
	message string,
	code int,
	textCode string,
	metadata map[string]any,
) *goerrors.Error {
	if source == nil {
		return webhookError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	// Wrap clones the category of a go-errors source.
	err.Category = category
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}
