package core

import (
	stderrors "errors"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

type convertibleError struct{}

func (convertibleError) Error() string { return "convertible" }

func (convertibleError) ToServiceError() *goerrors.Error {
	return goerrors.New("converted", goerrors.CategoryConflict)
}

func TestMapError_AssignsStableCodes(t *testing.T) {
	mapped := MapError(stderrors.New("webhooks: signature rejected"))
	if mapped.TextCode != ErrorSignatureInvalid {
		t.Fatalf("expected signature text code, got %q", mapped.TextCode)
	}
	if mapped.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", mapped.Code)
	}

	mapped = MapError(stderrors.New("easyship: endpoint is required"))
	if mapped.TextCode != ErrorBadInput || mapped.Code != http.StatusBadRequest {
		t.Fatalf("expected bad input envelope, got %q/%d", mapped.TextCode, mapped.Code)
	}

	mapped = MapError(stderrors.New("shipment not found"))
	if mapped.Category != goerrors.CategoryNotFound {
		t.Fatalf("expected not found category, got %q", mapped.Category)
	}
}

func TestMapError_UsesServiceErrorConverter(t *testing.T) {
	wrapped := stderrors.Join(stderrors.New("outer"), convertibleError{})
	mapped := MapError(wrapped)
	if mapped.Message != "converted" {
		t.Fatalf("expected converted message, got %q", mapped.Message)
	}
	if mapped.TextCode != ErrorConflict {
		t.Fatalf("expected conflict text code, got %q", mapped.TextCode)
	}
	if mapped.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", mapped.Code)
	}
}

type wrappingConvertibleError struct {
	cause error
}

func (e wrappingConvertibleError) Error() string { return "wrapping: " + e.cause.Error() }

func (e wrappingConvertibleError) Unwrap() error { return e.cause }

func (wrappingConvertibleError) ToServiceError() *goerrors.Error {
	return goerrors.New("listener failed", goerrors.CategoryOperation).
		WithCode(http.StatusInternalServerError).
		WithTextCode(ErrorListenerFailed)
}

func TestMapError_ConverterWinsOverRichCause(t *testing.T) {
	cause := goerrors.New("order missing", goerrors.CategoryNotFound).WithCode(http.StatusNotFound)
	mapped := MapError(wrappingConvertibleError{cause: cause})
	if mapped.Code != http.StatusInternalServerError || mapped.TextCode != ErrorListenerFailed {
		t.Fatalf("expected converter envelope, got %d/%q", mapped.Code, mapped.TextCode)
	}
}

func TestMapError_KeepsRichErrorCodes(t *testing.T) {
	rich := goerrors.New("rate limited", goerrors.CategoryRateLimit).
		WithCode(http.StatusTooManyRequests).
		WithTextCode("CUSTOM")
	mapped := MapError(rich)
	if mapped.TextCode != "CUSTOM" {
		t.Fatalf("expected custom text code preserved, got %q", mapped.TextCode)
	}
	if HTTPStatus(rich) != http.StatusTooManyRequests {
		t.Fatalf("expected 429 status")
	}
	if HTTPStatus(nil) != http.StatusOK {
		t.Fatalf("expected nil error to map to 200")
	}
}

func TestStatusForCategory_External(t *testing.T) {
	if StatusForCategory(goerrors.CategoryExternal) != http.StatusBadGateway {
		t.Fatalf("expected external category to map to 502")
	}
	if TextCodeForCategory(goerrors.CategoryExternal) != ErrorExternalFailure {
		t.Fatalf("expected external failure text code")
	}
}
