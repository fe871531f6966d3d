package query

import (
	"errors"
	"net/http"

	"github.com/goliatone/go-easyship/core"
	sqlstore "github.com/goliatone/go-easyship/store/sql"
	goerrors "github.com/goliatone/go-errors"
)

func queryDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ErrorInternal)
}

func queryValidationError(field string, message string) error {
	return goerrors.NewValidation("query: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ErrorBadInput).
		WithSeverity(goerrors.SeverityError)
}

func queryWrapLookup(err error, message string) error {
	if errors.Is(err, sqlstore.ErrClaimNotFound) {
		return goerrors.Wrap(err, goerrors.CategoryNotFound, message).
			WithCode(http.StatusNotFound).
			WithTextCode(core.ErrorNotFound)
	}
	return err
}
