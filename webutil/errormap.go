package webutil

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/coreybb/fabula/datastore"
	"github.com/coreybb/fabula/validation"
)

// Public messages for errors that did not come with one of their own.
const (
	MsgValidationFailed  = "Validation failed"
	MsgRecordNotFound    = "Record not found"
	MsgRecordExists      = "Record already exists"
	MsgInvalidReference  = "Referenced record does not exist"
	MsgDatabaseError     = "Database error"
	MsgUnexpectedFailure = "An unexpected error occurred"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error  string                 `json:"error"`
	Errors []validation.Violation `json:"errors,omitempty"`
}

// MapError turns any error returned by a handler into a status code and a body that is
// safe to send to the client. Driver messages and stack details never reach the body.
func MapError(err error) (int, ErrorBody) {
	var (
		vErrs   validation.Errors
		httpErr *HTTPError
		pErr    *datastore.PersistenceError
	)

	switch {
	case errors.As(err, &vErrs):
		return http.StatusBadRequest, ErrorBody{Error: MsgValidationFailed, Errors: vErrs}
	case errors.As(err, &httpErr):
		return httpErr.Code, ErrorBody{Error: httpErr.Message}
	case errors.Is(err, datastore.ErrNotFound), errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound, ErrorBody{Error: MsgRecordNotFound}
	case errors.Is(err, datastore.ErrConflict):
		return http.StatusConflict, ErrorBody{Error: MsgRecordExists}
	case errors.Is(err, datastore.ErrInvalidReference):
		return http.StatusBadRequest, ErrorBody{Error: MsgInvalidReference}
	case errors.As(err, &pErr):
		return http.StatusInternalServerError, ErrorBody{Error: MsgDatabaseError}
	default:
		return http.StatusInternalServerError, ErrorBody{Error: MsgUnexpectedFailure}
	}
}
