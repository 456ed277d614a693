package api

import (
	"errors"
	"net/http"

	"github.com/johnwards/menuseed/internal/domain"
)

// Error types carried in the "type" field of error responses.
const (
	TypeArgumentInvalid  = "general_argument_invalid"
	TypeNotFound         = "general_not_found"
	TypeDocumentNotFound = "document_not_found"
	TypeFileNotFound     = "storage_file_not_found"
	TypeConflict         = "general_conflict"
	TypeUnauthorized     = "general_unauthorized_scope"
	TypeServerError      = "general_server_error"
)

// Error is the JSON error body returned by every endpoint.
type Error struct {
	Message       string `json:"message"`
	Code          int    `json:"code"`
	Type          string `json:"type"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// NewError creates an Error for the given HTTP status.
func NewError(code int, typ, message, correlationID string) *Error {
	return &Error{
		Message:       message,
		Code:          code,
		Type:          typ,
		CorrelationID: correlationID,
	}
}

// NewNotFoundError creates a 404 error.
func NewNotFoundError(typ, message, correlationID string) *Error {
	return NewError(http.StatusNotFound, typ, message, correlationID)
}

// NewValidationError creates a 400 error.
func NewValidationError(message, correlationID string) *Error {
	return NewError(http.StatusBadRequest, TypeArgumentInvalid, message, correlationID)
}

// NewConflictError creates a 409 error.
func NewConflictError(message, correlationID string) *Error {
	return NewError(http.StatusConflict, TypeConflict, message, correlationID)
}

// WriteError writes apiErr as a JSON response using its Code as the status.
func WriteError(w http.ResponseWriter, apiErr *Error) {
	WriteJSON(w, apiErr.Code, apiErr)
}

// WriteStoreError maps a store error to a response. notFoundType is used
// for domain.ErrNotFound.
func WriteStoreError(w http.ResponseWriter, r *http.Request, err error, notFoundType string) {
	corrID := CorrelationID(r.Context())
	switch {
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, NewNotFoundError(notFoundType, err.Error(), corrID))
	case errors.Is(err, domain.ErrConflict):
		WriteError(w, NewConflictError(err.Error(), corrID))
	case errors.Is(err, domain.ErrInvalidDocument):
		WriteError(w, NewValidationError(err.Error(), corrID))
	default:
		WriteError(w, NewError(http.StatusInternalServerError, TypeServerError, err.Error(), corrID))
	}
}
