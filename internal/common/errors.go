package common

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnavailable  = errors.New("datastore unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// ValidationError carries per-field messages and matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Unavailable wraps a datastore failure so callers can test it with errors.Is(err, ErrUnavailable).
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse("NOT_FOUND", fmt.Sprintf("%s not found", resource), nil))
}

// SendClientError sends a client error response
func SendClientError(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, CreateErrorResponse("CLIENT_ERROR", message, nil))
}

// SendError maps a service or repository error onto the error envelope.
// Raw datastore errors are logged, never returned to the client.
func SendError(c echo.Context, resource string, err error) error {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", verr.Fields))
	case errors.Is(err, ErrValidation):
		return c.JSON(http.StatusBadRequest, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", nil))
	case errors.Is(err, ErrNotFound):
		return SendNotFoundError(c, resource)
	case errors.Is(err, ErrConflict):
		return c.JSON(http.StatusConflict, CreateErrorResponse("CONFLICT", fmt.Sprintf("%s already exists", resource), nil))
	case errors.Is(err, ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, CreateErrorResponse("UNAUTHORIZED", "Unauthorized access", nil))
	case errors.Is(err, ErrForbidden):
		return c.JSON(http.StatusForbidden, CreateErrorResponse("FORBIDDEN", "Insufficient permissions", nil))
	case errors.Is(err, ErrUnavailable):
		log.Printf("ERROR: %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, CreateErrorResponse("UPSTREAM_UNAVAILABLE", "Catalog temporarily unavailable", nil))
	default:
		log.Printf("ERROR: %s %s: %v", c.Request().Method, c.Path(), err)
		return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", "Internal server error", nil))
	}
}
