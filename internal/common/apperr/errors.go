package apperr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Sentinel errors for the recoverable-by-caller taxonomy. Controllers map
// them to HTTP statuses via StatusCode; services wrap them with context.
var (
	ErrNotFound       = errors.New("not found")
	ErrNotAuthorized  = errors.New("not authorized")
	ErrInvalidState   = errors.New("invalid state")
	ErrNoApprovalPath = errors.New("no approval workflow found and no manager assigned")
)

// FieldError describes a single invalid submission field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates malformed or missing submission fields.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// NewValidation builds a ValidationError from field/message pairs.
func NewValidation(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// StatusCode maps taxonomy errors to HTTP statuses. Anything unrecognized
// is a server error.
func StatusCode(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNoApprovalPath):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotAuthorized):
		return fiber.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidState):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}
