package validation

import "errors"

var (
	// ErrSchemaViolation indicates a response does not match the schema.
	ErrSchemaViolation = errors.New("validation: response violates schema")

	// ErrCorrelationMismatch indicates the response echoes a correlation
	// token different from the request's.
	ErrCorrelationMismatch = errors.New("validation: correlation token mismatch")

	// ErrInvalidSchema indicates the schema itself could not be compiled.
	ErrInvalidSchema = errors.New("validation: invalid schema")
)
