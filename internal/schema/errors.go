// file: internal/schema/errors.go
package schema

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrorCode defines validation error codes.
type ErrorCode int

// Defined validation error codes.
const (
	ErrSchemaNotFound ErrorCode = iota + 1000
	ErrSchemaCompileFailed
	ErrValidationFailed
	ErrInvalidJSONFormat
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	// Code is the numeric error code.
	Code ErrorCode
	// Message is a human-readable error message.
	Message string
	// Cause is the underlying error, if any.
	Cause error
	// SchemaPath identifies the part of the schema that was violated.
	SchemaPath string
	// InstancePath identifies the part of the validated instance that violated the schema.
	InstancePath string
	// Context contains additional error context.
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	base := fmt.Sprintf("[%d] %s", e.Code, e.Message)
	if e.SchemaPath != "" {
		base += fmt.Sprintf(" (schema path: %s)", e.SchemaPath)
	}
	if e.InstancePath != "" {
		base += fmt.Sprintf(" (instance path: %s)", e.InstancePath)
	}
	if e.Cause != nil {
		base += fmt.Sprintf(": %v", e.Cause)
	}
	return base
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// WithContext adds context information to the validation error.
func (e *ValidationError) WithContext(key string, value interface{}) *ValidationError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewValidationError creates a new ValidationError.
func NewValidationError(code ErrorCode, message string, cause error) *ValidationError {
	return &ValidationError{
		Code:    code,
		Message: message,
		Cause:   errors.WithStack(cause),
		Context: map[string]interface{}{
			"timestamp": time.Now().UTC(),
		},
	}
}

// convertValidationError converts a jsonschema.ValidationError into our
// custom ValidationError, extracting schema and instance paths.
func convertValidationError(valErr *jsonschema.ValidationError, toolName string, data []byte) *ValidationError {
	basicOutput := valErr.BasicOutput()

	var primaryError jsonschema.BasicError
	if len(basicOutput.Errors) > 0 {
		primaryError = basicOutput.Errors[0]
	}

	customErr := NewValidationError(ErrValidationFailed, valErr.Message, valErr)

	if primaryError.KeywordLocation != "" {
		customErr.SchemaPath = primaryError.KeywordLocation
	}
	if primaryError.InstanceLocation != "" {
		customErr.InstancePath = primaryError.InstanceLocation
	}

	customErr = customErr.WithContext("toolName", toolName)
	customErr = customErr.WithContext("dataPreview", calculatePreview(data))

	if len(basicOutput.Errors) > 0 {
		causes := make([]map[string]string, 0, len(basicOutput.Errors))
		for _, cause := range basicOutput.Errors {
			causes = append(causes, map[string]string{
				"instanceLocation": cause.InstanceLocation,
				"keywordLocation":  cause.KeywordLocation,
				"error":            cause.Error,
			})
		}
		customErr = customErr.WithContext("validationErrors", causes)
	}

	return customErr
}
