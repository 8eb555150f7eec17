// Package schema compiles tool input schemas and validates tool call
// arguments against them.
//
// Each tool a service exposes declares a JSON Schema for its arguments. The
// ToolValidator compiles those declarations once at startup and checks every
// tools/call payload before it reaches a handler, so handlers can trust the
// argument shape.
// file: internal/schema/validator.go
package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/dkoosis/ouramcp/internal/logging"
	"github.com/dkoosis/ouramcp/internal/mcptypes"
)

// ToolValidator compiles and validates against per-tool input schemas.
// Safe for concurrent use after RegisterTools.
type ToolValidator struct {
	compiler    *jsonschema.Compiler
	schemas     map[string]*jsonschema.Schema
	mu          sync.RWMutex
	initialized bool
	logger      logging.Logger
}

// Ensure ToolValidator satisfies the shared validator interface.
var _ mcptypes.ValidatorInterface = (*ToolValidator)(nil)

// NewToolValidator creates a validator with an empty schema registry.
func NewToolValidator(logger logging.Logger) *ToolValidator {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true

	return &ToolValidator{
		compiler: compiler,
		schemas:  make(map[string]*jsonschema.Schema),
		logger:   logger.WithField("component", "tool_validator"),
	}
}

// RegisterTools compiles the input schemas of the given tools and marks the
// validator initialized. Compilation failure of any schema is fatal.
func (v *ToolValidator) RegisterTools(tools []mcptypes.Tool) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, tool := range tools {
		if len(tool.InputSchema) == 0 {
			v.logger.Warn("Tool declares no input schema, skipping registration.", "toolName", tool.Name)
			continue
		}

		resourceID := fmt.Sprintf("tool://%s/input", tool.Name)
		if err := v.compiler.AddResource(resourceID, bytes.NewReader(tool.InputSchema)); err != nil {
			return NewValidationError(
				ErrSchemaCompileFailed,
				fmt.Sprintf("failed to add input schema resource for tool '%s'", tool.Name),
				errors.WithStack(err),
			).WithContext("toolName", tool.Name)
		}

		compiled, err := v.compiler.Compile(resourceID)
		if err != nil {
			return NewValidationError(
				ErrSchemaCompileFailed,
				fmt.Sprintf("failed to compile input schema for tool '%s'", tool.Name),
				errors.WithStack(err),
			).WithContext("toolName", tool.Name)
		}

		v.schemas[tool.Name] = compiled
		v.logger.Debug("Compiled tool input schema.", "toolName", tool.Name)
	}

	v.initialized = true
	v.logger.Info("Tool input schemas registered.", "count", len(v.schemas))
	return nil
}

// Validate checks the given raw JSON arguments against the schema registered
// for the named tool. Tools without a registered schema pass validation.
func (v *ToolValidator) Validate(_ context.Context, name string, data []byte) error {
	v.mu.RLock()
	compiled, exists := v.schemas[name]
	initialized := v.initialized
	v.mu.RUnlock()

	if !initialized {
		return NewValidationError(ErrSchemaNotFound, "validator not initialized", nil)
	}
	if !exists {
		return nil
	}

	// Absent arguments validate as an empty object.
	if len(data) == 0 {
		data = []byte("{}")
	}

	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return NewValidationError(
			ErrInvalidJSONFormat,
			"tool arguments are not valid JSON",
			errors.WithStack(err),
		).WithContext("toolName", name).WithContext("dataPreview", calculatePreview(data))
	}

	if err := compiled.Validate(instance); err != nil {
		var valErr *jsonschema.ValidationError
		if errors.As(err, &valErr) {
			return convertValidationError(valErr, name, data)
		}
		return NewValidationError(ErrValidationFailed, "tool argument validation failed", errors.WithStack(err)).
			WithContext("toolName", name)
	}

	return nil
}

// HasSchema reports whether a compiled schema exists for the given tool name.
func (v *ToolValidator) HasSchema(name string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, exists := v.schemas[name]
	return exists
}

// IsInitialized returns whether RegisterTools has completed successfully.
func (v *ToolValidator) IsInitialized() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.initialized
}

// Shutdown releases compiled schemas.
func (v *ToolValidator) Shutdown() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.schemas = make(map[string]*jsonschema.Schema)
	v.initialized = false
	v.logger.Info("Tool validator shut down.")
	return nil
}
