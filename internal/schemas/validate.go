// Package schemas provides JSON Schema validation for resume documents and
// the loader that turns a resume file into a validated in-memory document.
package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/resume-tailor/internal/types"
)

//go:embed resume.schema.json
var schemaFiles embed.FS

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load resume schema: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load resume schema: %s", e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// ValidateResumeJSON validates raw JSON content against the embedded resume
// schema.
func ValidateResumeJSON(content []byte) error {
	schemaContent, err := schemaFiles.ReadFile("resume.schema.json")
	if err != nil {
		return &SchemaLoadError{Message: "embedded schema missing", Cause: err}
	}

	schemaLoader := gojsonschema.NewBytesLoader(schemaContent)
	documentLoader := gojsonschema.NewBytesLoader(content)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{Message: "schema validation failed during load", Cause: err}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}

// LoadResume reads a resume JSON file, validates it against the schema, and
// decodes it into a resume document. Structural invariants the schema cannot
// express are re-checked by the document's own Validate.
func LoadResume(path string) (*types.Resume, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resume file %s: %w", path, err)
	}

	if err := ValidateResumeJSON(content); err != nil {
		return nil, err
	}

	var resume types.Resume
	if err := json.Unmarshal(content, &resume); err != nil {
		return nil, fmt.Errorf("failed to parse resume file %s: %w", path, err)
	}

	if err := resume.Validate(); err != nil {
		return nil, err
	}

	return &resume, nil
}
