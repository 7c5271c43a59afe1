package projects

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrValidation can be used with errors.Is to detect schema failures.
var ErrValidation = errors.New("validation failed")

// Validator checks incoming project payloads against the project JSON schema
// before anything touches the store.
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles schemas/project.v1.json from schemaDir.
func NewValidator(schemaDir string) (*Validator, error) {
	path := filepath.Join(schemaDir, "project.v1.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	schema, err := jsonschema.CompileString("https://bau-connect.at/schemas/project.v1", string(data))
	if err != nil {
		return nil, fmt.Errorf("compile project schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate hard-rejects payloads that do not match the schema.
func (v *Validator) Validate(raw json.RawMessage) error {
	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}
