package schema

import (
	"encoding/json"
	"fmt"

	santhosh "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/dto"
)

// Validator validates encoded payloads against a compiled JSON Schema.
// Safe for concurrent use once constructed.
type Validator struct {
	schema *santhosh.Schema
}

// NewRecordValidator compiles the proof record wire schema.
func NewRecordValidator() (*Validator, error) {
	reg := NewRegistry()
	if err := reg.Register(RecordKind, &dto.ProofRecordDTO{}); err != nil {
		return nil, err
	}
	schemaStr, ok := reg.GetSchema(RecordKind)
	if !ok {
		return nil, fmt.Errorf("schema kind not registered: %s", RecordKind)
	}

	compiled, err := santhosh.CompileString(RecordKind+".schema.json", schemaStr)
	if err != nil {
		return nil, fmt.Errorf("compile record schema: %w", err)
	}
	return &Validator{schema: compiled}, nil
}

// Validate checks that data is valid JSON conforming to the schema.
func (v *Validator) Validate(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := v.schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
