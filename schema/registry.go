// Package schema manages the JSON Schemas for the SDK's wire formats.
package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/invopop/jsonschema"
)

// RecordKind is the schema kind for the proof record wire format.
const RecordKind = "proof_record"

// Registry holds generated JSON Schemas keyed by kind.
type Registry struct {
	schemas   map[string]string
	mu        sync.RWMutex
	reflector *jsonschema.Reflector
}

// NewRegistry creates a schema registry.
func NewRegistry() *Registry {
	r := &Registry{
		schemas:   make(map[string]string),
		reflector: new(jsonschema.Reflector),
	}
	r.reflector.ExpandedStruct = true
	return r
}

// Register adds a schema for a kind.
// model can be a Go struct (to generate the schema via reflection), a raw
// JSON schema string, raw bytes, or a schema map.
func (r *Registry) Register(kind string, model any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[kind]; exists {
		return fmt.Errorf("schema kind already registered: %s", kind)
	}

	schemaStr, err := r.render(model)
	if err != nil {
		return err
	}
	r.schemas[kind] = schemaStr
	return nil
}

func (r *Registry) render(model any) (string, error) {
	switch v := model.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to marshal schema map: %w", err)
		}
		return string(b), nil
	default:
		s := r.reflector.Reflect(model)
		b, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal generated schema: %w", err)
		}
		return string(b), nil
	}
}

// GetSchema retrieves the JSON Schema for a kind.
func (r *Registry) GetSchema(kind string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.schemas[kind]
	return s, ok
}

// List returns all registered schema kinds.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		kinds = append(kinds, k)
	}
	return kinds
}
