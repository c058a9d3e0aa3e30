package entities

import (
	"fmt"
	"time"
)

// Pinfile is an aggregate root for reproducible model-digest pinning.
// It guarantees that a deployment keeps verifying proofs against the same
// model identity it first trusted.
//
// Invariants:
// - Each model entry must have a digest
// - Generated timestamp must be set when entries exist
type Pinfile struct {
	Generated time.Time
	Models    map[string]ModelPin
	Version   int
}

// ModelPin is a value object representing a pinned model identity.
// Immutable after creation.
type ModelPin struct {
	PinnedAt     time.Time
	LastVerified time.Time
	Requested    string // tag or constraint the pin was created from
	Resolved     string // exact tag that was resolved
	Source       string // bundle reference the model digest came from
	Digest       string // canonical 0x-prefixed model digest
}

// NewPinfile creates a new pinfile with the current version.
func NewPinfile() *Pinfile {
	return &Pinfile{
		Version:   1,
		Generated: time.Now().UTC(),
		Models:    make(map[string]ModelPin),
	}
}

// AddModel adds a model pin entry.
// Returns error if digest is empty (invariant enforcement).
func (p *Pinfile) AddModel(name string, pin ModelPin) error {
	if pin.Digest == "" {
		return fmt.Errorf("model %q: digest is required", name)
	}
	if p.Models == nil {
		p.Models = make(map[string]ModelPin)
	}
	p.Models[name] = pin
	return nil
}

// GetModel retrieves a model pin entry by name.
// Returns nil if not found.
func (p *Pinfile) GetModel(name string) *ModelPin {
	if p.Models == nil {
		return nil
	}
	if pin, ok := p.Models[name]; ok {
		return &pin
	}
	return nil
}

// Validate checks pinfile invariants.
func (p *Pinfile) Validate() error {
	if p.ModelCount() > 0 && p.Generated.IsZero() {
		return fmt.Errorf("generated timestamp is required")
	}
	for name, pin := range p.Models {
		if pin.Digest == "" {
			return fmt.Errorf("model %q: digest is required", name)
		}
	}
	return nil
}

// ModelCount returns the number of pinned models.
func (p *Pinfile) ModelCount() int {
	return len(p.Models)
}
