package filesystem

import (
	"time"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/entities"
)

// Pinfile represents the YAML structure of a pinfile.
type Pinfile struct {
	Generated time.Time           `yaml:"generated"`
	Models    map[string]ModelPin `yaml:"models"`
	Version   int                 `yaml:"pinfile_version"`
}

// ModelPin represents a pinned model identity in YAML.
type ModelPin struct {
	PinnedAt     time.Time `yaml:"pinned_at,omitempty"`
	LastVerified time.Time `yaml:"last_verified,omitempty"`
	Requested    string    `yaml:"requested"`
	Resolved     string    `yaml:"resolved"`
	Source       string    `yaml:"source"`
	Digest       string    `yaml:"digest"`
}

// ToEntity converts the pinfile to a domain entity.
func (p *Pinfile) ToEntity() *entities.Pinfile {
	entity := &entities.Pinfile{
		Generated: p.Generated,
		Version:   p.Version,
		Models:    make(map[string]entities.ModelPin, len(p.Models)),
	}

	for name, pin := range p.Models {
		entity.Models[name] = entities.ModelPin{
			PinnedAt:     pin.PinnedAt,
			LastVerified: pin.LastVerified,
			Requested:    pin.Requested,
			Resolved:     pin.Resolved,
			Source:       pin.Source,
			Digest:       pin.Digest,
		}
	}

	return entity
}

// FromEntity converts a domain pinfile to YAML representation.
func FromEntity(entity *entities.Pinfile) *Pinfile {
	if entity == nil {
		return nil
	}

	p := &Pinfile{
		Generated: entity.Generated,
		Version:   entity.Version,
		Models:    make(map[string]ModelPin, len(entity.Models)),
	}

	for name, pin := range entity.Models {
		p.Models[name] = ModelPin{
			PinnedAt:     pin.PinnedAt,
			LastVerified: pin.LastVerified,
			Requested:    pin.Requested,
			Resolved:     pin.Resolved,
			Source:       pin.Source,
			Digest:       pin.Digest,
		}
	}

	return p
}
