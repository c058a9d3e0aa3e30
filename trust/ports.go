// Package trust decides whether a model identity may be trusted:
// stored grants first, interactive approval for the rest.
package trust

import (
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
	"github.com/zkinfer-dev/zkinfer-host-sdk/trust/grantstore"
)

// Request describes a model identity awaiting a trust decision.
type Request struct {
	Model  string        // model name from bundle metadata
	Digest values.Digest // model digest carried by the proof record
	Origin string        // bundle reference the record came from, for display
}

// Prompter asks a human to approve trusting a model identity.
type Prompter interface {
	// IsInteractive reports whether prompting is possible at all.
	IsInteractive() bool

	// PromptForModel asks the user to trust a model identity.
	// always=true means the decision should be persisted.
	PromptForModel(req Request) (granted bool, always bool, err error)
}

// GrantStore persists trust grants between runs.
type GrantStore interface {
	Load() (*grantstore.GrantSet, error)
	Save(*grantstore.GrantSet) error
}
