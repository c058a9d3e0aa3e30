package ports

import (
	"context"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/entities"
)

// PinfileRepository persists model-digest pinfiles.
type PinfileRepository interface {
	// Load reads a pinfile from path.
	// Returns (nil, nil) if the file does not exist.
	Load(ctx context.Context, path string) (*entities.Pinfile, error)

	// Save writes a pinfile to path atomically.
	Save(ctx context.Context, path string, pinfile *entities.Pinfile) error
}
