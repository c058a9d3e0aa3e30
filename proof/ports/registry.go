package ports

import (
	"context"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/dto"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
)

// BundleRegistry abstracts remote storage of proof bundles (OCI).
type BundleRegistry interface {
	// Pull downloads the proof bundle at ref.
	Pull(ctx context.Context, ref values.BundleReference) (*dto.BundleDTO, error)

	// Tags lists the tags available for the referenced bundle name.
	Tags(ctx context.Context, ref values.BundleReference) ([]string, error)
}
