package dto

import "github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"

// BundleDTO carries a proof bundle pulled from a registry:
// the raw encoded record plus the metadata stored in the artifact config.
type BundleDTO struct {
	Reference values.BundleReference
	Metadata  BundleMetadataDTO
	MediaType string
	Record    []byte
}

// BundleMetadataDTO is the config-layer payload of a proof bundle artifact.
type BundleMetadataDTO struct {
	Model     string `json:"model"`
	Prover    string `json:"prover,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}
