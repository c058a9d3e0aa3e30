package ports

import (
	"context"
	"time"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
)

// AttestationVerifier verifies cryptographic signatures on published proof
// bundles. It authenticates the bundle envelope only; the record's verified
// flag stays an assertion of the external proving process and is never
// re-derived here.
type AttestationVerifier interface {
	// VerifyAttestation checks the signature of a bundle in the registry.
	VerifyAttestation(ctx context.Context, ref values.BundleReference) (*AttestationResult, error)
}

// AttestationResult contains signature verification details.
type AttestationResult struct {
	SignedAt        time.Time
	Signer          string
	TransparencyLog string
	Certificate     []byte
	Verified        bool
}
