// Package signing verifies signatures on published proof bundles.
package signing

import (
	"context"
	"crypto"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/go-containerregistry/pkg/name"
	"github.com/sigstore/cosign/v2/pkg/cosign"
	"github.com/sigstore/cosign/v2/pkg/oci"
	ociremote "github.com/sigstore/cosign/v2/pkg/oci/remote"
	"github.com/sigstore/sigstore/pkg/fulcioroots"
	"github.com/sigstore/sigstore/pkg/signature"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/ports"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
)

// CosignVerifier implements ports.AttestationVerifier using Cosign.
//
// It authenticates the bundle envelope in the registry. It does NOT touch
// the record's verified flag: whether the underlying proof is sound remains
// an assertion of the external proving process.
type CosignVerifier struct {
	publicKeys  []string
	oidcIssuers []string
}

// NewCosignVerifier creates a Cosign-based attestation verifier.
//
// publicKeys are paths to PEM-encoded public keys; when non-empty the
// verifier runs in key mode and the keys are the trust roots. With no keys
// it runs keyless against Fulcio and Rekor, accepting certificates from the
// given OIDC issuers (GitHub Actions and GitLab CI by default).
func NewCosignVerifier(publicKeys []string, oidcIssuers []string) *CosignVerifier {
	if len(oidcIssuers) == 0 {
		oidcIssuers = []string{
			"https://token.actions.githubusercontent.com",
			"https://gitlab.com",
		}
	}

	return &CosignVerifier{
		publicKeys:  publicKeys,
		oidcIssuers: oidcIssuers,
	}
}

// VerifyAttestation checks the bundle signature.
func (v *CosignVerifier) VerifyAttestation(ctx context.Context, ref values.BundleReference) (*ports.AttestationResult, error) {
	imgRef, err := name.ParseReference(ref.String())
	if err != nil {
		return nil, fmt.Errorf("parse bundle reference %s: %w", ref.String(), err)
	}

	opts := &cosign.CheckOpts{
		RegistryClientOpts: []ociremote.Option{},
	}

	// Public key verification
	if len(v.publicKeys) > 0 {
		return v.verifyWithPublicKeys(ctx, imgRef, opts)
	}

	// Keyless verification (OIDC + Rekor)
	return v.verifyKeyless(ctx, imgRef, opts)
}

func (v *CosignVerifier) verifyWithPublicKeys(
	ctx context.Context,
	imgRef name.Reference,
	opts *cosign.CheckOpts,
) (*ports.AttestationResult, error) {
	// In key mode the key is the trust root; no Fulcio chain or
	// transparency log entry is required.
	opts.IgnoreSCT = true
	opts.IgnoreTlog = true

	var errs []error
	for _, keyPath := range v.publicKeys {
		verifier, err := signature.LoadVerifierFromPEMFile(keyPath, crypto.SHA256)
		if err != nil {
			errs = append(errs, fmt.Errorf("load public key %s: %w", keyPath, err))
			continue
		}
		opts.SigVerifier = verifier

		// First key that validates wins.
		sigs, _, err := cosign.VerifyImageSignatures(ctx, imgRef, opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("verify with key %s: %w", keyPath, err))
			continue
		}
		result := resultFromSignatures(sigs)
		if result.Signer == "" {
			result.Signer = keyPath
		}
		return result, nil
	}
	return nil, fmt.Errorf("no valid signatures found for %s: %w", imgRef.String(), errors.Join(errs...))
}

func (v *CosignVerifier) verifyKeyless(
	ctx context.Context,
	imgRef name.Reference,
	opts *cosign.CheckOpts,
) (*ports.AttestationResult, error) {
	roots, err := fulcioroots.Get()
	if err != nil {
		return nil, fmt.Errorf("load Fulcio roots: %w", err)
	}
	intermediates, err := fulcioroots.GetIntermediates()
	if err != nil {
		return nil, fmt.Errorf("load Fulcio intermediates: %w", err)
	}
	rekorPubs, err := cosign.GetRekorPubs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load Rekor public keys: %w", err)
	}
	ctPubs, err := cosign.GetCTLogPubs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load CT log public keys: %w", err)
	}

	opts.RootCerts = roots
	opts.IntermediateCerts = intermediates
	opts.RekorPubKeys = rekorPubs
	opts.CTLogPubKeys = ctPubs
	opts.Identities = identitiesFromIssuers(v.oidcIssuers)
	opts.IgnoreTlog = false

	sigs, _, err := cosign.VerifyImageSignatures(ctx, imgRef, opts)
	if err != nil {
		return nil, fmt.Errorf("keyless verification of %s: %w", imgRef.String(), err)
	}
	return resultFromSignatures(sigs), nil
}

// identitiesFromIssuers builds Cosign identity matchers accepting any
// subject from the configured OIDC issuers.
func identitiesFromIssuers(issuers []string) []cosign.Identity {
	ids := make([]cosign.Identity, 0, len(issuers))
	for _, issuer := range issuers {
		ids = append(ids, cosign.Identity{Issuer: issuer, SubjectRegExp: ".*"})
	}
	return ids
}

// resultFromSignatures summarizes verified signatures into an attestation
// result: signer identity from the signing certificate, transparency log
// index and integration time from the Rekor bundle when present.
func resultFromSignatures(sigs []oci.Signature) *ports.AttestationResult {
	result := &ports.AttestationResult{Verified: true}
	for _, sig := range sigs {
		if cert, err := sig.Cert(); err == nil && cert != nil {
			result.Certificate = cert.Raw
			if result.Signer == "" && len(cert.EmailAddresses) > 0 {
				result.Signer = cert.EmailAddresses[0]
			}
		}
		if b, err := sig.Bundle(); err == nil && b != nil {
			result.TransparencyLog = strconv.FormatInt(b.Payload.LogIndex, 10)
			result.SignedAt = time.Unix(b.Payload.IntegratedTime, 0).UTC()
		}
	}
	return result
}
