// Package proof orchestrates proof bundle verification: pull from a
// registry, gate by policy and trust, then run the verification protocol.
package proof

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/zkinfer-dev/zkinfer-host-sdk/parser"
	"github.com/zkinfer-dev/zkinfer-host-sdk/policy"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/entities"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/ports"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/resolvers"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/services"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
	"github.com/zkinfer-dev/zkinfer-host-sdk/schema"
	"github.com/zkinfer-dev/zkinfer-host-sdk/trust"
)

// ProofService is the high-level entry point for verifying published
// proof bundles end to end.
type ProofService struct {
	registry   ports.BundleRegistry
	resolver   resolvers.TagResolver
	attestor   ports.AttestationVerifier
	gatekeeper *trust.Gatekeeper
	policy     policy.Policy
	parser     parser.RecordParser
	logger     *slog.Logger
	trustAll   bool
}

// ServiceOption configures a ProofService.
type ServiceOption func(*ProofService)

// WithTagResolver sets the resolver for tag constraints like "latest".
func WithTagResolver(r resolvers.TagResolver) ServiceOption {
	return func(s *ProofService) { s.resolver = r }
}

// WithAttestor sets the bundle attestation verifier.
func WithAttestor(a ports.AttestationVerifier) ServiceOption {
	return func(s *ProofService) { s.attestor = a }
}

// WithGatekeeper sets the model trust gatekeeper.
func WithGatekeeper(g *trust.Gatekeeper) ServiceOption {
	return func(s *ProofService) { s.gatekeeper = g }
}

// WithPolicy sets the verification policy.
func WithPolicy(p policy.Policy) ServiceOption {
	return func(s *ProofService) { s.policy = p }
}

// WithParser sets the record parser.
func WithParser(p parser.RecordParser) ServiceOption {
	return func(s *ProofService) { s.parser = p }
}

// WithServiceLogger sets the logger.
func WithServiceLogger(l *slog.Logger) ServiceOption {
	return func(s *ProofService) { s.logger = l }
}

// WithTrustAll bypasses the trust gatekeeper for every model.
func WithTrustAll(trustAll bool) ServiceOption {
	return func(s *ProofService) { s.trustAll = trustAll }
}

// NewProofService creates a ProofService around a bundle registry.
func NewProofService(registry ports.BundleRegistry, opts ...ServiceOption) *ProofService {
	s := &ProofService{
		registry: registry,
		resolver: resolvers.NewCachedResolver(resolvers.NewSemverResolver()),
		policy:   policy.NewPolicy(),
		parser:   defaultRecordParser(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.gatekeeper == nil {
		s.gatekeeper = trust.NewGatekeeper()
	}
	return s
}

// defaultRecordParser builds a JSON parser with wire-schema validation.
// Schema compilation can only fail on a broken DTO definition, in which
// case plain decoding still enforces the digest formats.
func defaultRecordParser() parser.RecordParser {
	v, err := schema.NewRecordValidator()
	if err != nil {
		return parser.NewJSONRecordParser()
	}
	return parser.NewJSONRecordParser(parser.WithValidator(v))
}

// Resolve turns a reference whose tag may be a constraint ("latest",
// ">= 1.2") into one carrying the exact tag the registry serves.
func (s *ProofService) Resolve(ctx context.Context, ref values.BundleReference) (values.BundleReference, error) {
	if s.resolver == nil {
		return ref, nil
	}

	tags, err := s.registry.Tags(ctx, ref)
	if err != nil {
		return values.BundleReference{}, fmt.Errorf("listing tags for %s: %w", ref.Repository(), err)
	}

	resolved, err := s.resolver.Resolve(ref.Tag(), tags)
	if err != nil {
		return values.BundleReference{}, fmt.Errorf("resolving tag for %s: %w", ref.Repository(), err)
	}

	return ref.WithTag(resolved), nil
}

// VerifyBundle pulls the referenced bundle and runs the full pipeline:
// tag resolution, policy, attestation, record parse, trust, verification.
//
// The returned bool is the verification outcome. Errors are reserved for
// pipeline failures (registry, parse, prompting); a bundle that simply
// fails a check yields (false, nil).
func (s *ProofService) VerifyBundle(
	ctx context.Context,
	ref values.BundleReference,
	expected values.Digest,
	inputBytes, outputBytes []byte,
) (bool, error) {
	resolved, err := s.Resolve(ctx, ref)
	if err != nil {
		return false, err
	}

	bundle, err := s.registry.Pull(ctx, resolved)
	if err != nil {
		return false, fmt.Errorf("pulling bundle %s: %w", resolved.String(), err)
	}

	if !s.policy.CheckModel(bundle.Metadata.Model) {
		s.logger.Info("bundle rejected by policy",
			"model", bundle.Metadata.Model,
			"bundle", resolved.String())
		return false, nil
	}

	if s.policy.RequiresAttestation() {
		if s.attestor == nil {
			return false, fmt.Errorf("policy requires attestation but no attestation verifier is configured")
		}
		result, err := s.attestor.VerifyAttestation(ctx, resolved)
		if err != nil {
			return false, fmt.Errorf("verifying attestation for %s: %w", resolved.String(), err)
		}
		if !result.Verified {
			s.logger.Info("bundle attestation not verified", "bundle", resolved.String())
			return false, nil
		}
	}

	record, err := s.parser.Parse(bundle.Record)
	if err != nil {
		return false, fmt.Errorf("bundle %s: %w", resolved.String(), err)
	}

	authorized, err := s.gatekeeper.Authorize(trust.Request{
		Model:  bundle.Metadata.Model,
		Digest: record.ModelHash(),
		Origin: resolved.String(),
	}, s.trustAll)
	if err != nil {
		return false, err
	}
	if !authorized {
		s.logger.Info("model identity not trusted",
			"model", bundle.Metadata.Model,
			"digest", record.ModelHash().Short())
		return false, nil
	}

	verifier := services.NewVerifier(expected,
		services.WithLogger(s.logger),
		services.WithMaxAge(s.policy.EffectiveMaxAge(0)),
	)
	ok := verifier.Verify(record, inputBytes, outputBytes)

	s.logger.Info("bundle verification finished",
		"bundle", resolved.String(),
		"model", bundle.Metadata.Model,
		"verified", ok)
	return ok, nil
}

// FetchRecord pulls the referenced bundle and returns its parsed record
// without running verification, for callers that inspect records directly.
func (s *ProofService) FetchRecord(ctx context.Context, ref values.BundleReference) (*entities.ProofRecord, error) {
	resolved, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	bundle, err := s.registry.Pull(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("pulling bundle %s: %w", resolved.String(), err)
	}

	record, err := s.parser.Parse(bundle.Record)
	if err != nil {
		return nil, fmt.Errorf("bundle %s: %w", resolved.String(), err)
	}
	return record, nil
}
