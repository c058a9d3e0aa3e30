package policy

import (
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Ensure the default implementation satisfies the interface.
var _ Policy = (*VerificationPolicy)(nil)

// VerificationPolicy is the default Policy implementation.
//
// An empty AllowedModels list allows every model. Patterns are doublestar
// globs, so "sentiment-*" covers a model family and "**" covers everything.
type VerificationPolicy struct {
	allowedModels      []string
	requireAttestation bool
	maxAge             time.Duration
	denialHandler      DenialHandler
}

// PolicyOption configures a VerificationPolicy.
type PolicyOption func(*VerificationPolicy)

// WithAllowedModels restricts verification to models matching one of the
// given doublestar patterns.
func WithAllowedModels(patterns ...string) PolicyOption {
	return func(p *VerificationPolicy) { p.allowedModels = patterns }
}

// WithRequireAttestation makes bundle attestation mandatory.
func WithRequireAttestation(required bool) PolicyOption {
	return func(p *VerificationPolicy) { p.requireAttestation = required }
}

// WithMaxAge caps the accepted proof record age. Zero means no policy cap.
func WithMaxAge(maxAge time.Duration) PolicyOption {
	return func(p *VerificationPolicy) { p.maxAge = maxAge }
}

// WithDenialHandler sets the handler invoked on denied checks.
func WithDenialHandler(h DenialHandler) PolicyOption {
	return func(p *VerificationPolicy) { p.denialHandler = h }
}

// NewPolicy creates a VerificationPolicy with the given options.
func NewPolicy(opts ...PolicyOption) *VerificationPolicy {
	p := &VerificationPolicy{
		denialHandler: &StderrDenialHandler{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckModel reports whether the model may be verified, notifying the
// denial handler on rejection.
func (p *VerificationPolicy) CheckModel(name string) bool {
	if p.EvaluateModel(name) {
		return true
	}
	p.denialHandler.OnDenial("model", name, "model does not match any allowed pattern")
	return false
}

// EvaluateModel reports whether the model may be verified, without side effects.
func (p *VerificationPolicy) EvaluateModel(name string) bool {
	if len(p.allowedModels) == 0 {
		return true
	}
	for _, pattern := range p.allowedModels {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			// Malformed patterns never match.
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// CheckAge reports whether a record of the given age is acceptable,
// notifying the denial handler on rejection.
func (p *VerificationPolicy) CheckAge(age time.Duration) bool {
	if p.EvaluateAge(age) {
		return true
	}
	p.denialHandler.OnDenial("age", age, "proof record exceeds maximum age")
	return false
}

// EvaluateAge reports whether a record of the given age is acceptable,
// without side effects.
func (p *VerificationPolicy) EvaluateAge(age time.Duration) bool {
	if p.maxAge <= 0 {
		return true
	}
	return age <= p.maxAge
}

// RequiresAttestation reports whether bundle attestation is mandatory.
func (p *VerificationPolicy) RequiresAttestation() bool {
	return p.requireAttestation
}

// EffectiveMaxAge returns the policy's age cap, or fallback when the
// policy sets none.
func (p *VerificationPolicy) EffectiveMaxAge(fallback time.Duration) time.Duration {
	if p.maxAge > 0 {
		return p.maxAge
	}
	return fallback
}
