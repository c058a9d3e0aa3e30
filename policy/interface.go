// Package policy enforces verification policy against proof bundles:
// which models may run, whether attestation is mandatory, and how old
// a proof record may be.
package policy

import "time"

// Policy gates proof bundles before verification runs.
type Policy interface {
	CheckModel(name string) bool
	CheckAge(age time.Duration) bool

	// Evaluate methods return the decision without side effects (like logging denials).
	EvaluateModel(name string) bool
	EvaluateAge(age time.Duration) bool

	RequiresAttestation() bool
	EffectiveMaxAge(fallback time.Duration) time.Duration
}

// DenialHandler is called when a policy check denies a request.
type DenialHandler interface {
	// OnDenial is called when a policy check is denied.
	OnDenial(kind string, request interface{}, reason string)
}
