package entities

import (
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
)

// ProofRecord is the aggregate root of the verification bounded context.
// It carries the claim "model M, given input I, produced output O, proven
// valid at time T by the external proving pipeline".
//
// Immutable after construction: all fields are set once and only exposed
// through getters. The proof hash is opaque to this SDK; it identifies the
// underlying proof artifact for audit and logging but is never re-checked
// here.
type ProofRecord struct {
	modelHash  values.Digest
	proofHash  string
	inputHash  values.Digest
	outputHash values.Digest
	timestamp  uint64 // milliseconds since the Unix epoch
	verified   bool
}

// NewProofRecord creates a proof record entity.
func NewProofRecord(
	modelHash values.Digest,
	proofHash string,
	inputHash values.Digest,
	outputHash values.Digest,
	timestamp uint64,
	verified bool,
) *ProofRecord {
	return &ProofRecord{
		modelHash:  modelHash,
		proofHash:  proofHash,
		inputHash:  inputHash,
		outputHash: outputHash,
		timestamp:  timestamp,
		verified:   verified,
	}
}

// ModelHash returns the digest of the model the proof is bound to.
func (r *ProofRecord) ModelHash() values.Digest {
	return r.modelHash
}

// ProofHash returns the opaque identifier of the proof artifact.
func (r *ProofRecord) ProofHash() string {
	return r.proofHash
}

// InputHash returns the digest the prover computed over the claimed input.
func (r *ProofRecord) InputHash() values.Digest {
	return r.inputHash
}

// OutputHash returns the digest the prover computed over the claimed output.
func (r *ProofRecord) OutputHash() values.Digest {
	return r.outputHash
}

// Timestamp returns when the proof was produced, in ms since the epoch.
func (r *ProofRecord) Timestamp() uint64 {
	return r.timestamp
}

// Verified reports whether the external proving process asserted validity.
// This SDK trusts the flag; it never re-derives it.
func (r *ProofRecord) Verified() bool {
	return r.verified
}

// Age returns the record's age in milliseconds relative to now,
// saturating at zero when the timestamp lies in the future.
func (r *ProofRecord) Age(now uint64) uint64 {
	if now < r.timestamp {
		return 0
	}
	return now - r.timestamp
}
