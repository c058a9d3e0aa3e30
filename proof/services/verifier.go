package services

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/zkinfer-dev/zkinfer-host-sdk/parser"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/entities"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/ports"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
)

// DefaultMaxAgeMillis is the protocol's freshness window: records older than
// one hour are rejected.
const DefaultMaxAgeMillis uint64 = 3_600_000

// Verifier decides trust in a proof record for given raw input/output bytes,
// bound to one model identity.
//
// A Verifier holds no mutable per-call state; one instance may be shared
// across goroutines.
type Verifier struct {
	model        values.Digest
	clock        ports.Clock
	parser       parser.RecordParser
	logger       *slog.Logger
	maxAgeMillis uint64
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithClock sets the time source for freshness checks.
func WithClock(c ports.Clock) VerifierOption {
	return func(v *Verifier) { v.clock = c }
}

// WithRecordParser sets the parser used by VerifyEncoded.
func WithRecordParser(p parser.RecordParser) VerifierOption {
	return func(v *Verifier) { v.parser = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) VerifierOption {
	return func(v *Verifier) { v.logger = l }
}

// WithMaxAge overrides the freshness window. Zero keeps the protocol default.
func WithMaxAge(d time.Duration) VerifierOption {
	return func(v *Verifier) {
		if d > 0 {
			v.maxAgeMillis = uint64(d.Milliseconds())
		}
	}
}

// NewVerifier creates a verifier bound to the expected model digest.
func NewVerifier(model values.Digest, opts ...VerifierOption) *Verifier {
	v := &Verifier{
		model:        model,
		clock:        ports.SystemClock{},
		parser:       parser.NewJSONRecordParser(),
		logger:       slog.Default(),
		maxAgeMillis: DefaultMaxAgeMillis,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// BoundModel returns the model digest the verifier is bound to.
func (v *Verifier) BoundModel() values.Digest {
	return v.model
}

// Verify evaluates the verification protocol against a record and the raw
// bytes being checked, in order:
//
//  1. Model binding: the record must be bound to this verifier's model.
//  2. Input integrity: the input bytes must hash to the recorded input digest.
//  3. Output integrity: same on the output side.
//  4. Freshness: the record's age must not exceed the window (exclusive bound).
//  5. Validity flag: the external proving process must have asserted validity.
//
// Any failing check yields false. Mismatches are domain outcomes, never
// errors; a well-formed record cannot make Verify fail exceptionally.
func (v *Verifier) Verify(record *entities.ProofRecord, inputBytes, outputBytes []byte) bool {
	if record == nil {
		v.logger.Debug("proof rejected: nil record", "model", v.model.Short())
		return false
	}

	if !record.ModelHash().Equals(v.model) {
		v.logger.Debug("proof rejected: model binding mismatch",
			"expected", v.model.Short(),
			"got", record.ModelHash().Short(),
			"proof", record.ProofHash())
		return false
	}

	if !values.Compute(inputBytes).Equals(record.InputHash()) {
		v.logger.Debug("proof rejected: input hash mismatch",
			"model", v.model.Short(),
			"proof", record.ProofHash())
		return false
	}

	if !values.Compute(outputBytes).Equals(record.OutputHash()) {
		v.logger.Debug("proof rejected: output hash mismatch",
			"model", v.model.Short(),
			"proof", record.ProofHash())
		return false
	}

	age := record.Age(v.clock.Now())
	if age > v.maxAgeMillis {
		v.logger.Debug("proof rejected: stale record",
			"model", v.model.Short(),
			"age_ms", age,
			"max_age_ms", v.maxAgeMillis)
		return false
	}

	if !record.Verified() {
		v.logger.Debug("proof rejected: prover did not assert validity",
			"model", v.model.Short(),
			"proof", record.ProofHash())
		return false
	}

	return true
}

// VerifyEncoded decodes an encoded record and verifies it.
// Malformed input surfaces as an explicit parse error so callers can tell
// "not even a record" apart from "a record that must not be trusted".
func (v *Verifier) VerifyEncoded(encoded, inputBytes, outputBytes []byte) (bool, error) {
	record, err := v.parser.Parse(encoded)
	if err != nil {
		return false, err
	}
	return v.Verify(record, inputBytes, outputBytes), nil
}

// Info returns a human-readable description of the verifier.
func (v *Verifier) Info() string {
	return fmt.Sprintf(
		"proof verifier for model %s...\nchecks: model binding, I/O integrity, freshness, validity flag",
		v.model.Short(),
	)
}
