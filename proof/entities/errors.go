package entities

import (
	"errors"
	"fmt"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
)

// Sentinel errors for common error patterns.
// These allow both errors.Is() checks and errors.As() for detailed information.
var (
	// ErrMalformedRecord is returned when an encoded proof record cannot be
	// decoded into the wire schema. A record that decodes but fails
	// verification is NOT an error; that is the false outcome of Verify.
	ErrMalformedRecord = errors.New("malformed proof record")

	// ErrBundleNotFound is returned when a proof bundle cannot be found in
	// the registry.
	ErrBundleNotFound = errors.New("proof bundle not found")

	// ErrIntegrityCheckFailed is returned when a pinned model digest does
	// not match the digest carried by a record.
	ErrIntegrityCheckFailed = errors.New("integrity check failed")
)

// RecordParseError indicates an encoded record did not match the wire schema.
// Format names the encoding that was attempted ("json", "yaml").
type RecordParseError struct {
	Format string
	Err    error
}

func (e *RecordParseError) Error() string {
	return fmt.Sprintf("parse proof record (%s): %v", e.Format, e.Err)
}

func (e *RecordParseError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is() checks.
// This allows: errors.Is(err, entities.ErrMalformedRecord)
func (e *RecordParseError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// BundleNotFoundError indicates the referenced bundle does not exist.
type BundleNotFoundError struct {
	Reference values.BundleReference
}

func (e *BundleNotFoundError) Error() string {
	return fmt.Sprintf("proof bundle not found: %s", e.Reference.String())
}

// Is implements error matching for errors.Is() checks.
func (e *BundleNotFoundError) Is(target error) bool {
	return target == ErrBundleNotFound
}

// IntegrityError indicates a digest mismatch against a pinned expectation.
type IntegrityError struct {
	Expected values.Digest
	Actual   values.Digest
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf(
		"integrity check failed: expected %s, got %s",
		e.Expected.String(),
		e.Actual.String(),
	)
}

// Is implements error matching for errors.Is() checks.
func (e *IntegrityError) Is(target error) bool {
	return target == ErrIntegrityCheckFailed
}
