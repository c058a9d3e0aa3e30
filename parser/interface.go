// Package parser decodes encoded proof records into domain entities.
package parser

import "github.com/zkinfer-dev/zkinfer-host-sdk/proof/entities"

// RecordParser parses raw record bytes into a ProofRecord.
type RecordParser interface {
	// Parse decodes record bytes. Malformed input yields a
	// *entities.RecordParseError (matching entities.ErrMalformedRecord).
	Parse(data []byte) (*entities.ProofRecord, error)
}

// PayloadValidator validates encoded record bytes against the wire schema
// before decoding. Implemented by schema.Validator.
type PayloadValidator interface {
	Validate(data []byte) error
}
