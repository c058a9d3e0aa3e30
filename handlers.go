package hostsdk

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/ports"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/services"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
)

// Host function names exported to WASM guests.
const (
	FuncVerifyProof      = "verify_proof"
	FuncHashData         = "hash_data"
	FuncCurrentTimestamp = "current_timestamp"
)

// VerifyProofRequest is the guest payload for verify_proof.
// Record carries the encoded proof record; Input and Output are the raw
// bytes whose integrity the record asserts.
type VerifyProofRequest struct {
	Record json.RawMessage `json:"record"`
	Input  []byte          `json:"input"`
	Output []byte          `json:"output"`
}

// VerifyProofResponse is the verify_proof result.
type VerifyProofResponse struct {
	Verified bool `json:"verified"`
}

// HashDataRequest is the guest payload for hash_data.
type HashDataRequest struct {
	Data []byte `json:"data"`
}

// HashDataResponse carries the canonical digest of the hashed bytes.
type HashDataResponse struct {
	Digest string `json:"digest"`
}

// CurrentTimestampResponse carries the host clock reading.
type CurrentTimestampResponse struct {
	TimestampMillis uint64 `json:"timestamp_ms"`
}

// VerifyProofHandler returns the verify_proof host function bound to a
// verifier.
//
// A record that fails verification yields {"verified":false}; a record
// that cannot even be decoded yields an error, so guests can tell the
// two outcomes apart.
func VerifyProofHandler(v *services.Verifier) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req VerifyProofRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("decode verify_proof request: %w", err)
		}

		ok, err := v.VerifyEncoded(req.Record, req.Input, req.Output)
		if err != nil {
			return nil, err
		}
		return json.Marshal(VerifyProofResponse{Verified: ok})
	}
}

// HashDataHandler returns the hash_data host function, exposing the
// protocol's digest algorithm to guests.
func HashDataHandler() ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req HashDataRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, fmt.Errorf("decode hash_data request: %w", err)
		}
		return json.Marshal(HashDataResponse{
			Digest: values.Compute(req.Data).String(),
		})
	}
}

// CurrentTimestampHandler returns the current_timestamp host function.
func CurrentTimestampHandler(clock ports.Clock) ByteHandler {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		return json.Marshal(CurrentTimestampResponse{TimestampMillis: clock.Now()})
	}
}

// NewDefaultRegistry builds a registry with the protocol's host functions
// bound to the given verifier, plus panic recovery.
func NewDefaultRegistry(v *services.Verifier, opts ...RegistryOption) (*HandlerRegistry, error) {
	base := []RegistryOption{
		WithMiddleware(PanicRecoveryMiddleware()),
		WithHandler(FuncVerifyProof, VerifyProofHandler(v)),
		WithHandler(FuncHashData, HashDataHandler()),
		WithHandler(FuncCurrentTimestamp, CurrentTimestampHandler(nil)),
	}
	return NewRegistry(append(base, opts...)...)
}
