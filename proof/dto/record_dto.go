package dto

import (
	"fmt"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/entities"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/values"
)

// ProofRecordDTO is the wire form of a proof record. Field names and formats
// are fixed by the verification protocol and shared with its other
// implementations: hash fields are 0x-prefixed 64-character lowercase hex,
// timestamp is non-negative milliseconds since the epoch.
//
// The proof_hash field is opaque and carried as-is; only the model, input
// and output hashes must be canonical digests.
type ProofRecordDTO struct {
	ModelHash  string `json:"model_hash"  yaml:"model_hash"  jsonschema:"required,pattern=^0x[0-9a-f]{64}$"`
	ProofHash  string `json:"proof_hash"  yaml:"proof_hash"  jsonschema:"required"`
	InputHash  string `json:"input_hash"  yaml:"input_hash"  jsonschema:"required,pattern=^0x[0-9a-f]{64}$"`
	OutputHash string `json:"output_hash" yaml:"output_hash" jsonschema:"required,pattern=^0x[0-9a-f]{64}$"`
	Timestamp  uint64 `json:"timestamp"   yaml:"timestamp"   jsonschema:"required,minimum=0"`
	Verified   bool   `json:"verified"    yaml:"verified"`
}

// ToEntity converts the wire form into a proof record entity,
// validating digest formats.
func (d *ProofRecordDTO) ToEntity() (*entities.ProofRecord, error) {
	modelHash, err := values.ParseDigest(d.ModelHash)
	if err != nil {
		return nil, fmt.Errorf("model_hash: %w", err)
	}
	inputHash, err := values.ParseDigest(d.InputHash)
	if err != nil {
		return nil, fmt.Errorf("input_hash: %w", err)
	}
	outputHash, err := values.ParseDigest(d.OutputHash)
	if err != nil {
		return nil, fmt.Errorf("output_hash: %w", err)
	}

	return entities.NewProofRecord(
		modelHash,
		d.ProofHash,
		inputHash,
		outputHash,
		d.Timestamp,
		d.Verified,
	), nil
}

// FromEntity converts a proof record entity into its wire form.
func FromEntity(r *entities.ProofRecord) ProofRecordDTO {
	return ProofRecordDTO{
		ModelHash:  r.ModelHash().String(),
		ProofHash:  r.ProofHash(),
		InputHash:  r.InputHash().String(),
		OutputHash: r.OutputHash().String(),
		Timestamp:  r.Timestamp(),
		Verified:   r.Verified(),
	}
}
