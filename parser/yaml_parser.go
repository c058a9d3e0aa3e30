package parser

import (
	"gopkg.in/yaml.v3"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/dto"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/entities"
)

// YAMLRecordParser implements RecordParser for YAML, used for records kept
// in configuration trees rather than on the wire.
type YAMLRecordParser struct{}

// NewYAMLRecordParser creates a YAMLRecordParser.
func NewYAMLRecordParser() *YAMLRecordParser {
	return &YAMLRecordParser{}
}

// Parse unmarshals YAML record bytes into a ProofRecord.
func (p *YAMLRecordParser) Parse(data []byte) (*entities.ProofRecord, error) {
	var wire dto.ProofRecordDTO
	if err := yaml.Unmarshal(data, &wire); err != nil {
		return nil, &entities.RecordParseError{Format: "yaml", Err: err}
	}

	record, err := wire.ToEntity()
	if err != nil {
		return nil, &entities.RecordParseError{Format: "yaml", Err: err}
	}
	return record, nil
}
