package parser

import (
	"encoding/json"

	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/dto"
	"github.com/zkinfer-dev/zkinfer-host-sdk/proof/entities"
)

// JSONRecordParser implements RecordParser for JSON, the protocol's
// canonical encoding.
type JSONRecordParser struct {
	validator PayloadValidator
}

// JSONParserOption configures a JSONRecordParser.
type JSONParserOption func(*JSONRecordParser)

// WithValidator enables schema validation of the payload before decoding.
func WithValidator(v PayloadValidator) JSONParserOption {
	return func(p *JSONRecordParser) { p.validator = v }
}

// NewJSONRecordParser creates a JSONRecordParser.
func NewJSONRecordParser(opts ...JSONParserOption) *JSONRecordParser {
	p := &JSONRecordParser{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse unmarshals JSON record bytes into a ProofRecord.
func (p *JSONRecordParser) Parse(data []byte) (*entities.ProofRecord, error) {
	if p.validator != nil {
		if err := p.validator.Validate(data); err != nil {
			return nil, &entities.RecordParseError{Format: "json", Err: err}
		}
	}

	var wire dto.ProofRecordDTO
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, &entities.RecordParseError{Format: "json", Err: err}
	}

	record, err := wire.ToEntity()
	if err != nil {
		return nil, &entities.RecordParseError{Format: "json", Err: err}
	}
	return record, nil
}
