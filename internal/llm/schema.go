package llm

import (
	"github.com/mkalu-dev/kyc-audit/internal/schema"
)

// BuildJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the
// normalizer's output shape, as a generic map. It constrains SHAPE only:
// every field is string-or-null and unknown keys are rejected. Format rules
// (date grammar, id patterns) are not encoded here: a badly
// formatted value must flow through to the validator as a finding, not kill
// the normalization stage.
func BuildJSONSchema(s *schema.FieldSchema) map[string]any {
	props := make(map[string]any, s.Len())
	for _, f := range s.Fields() {
		props[f.Name] = map[string]any{"type": []string{"string", "null"}}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}
