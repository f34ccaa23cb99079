// Package validate checks a structured record against its schema. Pure
// functions of their inputs: no external calls, no hidden state, and a
// clean record yields an empty result rather than an error.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/mkalu-dev/kyc-audit/internal/schema"
)

// Kind classifies one finding.
type Kind string

const (
	Missing   Kind = "missing"
	Malformed Kind = "malformed"
)

// Finding is a single validation problem attached to one field.
type Finding struct {
	Field  string `json:"field"`
	Kind   Kind   `json:"kind"`
	Detail string `json:"detail"`
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s (%s)", f.Field, f.Detail, f.Kind)
}

// Result is the ordered list of findings for one record. An empty result
// means the record passes.
type Result []Finding

func (r Result) OK() bool { return len(r) == 0 }

// dateLayouts mirrors the date variants identity documents actually carry:
// ISO first, then common day-first and US forms.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"01/02/2006",
}

const dateDetail = "expected date format YYYY-MM-DD or common variants"

// Validate walks the schema in field order and emits a finding per problem:
// required fields with no non-empty value are missing, present values that
// fail their format expectation are malformed. Record keys outside the
// schema cannot occur (the normalizer conforms its output) and would be
// ignored here regardless, since only schema fields are visited.
func Validate(rec schema.Record, s *schema.FieldSchema) Result {
	var out Result
	for _, f := range s.Fields() {
		v, present := rec.Get(f.Name)
		blank := !present || strings.TrimSpace(v) == ""

		if blank {
			if f.Required {
				out = append(out, Finding{Field: f.Name, Kind: Missing, Detail: "required field absent"})
			}
			continue
		}

		switch f.Kind {
		case schema.Date:
			if !validDate(v) {
				out = append(out, Finding{Field: f.Name, Kind: Malformed, Detail: dateDetail})
			}
		case schema.Pattern:
			if re := s.CompiledPattern(f.Name); re != nil && !re.MatchString(v) {
				out = append(out, Finding{Field: f.Name, Kind: Malformed, Detail: "expected pattern " + f.Pattern})
			}
		}
	}
	return out
}

func validDate(v string) bool {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}
