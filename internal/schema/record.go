package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Record maps field names to extracted values. A nil value means the field
// was present in the document payload but carried null; an absent key means
// the normalizer omitted it. Both count as "no value" for validation.
//
// Records are never mutated after creation; any correction reissues a new
// record. Keys are always a subset of the owning schema's field names;
// Conform enforces that at the trust boundary.
type Record map[string]*string

// Get returns the value for name. ok is false when the key is absent or null.
func (r Record) Get(name string) (string, bool) {
	v, present := r[name]
	if !present || v == nil {
		return "", false
	}
	return *v, true
}

// Has reports whether the key is present at all (null included).
func (r Record) Has(name string) bool {
	_, present := r[name]
	return present
}

// Clone returns a deep copy, so a stage can hand its output on without
// sharing mutable state.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		if v == nil {
			out[k] = nil
			continue
		}
		s := *v
		out[k] = &s
	}
	return out
}

// Keys returns the present keys sorted, for deterministic logging.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Conform filters a decoded payload into a Record that honors the schema:
// unknown keys are dropped (never passed through), scalar values are
// coerced to strings, nulls survive as nulls, and anything non-scalar is
// discarded. The second return lists what was dropped, for logging.
func Conform(raw map[string]any, s *FieldSchema) (Record, []string) {
	rec := make(Record, len(raw))
	var dropped []string

	for k, v := range raw {
		if _, known := s.Lookup(k); !known {
			dropped = append(dropped, k+"(unknown)")
			continue
		}
		switch t := v.(type) {
		case nil:
			rec[k] = nil
		case string:
			val := strings.TrimSpace(t)
			rec[k] = &val
		case float64:
			var val string
			if t == float64(int64(t)) {
				val = strconv.FormatInt(int64(t), 10)
			} else {
				val = strconv.FormatFloat(t, 'f', -1, 64)
			}
			rec[k] = &val
		case bool:
			val := strconv.FormatBool(t)
			rec[k] = &val
		default:
			// nested object/array → not a field value
			dropped = append(dropped, fmt.Sprintf("%s(type)", k))
		}
	}
	sort.Strings(dropped)
	return rec, dropped
}
