package llm

import (
	"log/slog"

	"github.com/mkalu-dev/kyc-audit/internal/schema"
)

// SanitizeToRecord conforms a decoded model payload to the schema: unknown
// keys dropped, scalars coerced to strings, nulls preserved. Dropped keys
// are logged so hallucinated fields leave a trace in the audit log.
func SanitizeToRecord(payload map[string]any, s *schema.FieldSchema, logger *slog.Logger) (schema.Record, []string) {
	if logger == nil {
		logger = slog.Default()
	}
	rec, dropped := schema.Conform(payload, s)
	if len(dropped) > 0 {
		logger.Warn("llm.normalize.sanitize", "dropped", dropped)
	}
	return rec, dropped
}
