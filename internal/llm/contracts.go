package llm

import (
	"context"

	"github.com/mkalu-dev/kyc-audit/internal/schema"
)

// NormalizeRequest carries one document's OCR text plus the target schema.
type NormalizeRequest struct {
	RawText       string // may be empty: OCR found nothing, still a valid input
	Schema        *schema.FieldSchema
	FilenameHint  string
	DocumentTypes []string // allowed labels for a document_type field, if any
}

// FieldNormalizer is Stage 2: raw text -> structured record. The returned
// record's keys are always a subset of the schema's field names; the raw
// JSON the model produced is returned alongside for audit logging.
type FieldNormalizer interface {
	Normalize(ctx context.Context, req NormalizeRequest) (schema.Record, []byte /*rawJSON*/, error)
}
