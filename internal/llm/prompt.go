package llm

import (
	"strings"
)

// BuildSystemPrompt composes the instruction block: strict JSON, schema
// fields only, and the non-negotiable rule that the model must not invent
// values absent from the source text. Hallucinated values are a quality
// defect for downstream validation to catch, not something to paper over.
func BuildSystemPrompt(req NormalizeRequest) string {
	fieldsLine := "Return ONLY valid JSON with exactly these top-level keys: " +
		strings.Join(req.Schema.Names(), ", ") + ". "

	parts := []string{
		"You are a data extraction assistant for identity and financial documents. " +
			"Given OCR text, you clean and normalize it into strict JSON.",
		fieldsLine,
		"Every value must be a string or null. Use null for any field not present in the text.",
		"NEVER invent or guess a value that does not appear in the source text.",
		"Use ISO date format YYYY-MM-DD for dates when derivable; otherwise copy the text as written.",
		"No explanations, no markdown, no keys beyond the list above.",
	}

	if len(req.DocumentTypes) > 0 {
		parts = append(parts, "If a 'document_type' field is requested, it should be one of: "+
			strings.Join(req.DocumentTypes, ", ")+".")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the OCR text with a filename hint. Long OCR dumps
// are truncated; identity documents fit comfortably under the cap.
func BuildUserPrompt(req NormalizeRequest) string {
	var b strings.Builder
	if fn := strings.TrimSpace(req.FilenameHint); fn != "" {
		b.WriteString("Filename: ")
		b.WriteString(fn)
		b.WriteString("\n")
	}
	ocr := strings.TrimSpace(req.RawText)
	b.WriteString("\nOCR text (first ~6k chars):\n")
	if len(ocr) > 6000 {
		b.WriteString(ocr[:6000])
		b.WriteString("\n…(truncated)")
	} else {
		b.WriteString(ocr)
	}
	b.WriteString("\n\nJSON:")
	return b.String()
}
