// Package report renders the terminal audit artifact: a human-readable
// summary of extracted values and validation findings. Deterministic given
// identical inputs, which reproducible audit trails depend on.
package report

import (
	"strings"

	"github.com/mkalu-dev/kyc-audit/internal/schema"
	"github.com/mkalu-dev/kyc-audit/internal/validate"
)

const (
	VerdictPassed = "passed"
	VerdictFailed = "failed"
)

// Generate lists every field present in the record (schema order, so output
// is stable), appends one line per finding, and closes with the verdict.
func Generate(s *schema.FieldSchema, rec schema.Record, findings validate.Result) string {
	var b strings.Builder
	b.WriteString("Document audit\n")

	for _, f := range s.Fields() {
		if !rec.Has(f.Name) {
			continue
		}
		b.WriteString("  ")
		b.WriteString(f.Name)
		b.WriteString(": ")
		if v, ok := rec.Get(f.Name); ok {
			b.WriteString(v)
		} else {
			b.WriteString("null")
		}
		b.WriteString("\n")
	}

	if findings.OK() {
		b.WriteString("All required fields present and correctly formatted.\n")
	} else {
		b.WriteString("Problems found:\n")
		for _, f := range findings {
			b.WriteString("  - ")
			b.WriteString(f.Field)
			b.WriteString(": ")
			b.WriteString(f.Detail)
			b.WriteString(" (")
			b.WriteString(string(f.Kind))
			b.WriteString(")\n")
		}
	}

	b.WriteString("Verdict: ")
	b.WriteString(Verdict(findings))
	b.WriteString("\n")
	return b.String()
}

// Verdict is "passed" iff there are no findings.
func Verdict(findings validate.Result) string {
	if findings.OK() {
		return VerdictPassed
	}
	return VerdictFailed
}

// AppendKYC extends a report with the KYC decision and its issues.
func AppendKYC(rpt string, decision string, issues []string) string {
	var b strings.Builder
	b.WriteString(rpt)
	b.WriteString("KYC Decision: ")
	b.WriteString(decision)
	b.WriteString("\n")
	if len(issues) > 0 {
		b.WriteString("KYC Issues: ")
		b.WriteString(strings.Join(issues, "; "))
		b.WriteString("\n")
	}
	return b.String()
}
