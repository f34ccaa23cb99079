package report_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkalu-dev/kyc-audit/internal/report"
	"github.com/mkalu-dev/kyc-audit/internal/schema"
	"github.com/mkalu-dev/kyc-audit/internal/validate"
)

func strptr(s string) *string { return &s }

func testSchema(t *testing.T) *schema.FieldSchema {
	t.Helper()
	s, err := schema.New(
		schema.Field{Name: "name", Kind: schema.Text, Required: true},
		schema.Field{Name: "dob", Kind: schema.Date, Required: true},
		schema.Field{Name: "id_number", Kind: schema.Text, Required: true},
	)
	require.NoError(t, err)
	return s
}

func TestGenerate_CleanPass(t *testing.T) {
	s := testSchema(t)
	rec := schema.Record{
		"name":      strptr("Jane Doe"),
		"dob":       strptr("1990-01-02"),
		"id_number": strptr("A1234567"),
	}

	out := report.Generate(s, rec, nil)

	assert.Contains(t, out, "name: Jane Doe")
	assert.Contains(t, out, "dob: 1990-01-02")
	assert.Contains(t, out, "All required fields present and correctly formatted.")
	assert.Contains(t, out, "Verdict: passed")
	assert.NotContains(t, out, "Problems found")
}

func TestGenerate_WithFindings(t *testing.T) {
	s := testSchema(t)
	rec := schema.Record{
		"name":      strptr("Jane Doe"),
		"dob":       nil,
		"id_number": strptr("A1234567"),
	}
	findings := validate.Result{
		{Field: "dob", Kind: validate.Missing, Detail: "required field absent"},
	}

	out := report.Generate(s, rec, findings)

	assert.Contains(t, out, "dob: null")
	assert.Contains(t, out, "- dob: required field absent (missing)")
	assert.Contains(t, out, "Verdict: failed")
}

func TestGenerate_OnlyPresentFieldsListed(t *testing.T) {
	s := testSchema(t)
	rec := schema.Record{"name": strptr("Jane Doe")}

	out := report.Generate(s, rec, nil)

	assert.Contains(t, out, "name: Jane Doe")
	assert.NotContains(t, out, "id_number:")
}

// Identical inputs always produce identical report text.
func TestGenerate_Deterministic(t *testing.T) {
	s := testSchema(t)
	rec := schema.Record{
		"name":      strptr("Jane Doe"),
		"dob":       nil,
		"id_number": strptr("bad"),
	}
	findings := validate.Result{
		{Field: "dob", Kind: validate.Missing, Detail: "required field absent"},
		{Field: "id_number", Kind: validate.Malformed, Detail: "expected pattern ^[A-Z][0-9]{7}$"},
	}

	first := report.Generate(s, rec, findings)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, report.Generate(s, rec, findings))
	}
}

func TestVerdict(t *testing.T) {
	assert.Equal(t, "passed", report.Verdict(nil))
	assert.Equal(t, "failed", report.Verdict(validate.Result{{Field: "x", Kind: validate.Missing}}))
}

func TestAppendKYC(t *testing.T) {
	base := "Verdict: passed\n"

	out := report.AppendKYC(base, "pending_review", []string{"issue one", "issue two"})
	assert.True(t, strings.HasPrefix(out, base))
	assert.Contains(t, out, "KYC Decision: pending_review")
	assert.Contains(t, out, "KYC Issues: issue one; issue two")

	clean := report.AppendKYC(base, "verified", nil)
	assert.Contains(t, clean, "KYC Decision: verified")
	assert.NotContains(t, clean, "KYC Issues")
}
