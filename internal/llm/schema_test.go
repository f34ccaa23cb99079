package llm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkalu-dev/kyc-audit/internal/llm"
	"github.com/mkalu-dev/kyc-audit/internal/schema"
)

func testSchema(t *testing.T) *schema.FieldSchema {
	t.Helper()
	s, err := schema.New(
		schema.Field{Name: "name", Kind: schema.Text, Required: true},
		schema.Field{Name: "dob", Kind: schema.Date, Required: true},
		schema.Field{Name: "id_number", Kind: schema.Pattern, Required: true, Pattern: `^[A-Z][0-9]{7}$`},
	)
	require.NoError(t, err)
	return s
}

func TestBuildJSONSchema_ShapeOnly(t *testing.T) {
	s := testSchema(t)
	js := llm.BuildJSONSchema(s)

	// nulls and arbitrary strings pass; the validator downstream owns format
	assert.NoError(t, llm.ValidateJSONAgainstSchema(js, []byte(`{"name":"Jane","dob":null,"id_number":"not-the-pattern"}`)))

	// unknown keys and non-string scalars are rejected at this boundary
	assert.Error(t, llm.ValidateJSONAgainstSchema(js, []byte(`{"surprise":"x"}`)))
	assert.Error(t, llm.ValidateJSONAgainstSchema(js, []byte(`{"name":42}`)))
	assert.Error(t, llm.ValidateJSONAgainstSchema(js, []byte(`["not","an","object"]`)))
}

func TestBuildSystemPrompt(t *testing.T) {
	req := llm.NormalizeRequest{
		Schema:        testSchema(t),
		DocumentTypes: []string{"Aadhaar", "PAN", "Other"},
	}
	sys := llm.BuildSystemPrompt(req)

	assert.Contains(t, sys, "name, dob, id_number")
	assert.Contains(t, sys, "NEVER invent")
	assert.Contains(t, sys, "Aadhaar, PAN, Other")
}

func TestBuildUserPrompt_TruncatesLongOCR(t *testing.T) {
	req := llm.NormalizeRequest{
		Schema:       testSchema(t),
		RawText:      strings.Repeat("x", 10000),
		FilenameHint: "passport.png",
	}
	user := llm.BuildUserPrompt(req)

	assert.Contains(t, user, "Filename: passport.png")
	assert.Contains(t, user, "…(truncated)")
	assert.Less(t, len(user), 7000)
}

func TestBuildUserPrompt_EmptyOCRIsValid(t *testing.T) {
	user := llm.BuildUserPrompt(llm.NormalizeRequest{Schema: testSchema(t)})
	assert.Contains(t, user, "OCR text")
}
