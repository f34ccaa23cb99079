package llm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkalu-dev/kyc-audit/internal/llm"
)

func TestRepairJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantKey string
		wantErr bool
	}{
		{
			name:    "plain object",
			raw:     `{"name":"Jane Doe","dob":null}`,
			wantKey: "name",
		},
		{
			name:    "fenced json block",
			raw:     "```json\n{\"name\":\"Jane Doe\"}\n```",
			wantKey: "name",
		},
		{
			name:    "fenced without language tag",
			raw:     "```\n{\"id_number\":\"A1234567\"}\n```",
			wantKey: "id_number",
		},
		{
			name:    "object wrapped in prose",
			raw:     "Here is the extracted data:\n{\"name\":\"Jane Doe\"}\nLet me know if you need more.",
			wantKey: "name",
		},
		{
			name:    "leading and trailing whitespace",
			raw:     "   \n{\"name\":\"x\"}\n\n",
			wantKey: "name",
		},
		{
			name:    "no json at all",
			raw:     "I could not read the document.",
			wantErr: true,
		},
		{
			name:    "array is not an object",
			raw:     `["a","b"]`,
			wantErr: true,
		},
		{
			name:    "empty input",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := llm.RepairJSON([]byte(tt.raw))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, got, tt.wantKey)
		})
	}
}
