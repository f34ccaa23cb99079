package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkalu-dev/kyc-audit/internal/common"
	"github.com/mkalu-dev/kyc-audit/internal/llm"
	"github.com/mkalu-dev/kyc-audit/internal/llm/gemini"
	"github.com/mkalu-dev/kyc-audit/internal/schema"
)

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

// candidateServer returns a test server that answers every generateContent
// call with the given candidate text.
func candidateServer(t *testing.T, candidateText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NotEmpty(t, r.Header.Get("x-goog-api-key"))

		resp := map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{
					"parts": []map[string]any{{"text": candidateText}},
				}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func newClient(t *testing.T, baseURL string) *gemini.Client {
	t.Helper()
	return gemini.NewClient(gemini.Config{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "gemini-1.5-pro",
		Timeout: 5 * time.Second,
	}, nil)
}

func TestNormalize_CleanResponse(t *testing.T) {
	srv := candidateServer(t, `{"name":"Jane Doe","dob":"1990-01-02","id_number":"A1234567"}`)
	defer srv.Close()

	rec, raw, err := newClient(t, srv.URL).Normalize(context.Background(), llm.NormalizeRequest{
		RawText: "Name: Jane Doe\nDOB: 1990-01-02\nID: A1234567",
		Schema:  testSchema(t),
	})
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	v, ok := rec.Get("name")
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", v)
}

func TestNormalize_RepairsFencedResponse(t *testing.T) {
	srv := candidateServer(t, "```json\n{\"name\":\"Jane Doe\",\"dob\":null,\"id_number\":null}\n```")
	defer srv.Close()

	rec, _, err := newClient(t, srv.URL).Normalize(context.Background(), llm.NormalizeRequest{
		RawText: "barely legible scan",
		Schema:  testSchema(t),
	})
	require.NoError(t, err)

	assert.True(t, rec.Has("dob"))
	_, ok := rec.Get("dob")
	assert.False(t, ok, "null from the model stays null")
}

// Fields the model invents outside the schema are dropped, not passed through.
func TestNormalize_DropsUnknownFields(t *testing.T) {
	srv := candidateServer(t, `{"name":"Jane Doe","dob":"1990-01-02","id_number":"A1234567","gst_number":"22AAAAA0000A1Z5"}`)
	defer srv.Close()

	rec, _, err := newClient(t, srv.URL).Normalize(context.Background(), llm.NormalizeRequest{
		RawText: "text",
		Schema:  testSchema(t),
	})
	require.NoError(t, err)
	assert.False(t, rec.Has("gst_number"))
}

func TestNormalize_MalformedAfterRepair(t *testing.T) {
	srv := candidateServer(t, "the document appears to be a passport")
	defer srv.Close()

	_, _, err := newClient(t, srv.URL).Normalize(context.Background(), llm.NormalizeRequest{
		RawText: "text",
		Schema:  testSchema(t),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNormalization)
	assert.NotErrorIs(t, err, common.ErrUnauthorized)
}

func TestNormalize_AuthorizationDenied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":"PERMISSION_DENIED"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	_, _, err := newClient(t, srv.URL).Normalize(context.Background(), llm.NormalizeRequest{
		RawText: "text",
		Schema:  testSchema(t),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnauthorized, "denied credential must be distinguishable")
	assert.ErrorIs(t, err, common.ErrNormalization)
}

func TestNormalize_TransientServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, _, err := newClient(t, srv.URL).Normalize(context.Background(), llm.NormalizeRequest{
		RawText: "text",
		Schema:  testSchema(t),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNormalization)
	assert.NotErrorIs(t, err, common.ErrUnauthorized)
	assert.NotErrorIs(t, err, common.ErrTimeout)
}

func TestNormalize_DeadlineExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, _, err := newClient(t, srv.URL).Normalize(ctx, llm.NormalizeRequest{
		RawText: "text",
		Schema:  testSchema(t),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrTimeout)
}

func TestNormalize_EmptySchemaRejected(t *testing.T) {
	_, _, err := newClient(t, "http://127.0.0.1:0").Normalize(context.Background(), llm.NormalizeRequest{
		RawText: "text",
	})
	require.Error(t, err)
}
