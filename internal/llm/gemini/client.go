package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mkalu-dev/kyc-audit/internal/common"
	"github.com/mkalu-dev/kyc-audit/internal/llm"
	"github.com/mkalu-dev/kyc-audit/internal/schema"
)

// generateContent response shape (the part of it we read).
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Normalize implements llm.FieldNormalizer against the Gemini REST API.
// Error classification matters here: authorization denials, timeouts, and
// transient network failures must stay distinguishable for callers.
func (c *Client) Normalize(ctx context.Context, req llm.NormalizeRequest) (schema.Record, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	if c.cfg.APIKey == "" {
		return nil, nil, common.AuthorizationError("missing API key")
	}
	if req.Schema == nil || req.Schema.Len() == 0 {
		return nil, nil, common.NormalizationError("schema must be non-empty", nil)
	}

	c.log.Info("llm.normalize.start",
		"req_id", rid,
		"run_id", common.RunIDFromContext(ctx),
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"text_len", len(req.RawText),
		"fields", req.Schema.Len(),
	)

	sys := llm.BuildSystemPrompt(req)
	user := llm.BuildUserPrompt(req)

	body := map[string]any{
		"systemInstruction": map[string]any{
			"parts": []map[string]any{{"text": sys}},
		},
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]any{{"text": user}}},
		},
		"generationConfig": map[string]any{
			"temperature":      c.cfg.Temperature,
			"responseMimeType": "application/json",
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/models/" + c.cfg.Model + ":generateContent"
	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}

	raw, status, httpErr := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.log)
	if httpErr != nil {
		err := c.classify(httpErr, status)
		c.log.Error("llm.normalize.http_error",
			"req_id", rid, "status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, nil, err
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		c.log.Error("llm.normalize.decode_error", "req_id", rid, "error", err, "raw_bytes", len(raw))
		return nil, raw, common.NormalizationError("decode gemini response", err)
	}
	if len(gr.Candidates) == 0 || len(gr.Candidates[0].Content.Parts) == 0 {
		c.log.Error("llm.normalize.no_candidates", "req_id", rid, "raw_bytes", len(raw))
		return nil, raw, common.NormalizationError("no candidates in gemini response", nil)
	}
	content := []byte(strings.TrimSpace(gr.Candidates[0].Content.Parts[0].Text))

	// One local repair attempt (fence stripping / embedded object), then
	// conform to the schema and validate shape.
	payload, err := llm.RepairJSON(content)
	if err != nil {
		c.log.Error("llm.normalize.malformed", "req_id", rid, "error", err)
		return nil, content, common.NormalizationError("malformed model output", err)
	}

	rec, _ := llm.SanitizeToRecord(payload, req.Schema, c.log)

	cleaned, err := json.Marshal(rec)
	if err != nil {
		return nil, content, common.NormalizationError("encode record", err)
	}
	if err := llm.ValidateJSONAgainstSchema(llm.BuildJSONSchema(req.Schema), cleaned); err != nil {
		c.log.Error("llm.normalize.schema_validation_failed", "req_id", rid, "error", err)
		return nil, content, common.NormalizationError("schema validation failed", err)
	}

	c.log.Info("llm.normalize.ok",
		"req_id", rid,
		"keys", rec.Keys(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return rec, cleaned, nil
}

// classify maps transport-level failures onto the error taxonomy.
func (c *Client) classify(err error, status int) error {
	switch {
	case status == 401 || status == 403:
		return common.AuthorizationError(fmt.Sprintf("gemini denied request (status %d)", status))
	case errors.Is(err, context.DeadlineExceeded), isNetTimeout(err):
		return common.TimeoutError("gemini call", err)
	default:
		return common.NormalizationError("gemini unreachable", err)
	}
}

func isNetTimeout(err error) bool {
	var uerr *url.Error
	return errors.As(err, &uerr) && uerr.Timeout()
}
