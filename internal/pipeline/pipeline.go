// Package pipeline sequences the four stages of a document run: extract,
// normalize, validate, report. Strictly linear and fail-fast: the first
// stage error halts the run and no report is produced.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/mkalu-dev/kyc-audit/constants"
	"github.com/mkalu-dev/kyc-audit/internal/common"
	"github.com/mkalu-dev/kyc-audit/internal/extract"
	"github.com/mkalu-dev/kyc-audit/internal/kyc"
	"github.com/mkalu-dev/kyc-audit/internal/llm"
	"github.com/mkalu-dev/kyc-audit/internal/report"
	"github.com/mkalu-dev/kyc-audit/internal/schema"
	"github.com/mkalu-dev/kyc-audit/internal/validate"
)

// Stage names the orchestrator's states. A run moves through them in order
// and terminates in Done, or in Failed carried as a StageError.
type Stage string

const (
	StageExtracting  Stage = "extracting"
	StageNormalizing Stage = "normalizing"
	StageValidating  Stage = "validating"
	StageReporting   Stage = "reporting"
	StageDone        Stage = "done"
)

// StageError is the terminal Failed state: which stage broke, and why.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FailedStage extracts the stage from a pipeline error, if it carries one.
func FailedStage(err error) (Stage, bool) {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage, true
	}
	return "", false
}

// Config holds orchestrator behavior. Timeouts wrap the two external calls;
// KYC decisioning is optional and runs after validation when enabled.
type Config struct {
	OCRTimeout     time.Duration
	LLMTimeout     time.Duration
	EnableKYC      bool
	ReferenceRules []kyc.ReferenceRule
}

// Result is the output of one completed run. Failed runs return no Result
// at all: partial or garbled output must never look complete.
type Result struct {
	RunID         uuid.UUID
	SourcePath    string
	Record        schema.Record
	Findings      validate.Result
	Report        string
	KYC           *kyc.Outcome
	OCRConfidence float32
	Duration      time.Duration
}

// Verdict is "passed" iff validation produced no findings.
func (r *Result) Verdict() string {
	return report.Verdict(r.Findings)
}

// Orchestrator holds the stage collaborators. It keeps no state across
// runs; independent documents may run on separate orchestrators (or the
// same one) concurrently, throttled by the caller.
type Orchestrator struct {
	logger     *slog.Logger
	cfg        Config
	schema     *schema.FieldSchema
	extractor  extract.TextExtractor
	normalizer llm.FieldNormalizer
}

func New(cfg Config, s *schema.FieldSchema, tx extract.TextExtractor, fn llm.FieldNormalizer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = 60 * time.Second
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 45 * time.Second
	}
	return &Orchestrator{logger: logger, cfg: cfg, schema: s, extractor: tx, normalizer: fn}
}

// Run processes one image through all four stages. Each stage's output is
// the next stage's sole input; the context is checked cooperatively between
// stages since the external calls can be slow.
func (o *Orchestrator) Run(ctx context.Context, imagePath string) (*Result, error) {
	runID := uuid.New()
	ctx = common.WithRunID(ctx, runID.String())
	start := time.Now()

	o.logger.Info("pipeline.run.start", "run_id", runID, "image", imagePath, "status", constants.RunStatusRunning)

	// Extracting
	if err := ctx.Err(); err != nil {
		return nil, o.fail(runID, StageExtracting, err)
	}
	octx, cancelOCR := common.WithTimeout(ctx, o.cfg.OCRTimeout)
	ocrRes, err := o.extractor.Extract(octx, imagePath)
	cancelOCR()
	if err != nil {
		return nil, o.fail(runID, StageExtracting, err)
	}
	o.logger.Info("pipeline.extract.ok",
		"run_id", runID, "method", ocrRes.Method,
		"bytes", len(ocrRes.Text), "confidence", ocrRes.Confidence,
	)

	// Normalizing. Empty OCR text is still a valid input here.
	if err := ctx.Err(); err != nil {
		return nil, o.fail(runID, StageNormalizing, err)
	}
	lctx, cancelLLM := common.WithTimeout(ctx, o.cfg.LLMTimeout)
	rec, _, err := o.normalizer.Normalize(lctx, llm.NormalizeRequest{
		RawText:       ocrRes.Text,
		Schema:        o.schema,
		FilenameHint:  filepath.Base(imagePath),
		DocumentTypes: constants.DocumentTypeLabels(),
	})
	cancelLLM()
	if err != nil {
		return nil, o.fail(runID, StageNormalizing, err)
	}
	rec = rec.Clone() // this run owns its record from here on
	canonicalizeDocType(rec)
	o.logger.Info("pipeline.normalize.ok", "run_id", runID, "keys", rec.Keys())

	// Validating is pure and never fails.
	if err := ctx.Err(); err != nil {
		return nil, o.fail(runID, StageValidating, err)
	}
	findings := validate.Validate(rec, o.schema)

	var outcome *kyc.Outcome
	if o.cfg.EnableKYC {
		kout := kyc.Evaluate(rec, o.cfg.ReferenceRules)
		outcome = &kout
		o.logger.Info("pipeline.kyc.ok", "run_id", runID, "decision", kout.Decision, "issues", len(kout.Issues))
	}

	// Reporting
	if err := ctx.Err(); err != nil {
		return nil, o.fail(runID, StageReporting, err)
	}
	rpt := report.Generate(o.schema, rec, findings)
	if outcome != nil {
		rpt = report.AppendKYC(rpt, string(outcome.Decision), outcome.Issues)
	}

	res := &Result{
		RunID:         runID,
		SourcePath:    imagePath,
		Record:        rec,
		Findings:      findings,
		Report:        rpt,
		KYC:           outcome,
		OCRConfidence: ocrRes.Confidence,
		Duration:      time.Since(start),
	}
	o.logger.Info("pipeline.run.done",
		"run_id", runID,
		"status", constants.RunStatusDone,
		"verdict", res.Verdict(),
		"findings", len(findings),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

// canonicalizeDocType rewrites a free-text document_type label onto the
// canonical enum, when the field exists and the label is recognized.
func canonicalizeDocType(rec schema.Record) {
	v, ok := rec.Get("document_type")
	if !ok {
		return
	}
	if dt, known := constants.CanonicalizeDocumentType(v); known {
		s := string(dt)
		rec["document_type"] = &s
	}
}

func (o *Orchestrator) fail(runID uuid.UUID, stage Stage, err error) error {
	o.logger.Error("pipeline.run.failed",
		"run_id", runID, "stage", string(stage), "status", constants.RunStatusFailed, "error", err,
	)
	return &StageError{Stage: stage, Err: err}
}
