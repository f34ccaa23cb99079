// Package ocr extracts raw text from document images by shelling out to the
// tesseract binary. The binary location is configurable so deployments can
// point at a non-PATH install.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/mkalu-dev/kyc-audit/constants"
	"github.com/mkalu-dev/kyc-audit/internal/common"
)

type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang        string // default "eng"
	TessdataDir string

	PSM int // e.g., 6 is good for uniform block of text
	OEM int // 1 = LSTM; leave 0 to use default
}

type ExtractionResult struct {
	Text       string
	Method     string // "image-ocr"
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Extract runs OCR on one image file. Empty text is a valid result (the
// document may simply carry no recognizable text); unreadable paths,
// unsupported formats, a missing binary, and non-zero exits are errors.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("ocr.extract.start", "path", path, "ext", ext)

	if !constants.IsSupportedExt(ext) {
		return ExtractionResult{}, common.ExtractionError(fmt.Sprintf("unsupported extension: %q", ext), nil)
	}
	if st, err := os.Stat(path); err != nil {
		return ExtractionResult{}, common.ExtractionError("image not readable", err)
	} else if st.IsDir() {
		return ExtractionResult{}, common.ExtractionError("image path is a directory", nil)
	}

	txt, warns, err := e.tesseractOCR(ctx, path)
	if err != nil {
		return ExtractionResult{Warnings: warns}, err
	}
	txt = Normalize(txt)

	res := ExtractionResult{
		Text:       txt,
		Method:     "image-ocr",
		Language:   e.cfg.Lang,
		Duration:   time.Since(start),
		Warnings:   warns,
		Confidence: heuristicConfidence(txt),
	}
	e.logger.Debug("ocr.extract.ok", "path", path, "bytes", len(txt), "confidence", res.Confidence)
	return res, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", fmt.Sprintf("%d", e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", []string{string(errb)}, common.TimeoutError("tesseract", ctxErr)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return "", nil, common.ExtractionError(fmt.Sprintf("ocr binary unavailable: %s", e.cfg.Tesseract), err)
		}
		return "", []string{string(errb)}, common.ExtractionError("tesseract", err)
	}

	// minor cleanup of obvious line noise
	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}
