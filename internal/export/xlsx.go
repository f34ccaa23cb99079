// Package export appends audited records to an XLSX workbook, creating it
// on first use. The workbook is an external log, not a store the pipeline
// reads back.
package export

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mkalu-dev/kyc-audit/internal/pipeline"
	"github.com/mkalu-dev/kyc-audit/internal/schema"
)

type Service struct {
	path   string
	sheet  string
	schema *schema.FieldSchema
	logger *slog.Logger
}

func NewService(path, sheet string, s *schema.FieldSchema, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if sheet == "" {
		sheet = "Documents"
	}
	return &Service{path: path, sheet: sheet, schema: s, logger: logger}
}

// Append writes one result as a row. Create-if-missing, append-if-exists,
// matching how a shared log workbook is actually used.
func (s *Service) Append(res *pipeline.Result) error {
	start := time.Now()

	f, err := s.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			s.logger.Warn("export.xlsx.close_error", "error", cerr)
		}
	}()

	rows, err := f.GetRows(s.sheet)
	if err != nil {
		return fmt.Errorf("read sheet %q: %w", s.sheet, err)
	}
	if len(rows) == 0 {
		if err := s.writeHeaders(f); err != nil {
			return err
		}
		rows = [][]string{nil} // header row just written
	}
	row := len(rows) + 1

	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(s.sheet, cell, v)
	}

	col := 1
	write(col, time.Now().UTC().Format(time.RFC3339))
	col++
	write(col, res.SourcePath)
	col++
	for _, fld := range s.schema.Fields() {
		v, ok := res.Record.Get(fld.Name)
		if !ok {
			v = ""
		}
		write(col, v)
		col++
	}
	write(col, findingsSummary(res))
	col++
	write(col, res.Verdict())
	col++
	if res.KYC != nil {
		write(col, string(res.KYC.Decision))
		col++
		write(col, strings.Join(res.KYC.Issues, "; "))
	}

	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("xlsx save: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"path", s.path,
		"row", row,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *Service) open() (*excelize.File, error) {
	if _, err := os.Stat(s.path); err == nil {
		f, err := excelize.OpenFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		if idx, _ := f.GetSheetIndex(s.sheet); idx == -1 {
			if _, err := f.NewSheet(s.sheet); err != nil {
				return nil, err
			}
		}
		return f, nil
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", s.sheet); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) writeHeaders(f *excelize.File) error {
	headers := []string{"Processed At", "Source Image"}
	for _, fld := range s.schema.Fields() {
		headers = append(headers, fld.Name)
	}
	headers = append(headers, "Findings", "Verdict", "KYC Decision", "KYC Issues")

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(s.sheet, cell, h); err != nil {
			return err
		}
	}

	// Widen the columns humans actually read
	_ = f.SetColWidth(s.sheet, "A", "A", 22) // timestamp
	_ = f.SetColWidth(s.sheet, "B", "B", 48) // source path
	return nil
}

func findingsSummary(res *pipeline.Result) string {
	if res.Findings.OK() {
		return ""
	}
	parts := make([]string, len(res.Findings))
	for i, f := range res.Findings {
		parts[i] = f.Field + ": " + f.Detail
	}
	return strings.Join(parts, "; ")
}
