// Command kycaudit runs the document-audit pipeline: OCR an image, normalize
// the text into schema fields with Gemini, validate, and print an audit
// report. `batch` does the same over a directory with a worker pool.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mkalu-dev/kyc-audit/internal/async"
	"github.com/mkalu-dev/kyc-audit/internal/common"
	"github.com/mkalu-dev/kyc-audit/internal/export"
	"github.com/mkalu-dev/kyc-audit/internal/extract"
	"github.com/mkalu-dev/kyc-audit/internal/ingest"
	"github.com/mkalu-dev/kyc-audit/internal/kyc"
	"github.com/mkalu-dev/kyc-audit/internal/llm/gemini"
	"github.com/mkalu-dev/kyc-audit/internal/ocr"
	"github.com/mkalu-dev/kyc-audit/internal/pipeline"
	"github.com/mkalu-dev/kyc-audit/internal/schema"
)

var (
	flagSchema  string
	flagExport  string
	flagKYC     bool
	flagRules   string
	flagWorkers int
	flagVerbose bool
)

func main() {
	_ = godotenv.Load() // .env is optional

	root := &cobra.Command{
		Use:           "kycaudit",
		Short:         "OCR, normalize, validate, and audit identity documents",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flagSchema, "schema", "", "YAML field schema file (default: built-in identity schema)")
	root.PersistentFlags().StringVar(&flagExport, "export", "", "append results to this XLSX workbook (default: EXCEL_OUTPUT_PATH)")
	root.PersistentFlags().BoolVar(&flagKYC, "kyc", false, "run KYC decisioning after validation")
	root.PersistentFlags().StringVar(&flagRules, "rules", "", "YAML reference rules file for KYC (blacklist)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run <image>",
		Short: "Process one document image",
		Args:  cobra.ExactArgs(1),
		RunE:  runOne,
	}

	batchCmd := &cobra.Command{
		Use:   "batch <directory>",
		Short: "Process every supported image under a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}
	batchCmd.Flags().IntVar(&flagWorkers, "workers", 2, "concurrent pipeline runs")

	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the effective field schema as YAML",
		RunE:  printSchema,
	}

	root.AddCommand(runCmd, batchCmd, schemaCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func loadSchema() (*schema.FieldSchema, error) {
	if flagSchema == "" {
		return schema.Default(), nil
	}
	return schema.LoadYAML(flagSchema)
}

func loadRules() ([]kyc.ReferenceRule, error) {
	if flagRules == "" {
		return nil, nil
	}
	b, err := os.ReadFile(flagRules)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var rf struct {
		Rules []kyc.ReferenceRule `yaml:"rules"`
	}
	if err := yaml.Unmarshal(b, &rf); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	return rf.Rules, nil
}

// buildOrchestrator wires config -> collaborators -> orchestrator.
func buildOrchestrator(logger *slog.Logger, s *schema.FieldSchema) (*pipeline.Orchestrator, *common.Config, error) {
	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	rules, err := loadRules()
	if err != nil {
		return nil, nil, err
	}

	ocrx := ocr.NewExtractor(ocr.Config{
		Tesseract:   cfg.OCR.Tesseract,
		Lang:        cfg.OCR.Lang,
		TessdataDir: cfg.OCR.TessdataDir,
		PSM:         cfg.OCR.PSM,
		OEM:         cfg.OCR.OEM,
	}, logger)
	textExtractor := extract.NewOCRAdapter(ocrx, logger)

	normalizer := gemini.NewClient(gemini.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	orch := pipeline.New(pipeline.Config{
		OCRTimeout:     cfg.OCR.Timeout,
		LLMTimeout:     cfg.LLM.Timeout,
		EnableKYC:      flagKYC,
		ReferenceRules: rules,
	}, s, textExtractor, normalizer, logger)

	return orch, cfg, nil
}

func exporter(cfg *common.Config, s *schema.FieldSchema, logger *slog.Logger) *export.Service {
	path := flagExport
	if path == "" {
		path = cfg.Export.XLSXPath
	}
	if path == "" {
		return nil
	}
	return export.NewService(path, cfg.Export.SheetName, s, logger)
}

func runOne(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	s, err := loadSchema()
	if err != nil {
		return err
	}
	orch, cfg, err := buildOrchestrator(logger, s)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := orch.Run(ctx, args[0])
	if err != nil {
		if stage, ok := pipeline.FailedStage(err); ok {
			return fmt.Errorf("pipeline halted at %s: %w", stage, err)
		}
		return err
	}

	if xs := exporter(cfg, s, logger); xs != nil {
		if err := xs.Append(res); err != nil {
			logger.Error("export failed", "error", err)
		}
	}

	recJSON, _ := json.MarshalIndent(res.Record, "", "  ")
	fmt.Println(string(recJSON))
	fmt.Println()
	fmt.Print(res.Report)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	s, err := loadSchema()
	if err != nil {
		return err
	}
	orch, cfg, err := buildOrchestrator(logger, s)
	if err != nil {
		return err
	}

	paths, stats, err := ingest.Discover(args[0], nil, true)
	if err != nil {
		return err
	}
	logger.Info("batch.discover", "scanned", stats.Scanned, "matched", stats.Matched, "skipped", stats.Skipped)
	if len(paths) == 0 {
		return fmt.Errorf("no supported images under %s", args[0])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	pool := async.NewPool(flagWorkers, orch, logger)
	results := pool.Process(ctx, paths)

	xs := exporter(cfg, s, logger)
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAILED %s: %v\n", r.Job.Path, r.Err)
			continue
		}
		if xs != nil {
			if err := xs.Append(r.Result); err != nil {
				logger.Error("export failed", "path", r.Job.Path, "error", err)
			}
		}
		fmt.Printf("%s: verdict=%s findings=%d\n", r.Job.Path, r.Result.Verdict(), len(r.Result.Findings))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(results))
	}
	return nil
}

func printSchema(cmd *cobra.Command, args []string) error {
	s, err := loadSchema()
	if err != nil {
		return err
	}
	out, err := yaml.Marshal(struct {
		Fields []schema.Field `yaml:"fields"`
	}{Fields: s.Fields()})
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	return nil
}
