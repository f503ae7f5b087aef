package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"ogarx/internal/batch"
	"ogarx/internal/config"
	"ogarx/internal/domain"
	"ogarx/internal/invoker"
	"ogarx/internal/port"
	"ogarx/internal/raster"
	"ogarx/internal/service"
	s3storage "ogarx/internal/storage/s3"
)

const s3Scheme = "s3://"

// Factories for the collaborators of an extract run. Tests replace them.
var (
	newInvoker = invoker.New

	newRasterizer = func(cfg config.RasterConfig) port.Rasterizer {
		return raster.New(raster.Config{
			Pdftoppm:    cfg.Pdftoppm,
			DPI:         cfg.DPI,
			MaxPages:    cfg.MaxPages,
			MaxPixelDim: cfg.MaxPixelDim,
			TempDir:     cfg.TempDir,
		})
	}

	newStorage = s3storage.NewS3Client
)

type extractOptions struct {
	output     string
	format     string
	layout     string
	promptFile string
	provider   string
	model      string
}

func newExtractCmd() *cobra.Command {
	opts := &extractOptions{}

	cmd := &cobra.Command{
		Use:   "extract <file|s3://key>...",
		Short: "Extract fields from documents into one spreadsheet",
		Long: `Extract rasterizes every document, sends each page to the vision model
and writes all recovered fields to a single file.

Documents are local paths or object keys in the configured bucket
(OGARX_S3_BUCKET) written as s3://<key>. A page that fails is reported and
skipped; the run only fails when nothing at all could be extracted.

Example:
  ogarx extract attestation.pdf carte_grise.jpg
  ogarx extract scans/*.png -o lot.csv --format csv
  ogarx extract s3://incoming/police_0042.pdf --provider openai --model gpt-4o`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output path, - for stdout (default: timestamped name in the current directory)")
	cmd.Flags().StringVar(&opts.format, "format", "", "output format: xlsx, csv or json (default: from the output extension, else xlsx)")
	cmd.Flags().StringVar(&opts.layout, "layout", string(domain.LayoutStructured), "record layout: structured or two_column")
	cmd.Flags().StringVar(&opts.promptFile, "prompt-file", "", "read the extraction prompt from this file")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "model provider: "+strings.Join(invoker.Providers(), ", "))
	cmd.Flags().StringVar(&opts.model, "model", "", "model name (default: the provider's default)")
	return cmd
}

func runExtract(cmd *cobra.Command, args []string, opts *extractOptions) error {
	format, err := parseFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	layout := domain.RecordLayout(opts.layout)
	if layout != domain.LayoutStructured && layout != domain.LayoutTwoColumn {
		return fmt.Errorf("unknown layout %q (structured, two_column)", opts.layout)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.provider != "" {
		cfg.Model.Provider = opts.provider
	}
	if opts.model != "" {
		cfg.Model.Model = opts.model
	}

	text, err := resolvePrompt(opts.promptFile)
	if err != nil {
		return err
	}

	inv, err := newInvoker(&cfg.Model)
	if err != nil {
		return fmt.Errorf("creating model client: %w", err)
	}

	var storage port.ObjectStorage
	if hasStorageSource(args) {
		if !cfg.S3.Enabled() {
			return fmt.Errorf("%s sources need OGARX_S3_BUCKET: %w", s3Scheme, domain.ErrStorageDisabled)
		}
		if storage, err = newStorage(&cfg.S3); err != nil {
			return fmt.Errorf("creating storage client: %w", err)
		}
	}

	// The CLI is not bound by the upload limit of the HTTP surface.
	extractionCfg := cfg.Extraction
	extractionCfg.MaxFiles = 0
	svc := service.NewExtractionService(newRasterizer(cfg.Raster), inv, storage, cfg.S3.Bucket, text, extractionCfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Documents run in argument order whatever their source.
	docs := make([]domain.RawDocument, 0, len(args))
	for _, arg := range args {
		doc, err := resolveSource(svc, arg)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
	}

	b := batch.New()
	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "Extracting %d document(s) with %s...\n", len(docs), inv.Name())

	report, err := svc.Run(ctx, docs, service.RunOptions{}, b)
	if err != nil {
		return err
	}
	printReport(stderr, report)

	export := service.NewExportService(nil, nil, "", cfg.Export)
	file, err := export.Render(b, format, layout)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyBatch) {
			return fmt.Errorf("no fields were extracted from %d document(s)", len(docs))
		}
		return err
	}

	if opts.output == "-" {
		_, err = cmd.OutOrStdout().Write(file.Data)
		return err
	}
	out := opts.output
	if out == "" {
		out = file.Name
	}
	if err := os.WriteFile(out, file.Data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Fprintf(stderr, "Wrote %d records to %s\n", report.BatchSize, out)
	return nil
}

// parseFormat picks the explicit format, else the one implied by the
// output extension, else xlsx.
func parseFormat(flag, output string) (domain.ExportFormat, error) {
	f := strings.ToLower(flag)
	if f == "" {
		f = strings.TrimPrefix(strings.ToLower(filepath.Ext(output)), ".")
		switch domain.ExportFormat(f) {
		case domain.ExportXLSX, domain.ExportCSV, domain.ExportJSON:
		default:
			f = string(domain.ExportXLSX)
		}
	}
	switch domain.ExportFormat(f) {
	case domain.ExportXLSX, domain.ExportCSV, domain.ExportJSON:
		return domain.ExportFormat(f), nil
	default:
		return "", fmt.Errorf("unknown format %q (xlsx, csv, json)", flag)
	}
}

func hasStorageSource(args []string) bool {
	for _, arg := range args {
		if strings.HasPrefix(arg, s3Scheme) {
			return true
		}
	}
	return false
}

// resolveSource turns one argument into a document. Object keys are only
// validated here; their content is downloaded when the run reaches them.
func resolveSource(svc service.ExtractionService, arg string) (domain.RawDocument, error) {
	if key, ok := strings.CutPrefix(arg, s3Scheme); ok {
		docs, err := svc.FromStorage([]string{key})
		if err != nil {
			return domain.RawDocument{}, err
		}
		return docs[0], nil
	}
	content, err := os.ReadFile(arg)
	if err != nil {
		return domain.RawDocument{}, fmt.Errorf("reading %s: %w", arg, err)
	}
	return svc.LoadDocument(filepath.Base(arg), content)
}

func printReport(w io.Writer, report *domain.BatchReport) {
	fmt.Fprintf(w, "Pages: %d/%d extracted, %d records\n",
		report.PagesExtracted, report.PagesTotal, report.RecordsAdded)
	for _, issue := range report.Issues {
		if issue.Page > 0 {
			fmt.Fprintf(w, "  [%s] %s page %d: %s\n", issue.Kind, issue.SourceFile, issue.Page, issue.Message)
			continue
		}
		fmt.Fprintf(w, "  [%s] %s: %s\n", issue.Kind, issue.SourceFile, issue.Message)
	}
}
