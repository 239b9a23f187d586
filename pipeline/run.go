package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lucasjlepore/stepcadence"
	"github.com/lucasjlepore/stepcadence/ingest"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/zap"
)

const (
	manifestName = "manifest.json"
	notesName    = "cohort_notes.md"
	summaryBase  = "activity_summary"
)

// Run executes the full stepstats pipeline and writes all artifacts.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.InputPath) == "" && len(opts.FITPaths) == 0 {
		return nil, fmt.Errorf("input path or FIT files are required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format, err := normalizeFormat(opts.Format, true)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	source := opts.InputPath
	var table *stepcadence.RawTable
	if len(opts.FITPaths) > 0 {
		source = strings.Join(opts.FITPaths, ",")
		log.Info("Reading FIT activity files", zap.Int("files", len(opts.FITPaths)), zap.String("user", opts.FIT.UserID))
		table, err = ingest.ReadFITFiles(opts.FIT, opts.FITPaths...)
	} else {
		log.Info("Reading the file", zap.String("path", opts.InputPath))
		table, err = ingest.ReadFile(opts.InputPath, opts.Sheet)
	}
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}

	if err := ensureOutputDir(opts.OutDir, opts.Overwrite); err != nil {
		return nil, err
	}

	analysis, manifest, err := analyze(ctx, table, runParams{
		source:     source,
		region:     opts.Region,
		thresholds: opts.Thresholds,
		policy:     opts.CellPolicy,
		format:     format,
		log:        log,
	})
	if err != nil {
		return nil, err
	}

	summaryPath := filepath.Join(opts.OutDir, summaryBase+"."+formatExtension(format))
	switch format {
	case "csv":
		err = writeSummaryCSV(summaryPath, analysis.Rows)
	case "parquet":
		err = writeSummaryParquet(summaryPath, analysis.Rows)
	case "sqlite":
		err = writeSummarySQLite(ctx, summaryPath, analysis.Rows)
	}
	if err != nil {
		return nil, fmt.Errorf("write %s summary: %w", format, err)
	}
	log.Info("Writing results to file", zap.String("path", summaryPath), zap.Int("rows", len(analysis.Rows)))

	manifestPath := filepath.Join(opts.OutDir, manifestName)
	if err := writeJSON(manifestPath, manifest); err != nil {
		return nil, fmt.Errorf("write %s: %w", manifestName, err)
	}
	notesPath := filepath.Join(opts.OutDir, notesName)
	notes := stepcadence.BuildCohortNotes(analysis.Rows, opts.Thresholds)
	if err := os.WriteFile(notesPath, []byte(notes+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", notesName, err)
	}

	return &Result{
		OutputDir:    opts.OutDir,
		SummaryPath:  summaryPath,
		ManifestPath: manifestPath,
		NotesPath:    notesPath,
		Rows:         analysis.Rows,
		Warnings:     manifest.Warnings,
	}, nil
}

// RunBytes is Run for in-memory inputs; artifacts are returned instead of
// written.
func RunBytes(ctx context.Context, opts BytesOptions) (*BytesResult, error) {
	if len(opts.Data) == 0 {
		return nil, fmt.Errorf("input data is required")
	}
	format, err := normalizeFormat(opts.Format, false)
	if err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	table, err := ingest.ReadBytes(opts.SourceFileName, opts.Data, opts.Sheet)
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	analysis, manifest, err := analyze(ctx, table, runParams{
		source:     opts.SourceFileName,
		region:     opts.Region,
		thresholds: opts.Thresholds,
		policy:     opts.CellPolicy,
		format:     format,
		log:        log,
	})
	if err != nil {
		return nil, err
	}

	files := make(map[string][]byte, 3)
	var summary []byte
	switch format {
	case "csv":
		var buf bytes.Buffer
		err = encodeSummaryCSV(&buf, analysis.Rows)
		summary = buf.Bytes()
	case "parquet":
		summary, err = marshalSummaryParquet(analysis.Rows)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s summary: %w", format, err)
	}
	files[summaryBase+"."+formatExtension(format)] = summary

	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", manifestName, err)
	}
	files[manifestName] = append(manifestJSON, '\n')
	files[notesName] = []byte(stepcadence.BuildCohortNotes(analysis.Rows, opts.Thresholds) + "\n")

	return &BytesResult{Files: files, Rows: analysis.Rows, Warnings: manifest.Warnings}, nil
}

type runParams struct {
	source     string
	region     string
	thresholds stepcadence.Thresholds
	policy     stepcadence.CellPolicy
	format     string
	log        *zap.Logger
}

func analyze(ctx context.Context, table *stepcadence.RawTable, p runParams) (*stepcadence.Analysis, Manifest, error) {
	inputUsers := len(table.Users)
	var warnings []string
	if p.region != "" {
		table = table.FilterRegion(p.region)
		p.log.Info("Selected users in region",
			zap.String("county_code", p.region),
			zap.Int("kept", len(table.Users)),
			zap.Int("dropped", inputUsers-len(table.Users)))
		if len(table.Users) == 0 {
			warnings = append(warnings, fmt.Sprintf("no users with %s %q", stepcadence.ColumnCountyCode, p.region))
		}
	}

	analysis, err := stepcadence.Analyze(ctx, table, stepcadence.Config{
		Thresholds: p.thresholds,
		CellPolicy: p.policy,
		Logger:     p.log,
	})
	if err != nil {
		return nil, Manifest{}, fmt.Errorf("aggregate: %w", err)
	}

	for _, w := range warnings {
		p.log.Warn(w)
	}
	return analysis, Manifest{
		GeneratedAt:   time.Now().UTC(),
		Source:        p.source,
		Region:        p.region,
		Thresholds:    p.thresholds,
		InvalidCells:  p.policy.String(),
		Format:        p.format,
		InputUsers:    inputUsers,
		RetainedUsers: len(analysis.Rows),
		Days:          len(table.Days),
		Columns:       stepcadence.OutputColumns,
		Cohort:        stepcadence.SummarizeCohort(analysis.Rows),
		Warnings:      warnings,
	}, nil
}

func normalizeFormat(format string, allowSQLite bool) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		f = "csv"
	}
	switch f {
	case "csv", "parquet":
		return f, nil
	case "sqlite":
		if allowSQLite {
			return f, nil
		}
	}
	if allowSQLite {
		return "", fmt.Errorf("unsupported format %q (expected csv|parquet|sqlite)", format)
	}
	return "", fmt.Errorf("unsupported format %q (expected csv|parquet)", format)
}

func formatExtension(format string) string {
	switch format {
	case "parquet":
		return "parquet"
	case "sqlite":
		return "db"
	default:
		return "csv"
	}
}

func ensureOutputDir(path string, overwrite bool) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Errorf("read output directory: %w", err)
	}
	if len(entries) > 0 && !overwrite {
		return fmt.Errorf("output directory is not empty: %s (set overwrite=true to allow)", path)
	}
	return nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSummaryCSV(path string, rows []stepcadence.SummaryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return encodeSummaryCSV(f, rows)
}

func encodeSummaryCSV(out io.Writer, rows []stepcadence.SummaryRow) error {
	w := csv.NewWriter(out)
	if err := w.Write(stepcadence.OutputColumns); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r.Record()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeSummaryParquet(path string, rows []stepcadence.SummaryRow) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	pw, err := writer.NewParquetWriter(fw, new(summaryParquetRow), 4)
	if err != nil {
		_ = fw.Close()
		return err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		if err := pw.Write(toParquetRow(r)); err != nil {
			_ = pw.WriteStop()
			_ = fw.Close()
			return err
		}
	}
	if err := pw.WriteStop(); err != nil {
		_ = fw.Close()
		return err
	}
	return fw.Close()
}
