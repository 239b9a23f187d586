package pipeline

import (
	"time"

	"github.com/lucasjlepore/stepcadence"
	"github.com/lucasjlepore/stepcadence/ingest"
	"go.uber.org/zap"
)

// Options configures the stepstats pipeline.
type Options struct {
	// InputPath is an .xlsx or .csv table. Ignored when FITPaths is set.
	InputPath string
	Sheet     string
	// FITPaths are activity files of the single user described by FIT.
	FITPaths []string
	FIT      ingest.FITOptions

	OutDir     string
	Region     string // countyCode to keep; empty keeps every user
	Thresholds stepcadence.Thresholds
	CellPolicy stepcadence.CellPolicy
	Format     string // csv|parquet|sqlite
	Overwrite  bool
	Logger     *zap.Logger
}

// Result returns generated output paths.
type Result struct {
	OutputDir    string                   `json:"output_dir"`
	SummaryPath  string                   `json:"summary_path"`
	ManifestPath string                   `json:"manifest_path"`
	NotesPath    string                   `json:"notes_path"`
	Rows         []stepcadence.SummaryRow `json:"-"`
	Warnings     []string                 `json:"warnings,omitempty"`
}

// BytesOptions configures RunBytes.
type BytesOptions struct {
	SourceFileName string
	Data           []byte
	Sheet          string
	Region         string
	Thresholds     stepcadence.Thresholds
	CellPolicy     stepcadence.CellPolicy
	Format         string // csv|parquet
	Logger         *zap.Logger
}

// BytesResult holds generated artifacts keyed by file name.
type BytesResult struct {
	Files    map[string][]byte
	Rows     []stepcadence.SummaryRow
	Warnings []string
}

// Manifest records the parameters and counts of one run.
type Manifest struct {
	GeneratedAt   time.Time                   `json:"generated_at"`
	Source        string                      `json:"source"`
	Region        string                      `json:"region,omitempty"`
	Thresholds    stepcadence.Thresholds      `json:"thresholds"`
	InvalidCells  string                      `json:"invalid_cells"`
	Format        string                      `json:"format"`
	InputUsers    int                         `json:"input_users"`
	RetainedUsers int                         `json:"retained_users"`
	Days          int                         `json:"days"`
	Columns       []string                    `json:"columns"`
	Cohort        []stepcadence.CohortSummary `json:"cohort"`
	Warnings      []string                    `json:"warnings,omitempty"`
}
