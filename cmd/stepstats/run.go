package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/lucasjlepore/stepcadence"
	"github.com/lucasjlepore/stepcadence/internal/config"
	"github.com/lucasjlepore/stepcadence/pipeline"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Summarize a two-header-row workbook or CSV export",
	Example: `  stepstats analyze --input steps.xlsx --out results --invalid-cells strict
  stepstats analyze -i steps.csv -o results --region "" --format parquet --preview 10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptions(cmd)
		if err != nil {
			return err
		}
		opts.InputPath, _ = cmd.Flags().GetString("input")
		opts.Sheet, _ = cmd.Flags().GetString("sheet")
		return execute(cmd, opts)
	},
}

var fitCmd = &cobra.Command{
	Use:   "fit [file.fit...]",
	Short: "Summarize the FIT activity files of one user",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := runOptions(cmd)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		opts.FITPaths = args
		opts.FIT.UserID, _ = flags.GetString("user")
		opts.FIT.Region.CountyCode, _ = flags.GetString("county")
		opts.FIT.Region.CensusArea, _ = flags.GetString("census-area")
		opts.FIT.StrideCadence, _ = flags.GetBool("stride-cadence")
		// The region filter would drop the single FIT user unless it matches.
		if !flags.Changed("region") {
			opts.Region = ""
		}
		return execute(cmd, opts)
	},
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("out", "o", "", "Output directory")
	f.String("format", "", "Summary format: csv|parquet|sqlite")
	f.String("region", "", `countyCode to keep ("" keeps every user)`)
	f.String("invalid-cells", "", "Invalid cell policy: strict|missing")
	f.Bool("overwrite", false, "Allow writing into non-empty output directories")
	f.Int("min-all", stepcadence.DefaultMinAllSteps, "Minimum steps for a valid All day")
	f.Int("min-walking", stepcadence.DefaultMinWalkingSteps, "Minimum steps for a valid Walking day")
	f.Int("min-active", stepcadence.DefaultMinActiveSteps, "Minimum steps for a valid Active day")
	f.Int("preview", 0, "Print the first N summary rows")
}

// runOptions applies explicitly set flags over the loaded config.
func runOptions(cmd *cobra.Command) (pipeline.Options, error) {
	c := *cfg
	flags := cmd.Flags()
	if flags.Changed("out") {
		c.Output.Dir, _ = flags.GetString("out")
	}
	if flags.Changed("format") {
		c.Output.Format, _ = flags.GetString("format")
	}
	if flags.Changed("region") {
		c.Region, _ = flags.GetString("region")
	}
	if flags.Changed("invalid-cells") {
		c.InvalidCells, _ = flags.GetString("invalid-cells")
	}
	if flags.Changed("overwrite") {
		c.Output.Overwrite, _ = flags.GetBool("overwrite")
	}
	if flags.Changed("min-all") {
		c.Thresholds.MinAllSteps, _ = flags.GetInt("min-all")
	}
	if flags.Changed("min-walking") {
		c.Thresholds.MinWalkingSteps, _ = flags.GetInt("min-walking")
	}
	if flags.Changed("min-active") {
		c.Thresholds.MinActiveSteps, _ = flags.GetInt("min-active")
	}
	if err := c.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	if strings.TrimSpace(c.Output.Dir) == "" {
		return pipeline.Options{}, fmt.Errorf("output directory is required (--out or output.dir)")
	}
	policy, err := c.CellPolicy()
	if err != nil {
		return pipeline.Options{}, err
	}
	return optionsFromConfig(&c, policy), nil
}

func optionsFromConfig(c *config.Config, policy stepcadence.CellPolicy) pipeline.Options {
	return pipeline.Options{
		OutDir:     c.Output.Dir,
		Region:     c.Region,
		Thresholds: c.Thresholds,
		CellPolicy: policy,
		Format:     c.Output.Format,
		Overwrite:  c.Output.Overwrite,
		Logger:     logger,
	}
}

func execute(cmd *cobra.Command, opts pipeline.Options) error {
	result, err := pipeline.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "stepstats complete\n")
	fmt.Fprintf(out, "Output dir:          %s\n", result.OutputDir)
	fmt.Fprintf(out, "activity summary:    %s\n", result.SummaryPath)
	fmt.Fprintf(out, "manifest.json:       %s\n", result.ManifestPath)
	fmt.Fprintf(out, "cohort notes:        %s\n", result.NotesPath)
	fmt.Fprintf(out, "users:               %d\n", len(result.Rows))
	for _, w := range result.Warnings {
		fmt.Fprintf(out, "warning:             %s\n", w)
	}

	if n, _ := cmd.Flags().GetInt("preview"); n > 0 {
		fmt.Fprintln(out)
		return renderPreview(out, result.Rows, n)
	}
	return nil
}

func renderPreview(out io.Writer, rows []stepcadence.SummaryRow, n int) error {
	if n > len(rows) {
		n = len(rows)
	}
	data := make([][]string, 0, n)
	for _, r := range rows[:n] {
		data = append(data, r.Record())
	}

	table := tablewriter.NewWriter(out)
	table.Header(stepcadence.OutputColumns)
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}
