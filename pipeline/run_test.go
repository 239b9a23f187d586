package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/lucasjlepore/stepcadence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixtureUser struct {
	id, county, area string
	// days[d] maps metric labels to cell text for day d+1.
	days []map[stepcadence.Metric]string
}

// gridCSV renders users as a two-header-row CSV carrying every metric column.
func gridCSV(days int, users ...fixtureUser) string {
	metrics := append([]stepcadence.Metric{stepcadence.MetricSteps}, stepcadence.CadenceBuckets...)
	level0 := []string{"", "", ""}
	level1 := []string{stepcadence.ColumnUserID, stepcadence.ColumnCountyCode, stepcadence.ColumnCensusArea}
	for d := 1; d <= days; d++ {
		for i, m := range metrics {
			label := ""
			if i == 0 {
				label = strconv.Itoa(d)
			}
			level0 = append(level0, label)
			level1 = append(level1, string(m))
		}
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(level0)
	_ = w.Write(level1)
	for _, u := range users {
		rec := []string{u.id, u.county, u.area}
		for d := 0; d < days; d++ {
			for _, m := range metrics {
				text := ""
				if d < len(u.days) {
					text = u.days[d][m]
				}
				rec = append(rec, text)
			}
		}
		_ = w.Write(rec)
	}
	w.Flush()
	return b.String()
}

func stepsDay(n string) map[stepcadence.Metric]string {
	return map[stepcadence.Metric]string{stepcadence.MetricSteps: n}
}

var inputCSV = gridCSV(4,
	fixtureUser{id: "U1", county: "GBR", area: "E01", days: []map[stepcadence.Metric]string{
		stepsDay("520"), stepsDay("480"), stepsDay("0"), stepsDay("600"),
	}},
	fixtureUser{id: "U2", county: "GBR", area: "E02", days: []map[stepcadence.Metric]string{
		{stepcadence.MetricSteps: "0", stepcadence.MetricCadence60: "0", stepcadence.MetricCadence90: "0"},
		{stepcadence.MetricSteps: "0", stepcadence.MetricCadence60: "1", stepcadence.MetricCadence90: "2"},
		stepsDay("0"),
	}},
	fixtureUser{id: "U3", county: "GBR", area: "E03"},
	fixtureUser{id: "U9", county: "USA", area: "X1", days: []map[stepcadence.Metric]string{
		{stepcadence.MetricSteps: "900", stepcadence.MetricCadence60: "10", stepcadence.MetricCadence90: "10"},
		{stepcadence.MetricSteps: "900", stepcadence.MetricCadence60: "10", stepcadence.MetricCadence90: "10"},
		{stepcadence.MetricSteps: "900", stepcadence.MetricCadence60: "10", stepcadence.MetricCadence90: "10"},
		{stepcadence.MetricSteps: "900", stepcadence.MetricCadence60: "10", stepcadence.MetricCadence90: "10"},
	}},
)

func testThresholds() stepcadence.Thresholds {
	return stepcadence.DefaultThresholds()
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "steps.csv")
	require.NoError(t, os.WriteFile(path, []byte(inputCSV), 0o644))
	return path
}

func readCSVRows(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func regionOptions(t *testing.T, format string) Options {
	t.Helper()
	return Options{
		InputPath:  writeInput(t),
		OutDir:     filepath.Join(t.TempDir(), "out"),
		Region:     "GBR",
		Thresholds: testThresholds(),
		CellPolicy: stepcadence.CellPolicyStrict,
		Format:     format,
	}
}

func TestRunWritesCSVSummary(t *testing.T) {
	res, err := Run(context.Background(), regionOptions(t, "csv"))
	require.NoError(t, err)

	data, err := os.ReadFile(res.SummaryPath)
	require.NoError(t, err)
	rows := readCSVRows(t, data)
	require.Len(t, rows, 4, "header + 3 GBR users")
	assert.Equal(t, stepcadence.OutputColumns, rows[0])

	want := map[string][]string{
		"U1": {"U1", "GBR", "E01", "2", "0", "0", "560", "560.00", "0", "0.00", "0", "0.00"},
		"U2": {"U2", "GBR", "E02", "0", "1", "1", "0", "0.00", "3", "3.00", "2", "2.00"},
		"U3": {"U3", "GBR", "E03", "0", "0", "0", "0", "0.00", "0", "0.00", "0", "0.00"},
	}
	for _, row := range rows[1:] {
		exp, ok := want[row[0]]
		require.True(t, ok, "unexpected user %q in output", row[0])
		assert.Equal(t, exp, row)
	}
	assert.FileExists(t, res.NotesPath)
}

func TestRunManifestDecodes(t *testing.T) {
	res, err := Run(context.Background(), regionOptions(t, "csv"))
	require.NoError(t, err)

	data, err := os.ReadFile(res.ManifestPath)
	require.NoError(t, err)
	var manifest Manifest
	require.NoError(t, json.Unmarshal(data, &manifest))

	assert.Equal(t, 4, manifest.InputUsers)
	assert.Equal(t, 3, manifest.RetainedUsers)
	assert.Equal(t, "strict", manifest.InvalidCells)
	assert.Equal(t, 4, manifest.Days)
	require.Len(t, manifest.Cohort, len(stepcadence.Categories))

	all := manifest.Cohort[0]
	assert.Equal(t, stepcadence.CategoryAll, all.Category)
	median, ok := all.MedianOfMedians.Get()
	require.True(t, ok)
	assert.Equal(t, 560.0, median)

	// Only U2 has an Active day.
	active := manifest.Cohort[2]
	assert.Equal(t, 1, active.UsersWithData)
	assert.Equal(t, 2, active.UsersWithout)
}

func TestRunManifestMissingMedianIsNull(t *testing.T) {
	opts := regionOptions(t, "csv")
	opts.Region = "NOWHERE"
	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Warnings)

	data, err := os.ReadFile(res.ManifestPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"median_daily_steps": null`)

	var manifest Manifest
	require.NoError(t, json.Unmarshal(data, &manifest))
	require.NotEmpty(t, manifest.Cohort)
	assert.True(t, manifest.Cohort[0].MedianOfMedians.IsMissing())
}

func TestRunRefusesNonEmptyOutDir(t *testing.T) {
	outDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outDir, "keep.txt"), []byte("x"), 0o644))

	_, err := Run(context.Background(), Options{
		InputPath:  writeInput(t),
		OutDir:     outDir,
		Thresholds: testThresholds(),
		CellPolicy: stepcadence.CellPolicyStrict,
	})
	assert.Error(t, err)
}

func TestRunWritesParquet(t *testing.T) {
	res, err := Run(context.Background(), regionOptions(t, "parquet"))
	require.NoError(t, err)

	data, err := os.ReadFile(res.SummaryPath)
	require.NoError(t, err)
	require.Greater(t, len(data), 8)
	assert.Equal(t, "PAR1", string(data[:4]))
	assert.Equal(t, "PAR1", string(data[len(data)-4:]))
}

func TestRunBytesProducesArtifacts(t *testing.T) {
	res, err := RunBytes(context.Background(), BytesOptions{
		SourceFileName: "steps.csv",
		Data:           []byte(inputCSV),
		Thresholds:     testThresholds(),
		CellPolicy:     stepcadence.CellPolicyMissing,
		Format:         "csv",
	})
	require.NoError(t, err)

	for _, name := range []string{"activity_summary.csv", "manifest.json", "cohort_notes.md"} {
		assert.Contains(t, res.Files, name)
	}
	rows := readCSVRows(t, res.Files["activity_summary.csv"])
	assert.Len(t, rows, 5, "header + 4 users without region filter")
}

func TestRunBytesRejectsSQLite(t *testing.T) {
	_, err := RunBytes(context.Background(), BytesOptions{
		SourceFileName: "steps.csv",
		Data:           []byte(inputCSV),
		Thresholds:     testThresholds(),
		CellPolicy:     stepcadence.CellPolicyStrict,
		Format:         "sqlite",
	})
	assert.Error(t, err)
}

func TestRunRequiresCellPolicy(t *testing.T) {
	_, err := RunBytes(context.Background(), BytesOptions{
		SourceFileName: "steps.csv",
		Data:           []byte(inputCSV),
		Thresholds:     testThresholds(),
	})
	assert.ErrorIs(t, err, stepcadence.ErrCellPolicyUnset)
}
