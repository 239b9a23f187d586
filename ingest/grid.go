// Package ingest reads raw daily step-cadence tables from workbooks, CSV
// exports and FIT activity files.
package ingest

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasjlepore/stepcadence"
)

// Grid layout:
//
//	row 1: <ignored> | day | day | ...   (blank cells repeat the previous day)
//	row 2: Userid    | metric | metric | ...
//	row 3+: user id  | cell   | cell   | ...
//
// countyCode and censusArea may appear under any day; they are read once per
// user.
const headerRows = 2

type column struct {
	region string
	day    stepcadence.Day
	metric stepcadence.Metric
}

// ParseGrid builds a raw table from a two-header-row grid of strings.
func ParseGrid(rows [][]string) (*stepcadence.RawTable, error) {
	if len(rows) < headerRows {
		return nil, stepcadence.SchemaErrorf("expected two header rows, got %d", len(rows))
	}
	columns, err := parseHeader(rows[0], rows[1])
	if err != nil {
		return nil, err
	}

	table := &stepcadence.RawTable{}
	daySeen := make(map[stepcadence.Day]bool)
	metricSeen := make(map[stepcadence.Metric]bool)
	for _, col := range columns {
		if col.region != "" || col.metric == "" {
			continue
		}
		if !daySeen[col.day] {
			daySeen[col.day] = true
			table.Days = append(table.Days, col.day)
		}
		if !metricSeen[col.metric] {
			metricSeen[col.metric] = true
			table.Metrics = append(table.Metrics, col.metric)
		}
	}
	sort.Slice(table.Days, func(i, j int) bool { return table.Days[i] < table.Days[j] })

	for _, raw := range rows[headerRows:] {
		if blankRow(raw) {
			continue
		}
		table.Users = append(table.Users, parseUserRow(raw, columns, table.Days))
	}
	return table, nil
}

func parseHeader(level0, level1 []string) ([]column, error) {
	width := len(level1)
	if width < 2 {
		return nil, stepcadence.SchemaErrorf("metric header level has no columns")
	}
	columns := make([]column, width)
	var (
		currentDay string
		haveCounty bool
		seen       = make(map[column]bool)
	)
	for j := 1; j < width; j++ {
		if j < len(level0) && strings.TrimSpace(level0[j]) != "" {
			currentDay = strings.TrimSpace(level0[j])
		}
		label := strings.TrimSpace(level1[j])
		switch {
		case label == "":
			continue
		case label == stepcadence.ColumnCountyCode || label == stepcadence.ColumnCensusArea:
			columns[j] = column{region: label}
			haveCounty = haveCounty || label == stepcadence.ColumnCountyCode
			continue
		case stepcadence.IsIgnoredColumn(label):
			continue
		}

		metric, ok := stepcadence.ParseMetric(label)
		if !ok {
			return nil, stepcadence.SchemaErrorf("unknown metric column %q", label)
		}
		if currentDay == "" {
			return nil, stepcadence.SchemaErrorf("metric column %q has no day label", label)
		}
		day, err := parseDay(currentDay)
		if err != nil {
			return nil, err
		}
		col := column{day: day, metric: metric}
		if seen[col] {
			return nil, stepcadence.SchemaErrorf("duplicate column day %d %s", day, metric)
		}
		seen[col] = true
		columns[j] = col
	}
	if !haveCounty {
		return nil, stepcadence.SchemaErrorf("missing %s column", stepcadence.ColumnCountyCode)
	}
	return columns, nil
}

func parseDay(label string) (stepcadence.Day, error) {
	f, err := strconv.ParseFloat(label, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, stepcadence.SchemaErrorf("day label %q is not an ordinal", label)
	}
	return stepcadence.Day(f), nil
}

func parseUserRow(raw []string, columns []column, days []stepcadence.Day) stepcadence.UserRow {
	u := stepcadence.UserRow{UserID: strings.TrimSpace(raw[0])}
	cells := make(map[stepcadence.Day]map[stepcadence.Metric]stepcadence.Cell, len(days))
	for _, d := range days {
		cells[d] = make(map[stepcadence.Metric]stepcadence.Cell)
	}
	for j, col := range columns {
		if j == 0 {
			continue
		}
		text := ""
		if j < len(raw) {
			text = strings.TrimSpace(raw[j])
		}
		switch {
		case col.region == stepcadence.ColumnCountyCode:
			if u.Region.CountyCode == "" {
				u.Region.CountyCode = text
			}
		case col.region == stepcadence.ColumnCensusArea:
			if u.Region.CensusArea == "" {
				u.Region.CensusArea = text
			}
		case col.metric != "":
			cells[col.day][col.metric] = parseCell(text)
		}
	}
	for _, d := range days {
		u.Days = append(u.Days, stepcadence.DayRecord{Day: d, Cells: cells[d]})
	}
	return u
}

func parseCell(text string) stepcadence.Cell {
	if text == "" {
		return stepcadence.EmptyCell()
	}
	if n, err := strconv.ParseFloat(text, 64); err == nil {
		return stepcadence.NumberCell(n)
	}
	return stepcadence.TextCell(text)
}

func blankRow(raw []string) bool {
	for _, s := range raw {
		if strings.TrimSpace(s) != "" {
			return false
		}
	}
	return true
}
