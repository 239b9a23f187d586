package stepcadence

import "strings"

// Metric is a second-level column label of the raw table.
type Metric string

const (
	MetricSteps        Metric = "steps"
	MetricCadence30    Metric = "stepCadence30"
	MetricCadence60    Metric = "stepCadence60"
	MetricCadence90    Metric = "stepCadence90"
	MetricCadence120   Metric = "stepCadence120"
	MetricCadence150   Metric = "stepCadence150"
	MetricCadence180   Metric = "stepCadence180"
	MetricCadence210   Metric = "stepCadence210"
	MetricCadence240   Metric = "stepCadence240"
	MetricCadence270   Metric = "stepCadence270"
	MetricCadence300   Metric = "stepCadence300"
	MetricCadenceAbove Metric = "stepCadence>300"
)

// Region column labels. They sit beside the day-indexed metrics.
const (
	ColumnUserID     = "Userid"
	ColumnCountyCode = "countyCode"
	ColumnCensusArea = "censusArea"
)

// CadenceBuckets lists the cadence columns in ascending order.
var CadenceBuckets = []Metric{
	MetricCadence30, MetricCadence60, MetricCadence90, MetricCadence120,
	MetricCadence150, MetricCadence180, MetricCadence210, MetricCadence240,
	MetricCadence270, MetricCadence300, MetricCadenceAbove,
}

// ignoredColumns are day-indexed columns the device export carries that hold
// no step counts.
var ignoredColumns = map[string]bool{
	"date":          true,
	"firstStepTime": true,
	"lastStepTime":  true,
}

// ParseMetric maps a column label onto the metric vocabulary.
func ParseMetric(label string) (Metric, bool) {
	m := Metric(strings.TrimSpace(label))
	if m == MetricSteps {
		return m, true
	}
	for _, b := range CadenceBuckets {
		if m == b {
			return m, true
		}
	}
	return "", false
}

// IsIgnoredColumn reports whether a day-indexed label is known but carries
// no metric.
func IsIgnoredColumn(label string) bool {
	return ignoredColumns[strings.TrimSpace(label)]
}

// Day is the ordinal day identifier of the first header level.
type Day int

// CellKind tags a raw cell.
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellNumber
	CellText
)

// Cell is one raw, unparsed-for-meaning table cell.
type Cell struct {
	Kind CellKind
	Num  float64
	Text string
}

func EmptyCell() Cell           { return Cell{} }
func NumberCell(v float64) Cell { return Cell{Kind: CellNumber, Num: v} }
func TextCell(s string) Cell    { return Cell{Kind: CellText, Text: s} }

// Region holds the single-level region attributes of a user.
type Region struct {
	CountyCode string `json:"county_code"`
	CensusArea string `json:"census_area"`
}

// DayRecord is one user's cells for one day.
type DayRecord struct {
	Day   Day
	Cells map[Metric]Cell
}

// UserRow is one row of the raw table.
type UserRow struct {
	UserID string
	Region Region
	Days   []DayRecord
}

// RawTable is the user-keyed, (Day, Metric)-columned input.
type RawTable struct {
	Days    []Day
	Metrics []Metric
	Users   []UserRow
}

// HasMetric reports whether the table carries a column for m.
func (t *RawTable) HasMetric(m Metric) bool {
	for _, have := range t.Metrics {
		if have == m {
			return true
		}
	}
	return false
}

// Validate checks the table shape against the metric columns the given
// categories need.
func (t *RawTable) Validate(specs ...CategorySpec) error {
	if t == nil {
		return SchemaErrorf("nil table")
	}
	for _, spec := range specs {
		for _, m := range spec.Metrics {
			if !t.HasMetric(m) {
				return SchemaErrorf("missing metric column %q required by %s", m, spec.Category)
			}
		}
	}
	seen := make(map[string]struct{}, len(t.Users))
	for _, u := range t.Users {
		if strings.TrimSpace(u.UserID) == "" {
			return SchemaErrorf("row with empty %s", ColumnUserID)
		}
		if _, dup := seen[u.UserID]; dup {
			return SchemaErrorf("duplicate %s %q", ColumnUserID, u.UserID)
		}
		seen[u.UserID] = struct{}{}
	}
	return nil
}

// FilterRegion returns a table holding only users whose county code matches.
// The input is not modified.
func (t *RawTable) FilterRegion(countyCode string) *RawTable {
	out := &RawTable{
		Days:    append([]Day(nil), t.Days...),
		Metrics: append([]Metric(nil), t.Metrics...),
	}
	for _, u := range t.Users {
		if u.Region.CountyCode == countyCode {
			out.Users = append(out.Users, u)
		}
	}
	return out
}

// UserIDs returns the user IDs in table order.
func (t *RawTable) UserIDs() []string {
	ids := make([]string, 0, len(t.Users))
	for _, u := range t.Users {
		ids = append(ids, u.UserID)
	}
	return ids
}
