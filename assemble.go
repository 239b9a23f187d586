package stepcadence

import (
	"fmt"
	"strconv"
)

// CategoryStats is the per-user reduction of one category series.
type CategoryStats struct {
	Median Value
	Mean   Value
	Days   Value
}

// CategoryResult maps user IDs to their stats for one category.
type CategoryResult struct {
	Category Category
	Stats    map[string]CategoryStats
}

// Summarize reduces every user series of a category.
func Summarize(series DailySeries) (CategoryResult, error) {
	res := CategoryResult{Category: series.Category, Stats: make(map[string]CategoryStats, len(series.Users))}
	for _, us := range series.Users {
		values := us.Values()
		var cs CategoryStats
		for _, kind := range []Statistic{StatMedian, StatMean, StatCount} {
			v, err := Compute(kind, values)
			if err != nil {
				return CategoryResult{}, err
			}
			switch kind {
			case StatMedian:
				cs.Median = v
			case StatMean:
				cs.Mean = v
			case StatCount:
				cs.Days = v
			}
		}
		res.Stats[us.UserID] = cs
	}
	return res, nil
}

// SummaryRow is one output row. Cells may be Missing until presented.
type SummaryRow struct {
	UserID string
	Region Region
	Stats  map[Category]CategoryStats
}

// OutputColumns is the flat output header.
var OutputColumns = []string{
	ColumnUserID, ColumnCountyCode, ColumnCensusArea,
	"All_Days", "Walking_Days", "Active_Days",
	"Median_All_Steps", "Mean_All_Steps",
	"Median_Walking_Steps", "Mean_Walking_Steps",
	"Median_Active_Steps", "Mean_Active_Steps",
}

// Assemble left-joins category results onto the anchor users. Users a result
// does not mention get Missing cells for that category.
func Assemble(anchor []UserRow, results map[Category]CategoryResult) []SummaryRow {
	rows := make([]SummaryRow, 0, len(anchor))
	for _, u := range anchor {
		row := SummaryRow{UserID: u.UserID, Region: u.Region, Stats: make(map[Category]CategoryStats, len(Categories))}
		for _, c := range Categories {
			res, ok := results[c]
			if !ok {
				row.Stats[c] = CategoryStats{}
				continue
			}
			row.Stats[c] = res.Stats[u.UserID]
		}
		rows = append(rows, row)
	}
	return rows
}

// Days returns the valid-day count of a category, zero when missing.
func (r SummaryRow) Days(c Category) int {
	return int(r.Stats[c].Days.Or(0))
}

// Median returns the presented median of a category.
func (r SummaryRow) Median(c Category) float64 {
	return r.Stats[c].Median.Or(0)
}

// Mean returns the presented mean of a category.
func (r SummaryRow) Mean(c Category) float64 {
	return r.Stats[c].Mean.Or(0)
}

// Record renders the row in OutputColumns order, Missing as 0.
func (r SummaryRow) Record() []string {
	rec := []string{r.UserID, r.Region.CountyCode, r.Region.CensusArea}
	for _, c := range Categories {
		rec = append(rec, strconv.Itoa(r.Days(c)))
	}
	for _, c := range Categories {
		rec = append(rec, formatStat(r.Median(c)), fmt.Sprintf("%.2f", r.Mean(c)))
	}
	return rec
}

func formatStat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
