package stepcadence

import (
	"fmt"
	"strings"
)

// CohortSummary is a cross-user overview of one category.
type CohortSummary struct {
	Category        Category `json:"category"`
	UsersWithData   int      `json:"users_with_data"`
	UsersWithout    int      `json:"users_without_data"`
	TotalValidDays  int      `json:"total_valid_days"`
	MedianOfMedians Value    `json:"median_daily_steps"`
	MeanValidDays   float64  `json:"mean_valid_days"`
}

// SummarizeCohort reduces assembled rows per category. Users with no valid
// days are counted but contribute no median.
func SummarizeCohort(rows []SummaryRow) []CohortSummary {
	out := make([]CohortSummary, 0, len(Categories))
	for _, c := range Categories {
		cs := CohortSummary{Category: c}
		medians := make([]Value, 0, len(rows))
		for _, r := range rows {
			days := r.Days(c)
			cs.TotalValidDays += days
			if days == 0 {
				cs.UsersWithout++
				continue
			}
			cs.UsersWithData++
			medians = append(medians, r.Stats[c].Median)
		}
		cs.MedianOfMedians = Median(medians)
		if len(rows) > 0 {
			cs.MeanValidDays = round2(float64(cs.TotalValidDays) / float64(len(rows)))
		}
		out = append(out, cs)
	}
	return out
}

// BuildCohortNotes turns assembled rows into a short plain-text report.
func BuildCohortNotes(rows []SummaryRow, th Thresholds) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Users: %d\n", len(rows))
	fmt.Fprintf(
		&b,
		"Thresholds: all >= %d steps/day | walking >= %d | active >= %d\n",
		th.MinAllSteps,
		th.MinWalkingSteps,
		th.MinActiveSteps,
	)
	if len(rows) == 0 {
		b.WriteString("\nNo users in scope.\n")
		return strings.TrimSpace(b.String())
	}

	b.WriteString("\nCategories\n")
	for _, cs := range SummarizeCohort(rows) {
		median := "n/a"
		if n, ok := cs.MedianOfMedians.Get(); ok {
			median = fmt.Sprintf("%.0f", n)
		}
		fmt.Fprintf(
			&b,
			"- %s: %d users with valid days (%d without) | %.2f valid days per user | median daily steps %s\n",
			cs.Category,
			cs.UsersWithData,
			cs.UsersWithout,
			cs.MeanValidDays,
			median,
		)
	}
	return strings.TrimSpace(b.String())
}
