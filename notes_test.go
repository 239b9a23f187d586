package stepcadence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCohortNotes(t *testing.T) {
	table := testTable(
		testUser("a", steps(600), steps(800)),
		testUser("b", steps(1000)),
		testUser("c"),
	)
	a, err := Analyze(context.Background(), table, strictConfig())
	require.NoError(t, err)

	cohort := SummarizeCohort(a.Rows)
	require.Len(t, cohort, len(Categories))
	assert.Equal(t, CategoryAll, cohort[0].Category)
	assert.Equal(t, 2, cohort[0].UsersWithData)
	assert.Equal(t, 1, cohort[0].UsersWithout)
	assert.Equal(t, Present(850), cohort[0].MedianOfMedians)
	assert.Equal(t, 1.0, cohort[0].MeanValidDays)

	notes := BuildCohortNotes(a.Rows, DefaultThresholds())
	for _, want := range []string{
		"Users: 3",
		"all >= 500",
		"- All: 2 users with valid days (1 without)",
		"median daily steps 850",
		"- Active: 0 users",
	} {
		assert.Contains(t, notes, want)
	}
}

func TestBuildCohortNotesRoundsMedian(t *testing.T) {
	table := testTable(
		testUser("a", steps(600), steps(801)),
		testUser("b", steps(1000)),
	)
	a, err := Analyze(context.Background(), table, strictConfig())
	require.NoError(t, err)

	// Medians 700.5 and 1000 give 850.25.
	assert.Equal(t, Present(850.25), SummarizeCohort(a.Rows)[0].MedianOfMedians)
	assert.Contains(t, BuildCohortNotes(a.Rows, DefaultThresholds()), "median daily steps 850\n")
}

func TestBuildCohortNotesEmpty(t *testing.T) {
	notes := BuildCohortNotes(nil, DefaultThresholds())
	assert.Contains(t, notes, "No users in scope.")
}
