package stepcadence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatistics(t *testing.T) {
	tests := []struct {
		name   string
		values []Value
		median Value
		mean   Value
		days   int
	}{
		{
			name:   "empty",
			values: nil,
			median: Missing(),
			mean:   Missing(),
		},
		{
			name:   "all missing",
			values: []Value{Missing(), Missing()},
			median: Missing(),
			mean:   Missing(),
		},
		{
			name:   "even count",
			values: []Value{Present(600), Missing(), Present(520)},
			median: Present(560),
			mean:   Present(560),
			days:   2,
		},
		{
			name:   "odd count",
			values: []Value{Present(3), Present(1), Present(2)},
			median: Present(2),
			mean:   Present(2),
			days:   3,
		},
		{
			name:   "mean rounds to two decimals",
			values: []Value{Present(1), Present(1), Present(2)},
			median: Present(1),
			mean:   Present(1.33),
			days:   3,
		},
		{
			name:   "median is not rounded",
			values: []Value{Present(1.125), Present(2.5)},
			median: Present(1.8125),
			mean:   Present(1.81),
			days:   2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.median, Median(tt.values))
			assert.Equal(t, tt.mean, Mean(tt.values))
			assert.Equal(t, tt.days, ValidDays(tt.values))
		})
	}
}

func TestCompute(t *testing.T) {
	values := []Value{Present(4), Missing(), Present(8)}

	for name, want := range map[string]Value{"median": Present(6), "MEAN": Present(6), "count": Present(2)} {
		kind, err := ParseStatistic(name)
		require.NoError(t, err)
		got, err := Compute(kind, values)
		require.NoError(t, err)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseStatistic("mode")
	assert.ErrorIs(t, err, ErrUnrecognizedStatistic)
	_, err = Compute(Statistic("max"), values)
	assert.ErrorIs(t, err, ErrUnrecognizedStatistic)
}

func TestCountOfEmptySeriesIsZero(t *testing.T) {
	got, err := Compute(StatCount, nil)
	require.NoError(t, err)
	assert.Equal(t, Present(0), got)
}
