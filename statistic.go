package stepcadence

import (
	"fmt"
	"sort"
	"strings"
)

// Statistic is a cross-day reduction of a daily series.
type Statistic string

const (
	StatMedian Statistic = "median"
	StatMean   Statistic = "mean"
	StatCount  Statistic = "count"
)

// ParseStatistic resolves a statistic name.
func ParseStatistic(name string) (Statistic, error) {
	s := Statistic(strings.ToLower(strings.TrimSpace(name)))
	switch s {
	case StatMedian, StatMean, StatCount:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnrecognizedStatistic, name)
}

// Compute reduces values with the given statistic. Count is reported as a
// present number, zero included.
func Compute(kind Statistic, values []Value) (Value, error) {
	switch kind {
	case StatMedian:
		return Median(values), nil
	case StatMean:
		return Mean(values), nil
	case StatCount:
		return Present(float64(ValidDays(values))), nil
	default:
		return Missing(), fmt.Errorf("%w: %q", ErrUnrecognizedStatistic, string(kind))
	}
}

func presentValues(values []Value) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if n, ok := v.Get(); ok {
			out = append(out, n)
		}
	}
	return out
}

// Median of the present values, Missing when there are none.
func Median(values []Value) Value {
	nums := presentValues(values)
	if len(nums) == 0 {
		return Missing()
	}
	sort.Float64s(nums)
	mid := len(nums) / 2
	if len(nums)%2 == 1 {
		return Present(nums[mid])
	}
	return Present((nums[mid-1] + nums[mid]) / 2)
}

// Mean of the present values rounded to 2 decimals, Missing when there are
// none.
func Mean(values []Value) Value {
	nums := presentValues(values)
	if len(nums) == 0 {
		return Missing()
	}
	var sum float64
	for _, n := range nums {
		sum += n
	}
	return Present(round2(sum / float64(len(nums))))
}

// ValidDays counts present, nonzero values.
func ValidDays(values []Value) int {
	count := 0
	for _, v := range values {
		if n, ok := v.Get(); ok && n != 0 {
			count++
		}
	}
	return count
}
