package stepcadence

import (
	"fmt"
	"strings"
)

// Category names one daily intensity measure.
type Category string

const (
	CategoryAll     Category = "All"
	CategoryWalking Category = "Walking"
	CategoryActive  Category = "Active"
)

// Categories lists every category in output order.
var Categories = []Category{CategoryAll, CategoryWalking, CategoryActive}

// Default thresholds.
const (
	DefaultMinAllSteps     = 500
	DefaultMinWalkingSteps = 1
	DefaultMinActiveSteps  = 1
)

// Thresholds holds the per-category validity floors.
type Thresholds struct {
	MinAllSteps     int `yaml:"min_all_step_threshold" json:"min_all_step_threshold"`
	MinWalkingSteps int `yaml:"min_walking_step_threshold" json:"min_walking_step_threshold"`
	MinActiveSteps  int `yaml:"min_active_step_threshold" json:"min_active_step_threshold"`
}

// DefaultThresholds returns the reference floors (500, 1, 1).
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinAllSteps:     DefaultMinAllSteps,
		MinWalkingSteps: DefaultMinWalkingSteps,
		MinActiveSteps:  DefaultMinActiveSteps,
	}
}

func (t Thresholds) validate() error {
	if t.MinAllSteps < 0 || t.MinWalkingSteps < 0 || t.MinActiveSteps < 0 {
		return fmt.Errorf("thresholds must be non-negative: %+v", t)
	}
	return nil
}

// walkingBuckets are cadence buckets of 60 steps/min and above.
var walkingBuckets = []Metric{
	MetricCadence60, MetricCadence90, MetricCadence120, MetricCadence150,
	MetricCadence180, MetricCadence210, MetricCadence240, MetricCadence270,
	MetricCadence300, MetricCadenceAbove,
}

// activeBuckets are cadence buckets of 90 steps/min and above.
var activeBuckets = walkingBuckets[1:]

// CategorySpec is everything a category pipeline needs.
type CategorySpec struct {
	Category Category
	Metrics  []Metric

	// BucketFloor is applied to each constituent before summing.
	BucketFloor float64
	// DayThreshold is applied to the day sum.
	DayThreshold float64
	// MinContributors is the number of present constituents a day needs to
	// have a sum at all.
	MinContributors int
}

// Classify returns the columns and floors of a category under the default
// thresholds.
func Classify(c Category) (CategorySpec, error) {
	return ClassifyWith(c, DefaultThresholds())
}

// ClassifyWith is Classify with explicit thresholds.
func ClassifyWith(c Category, th Thresholds) (CategorySpec, error) {
	switch c {
	case CategoryAll:
		t := float64(th.MinAllSteps)
		return CategorySpec{
			Category:        c,
			Metrics:         []Metric{MetricSteps},
			BucketFloor:     t,
			DayThreshold:    t,
			MinContributors: 1,
		}, nil
	case CategoryWalking:
		return CategorySpec{
			Category:        c,
			Metrics:         append([]Metric(nil), walkingBuckets...),
			BucketFloor:     1,
			DayThreshold:    float64(th.MinWalkingSteps),
			MinContributors: 1,
		}, nil
	case CategoryActive:
		return CategorySpec{
			Category:        c,
			Metrics:         append([]Metric(nil), activeBuckets...),
			BucketFloor:     1,
			DayThreshold:    float64(th.MinActiveSteps),
			MinContributors: 1,
		}, nil
	default:
		return CategorySpec{}, fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}
}

// ParseCategory resolves a case-insensitive category name.
func ParseCategory(name string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(name), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}
