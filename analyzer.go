// Package stepcadence reduces daily step-cadence tables to per-user activity
// statistics.
package stepcadence

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config controls one aggregation run.
type Config struct {
	Thresholds Thresholds
	CellPolicy CellPolicy
	Logger     *zap.Logger
}

// Analysis contains the daily series, per-category results and the assembled
// rows of one run.
type Analysis struct {
	Series  map[Category]DailySeries
	Results map[Category]CategoryResult
	Rows    []SummaryRow
}

// Analyze runs the All, Walking and Active pipelines over t and joins their
// results by user. t is only read.
func Analyze(ctx context.Context, t *RawTable, cfg Config) (*Analysis, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.CellPolicy != CellPolicyStrict && cfg.CellPolicy != CellPolicyMissing {
		return nil, ErrCellPolicyUnset
	}
	if err := cfg.Thresholds.validate(); err != nil {
		return nil, err
	}

	specs := make([]CategorySpec, len(Categories))
	for i, c := range Categories {
		spec, err := ClassifyWith(c, cfg.Thresholds)
		if err != nil {
			return nil, err
		}
		specs[i] = spec
	}
	if err := t.Validate(specs...); err != nil {
		return nil, err
	}

	log.Info("Aggregating daily activity",
		zap.Int("users", len(t.Users)),
		zap.Int("days", len(t.Days)),
		zap.String("invalid_cells", cfg.CellPolicy.String()))

	series := make([]DailySeries, len(specs))
	results := make([]CategoryResult, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	for i, spec := range specs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, r, err := runCategory(t, spec, cfg.CellPolicy)
			if err != nil {
				return err
			}
			series[i], results[i] = s, r
			log.Debug("Category aggregated",
				zap.String("category", string(spec.Category)),
				zap.Int("metrics", len(spec.Metrics)),
				zap.Float64("day_threshold", spec.DayThreshold))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a := &Analysis{
		Series:  make(map[Category]DailySeries, len(specs)),
		Results: make(map[Category]CategoryResult, len(specs)),
	}
	for i, spec := range specs {
		a.Series[spec.Category] = series[i]
		a.Results[spec.Category] = results[i]
	}
	a.Rows = Assemble(t.Users, a.Results)
	log.Info("Aggregation complete", zap.Int("rows", len(a.Rows)))
	return a, nil
}

func runCategory(t *RawTable, spec CategorySpec, policy CellPolicy) (DailySeries, CategoryResult, error) {
	masked, err := MaskCategory(t, spec, policy)
	if err != nil {
		return DailySeries{}, CategoryResult{}, err
	}
	series := Aggregate(masked, spec)
	res, err := Summarize(series)
	if err != nil {
		return DailySeries{}, CategoryResult{}, fmt.Errorf("summarize %s: %w", spec.Category, err)
	}
	return series, res, nil
}
