package ingest

import (
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/lucasjlepore/stepcadence"
	"github.com/tormoder/fit"
)

const defaultMaxGap = 10 * time.Second

// FITOptions describes the single user a set of FIT activity files belongs to.
type FITOptions struct {
	UserID string
	Region stepcadence.Region

	// StrideCadence doubles recorded cadence, for devices that log running
	// cadence in strides per minute.
	StrideCadence bool
	// MaxGap bounds the interval a record may account for. Longer gaps
	// (pauses, file boundaries) contribute no steps.
	MaxGap time.Duration
	// Location sets day boundaries; nil means UTC.
	Location *time.Location
}

// ReadFITFiles decodes FIT activity files from disk. See FromFIT.
func ReadFITFiles(opts FITOptions, paths ...string) (*stepcadence.RawTable, error) {
	readers := make([]io.Reader, 0, len(paths))
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		readers = append(readers, f)
	}
	return FromFIT(opts, readers...)
}

type cadenceSample struct {
	ts  time.Time
	spm float64
}

// FromFIT builds a one-user raw table from FIT activity files. Each record
// accounts for cadence*dt steps since the previous record, credited to
// `steps` and to the cadence bucket of that record. Days run from the first
// to the last recorded calendar day; days without records have empty cells.
func FromFIT(opts FITOptions, sources ...io.Reader) (*stepcadence.RawTable, error) {
	if opts.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	maxGap := opts.MaxGap
	if maxGap <= 0 {
		maxGap = defaultMaxGap
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	samples := make([]cadenceSample, 0, 4096)
	for i, src := range sources {
		decoded, err := fit.Decode(src)
		if err != nil {
			return nil, fmt.Errorf("decode FIT source %d: %w", i, err)
		}
		activity, err := decoded.Activity()
		if err != nil {
			return nil, fmt.Errorf("activity FIT expected (source %d): %w", i, err)
		}
		for _, rec := range activity.Records {
			if rec == nil || rec.Timestamp.IsZero() || fit.IsBaseTime(rec.Timestamp) {
				continue
			}
			spm, ok := extractCadence(rec)
			if !ok {
				continue
			}
			if opts.StrideCadence {
				spm *= 2
			}
			samples = append(samples, cadenceSample{ts: rec.Timestamp, spm: spm})
		}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].ts.Before(samples[j].ts) })

	table := &stepcadence.RawTable{
		Metrics: append([]stepcadence.Metric{stepcadence.MetricSteps}, stepcadence.CadenceBuckets...),
	}
	user := stepcadence.UserRow{UserID: opts.UserID, Region: opts.Region}
	if len(samples) == 0 {
		table.Users = []stepcadence.UserRow{user}
		return table, nil
	}

	first := calendarDay(samples[0].ts, loc)
	totals := make(map[stepcadence.Day]map[stepcadence.Metric]float64)
	lastDay := stepcadence.Day(1)
	for i := 1; i < len(samples); i++ {
		dt := samples[i].ts.Sub(samples[i-1].ts)
		if dt <= 0 || dt > maxGap {
			continue
		}
		day := stepcadence.Day(math.Round(calendarDay(samples[i].ts, loc).Sub(first).Hours()/24)) + 1
		if day > lastDay {
			lastDay = day
		}
		n := samples[i].spm * dt.Minutes()
		if n <= 0 {
			continue
		}
		if totals[day] == nil {
			totals[day] = make(map[stepcadence.Metric]float64)
		}
		totals[day][stepcadence.MetricSteps] += n
		if bucket, ok := CadenceBucket(samples[i].spm); ok {
			totals[day][bucket] += n
		}
	}

	for d := stepcadence.Day(1); d <= lastDay; d++ {
		table.Days = append(table.Days, d)
		cells := make(map[stepcadence.Metric]stepcadence.Cell)
		for m, n := range totals[d] {
			cells[m] = stepcadence.NumberCell(math.Round(n))
		}
		user.Days = append(user.Days, stepcadence.DayRecord{Day: d, Cells: cells})
	}
	table.Users = []stepcadence.UserRow{user}
	return table, nil
}

// CadenceBucket maps a cadence in steps/min to its bucket column. Bucket N
// covers [N, N+30); stepCadence>300 covers 330 and above. Cadences below 30
// only count toward total steps.
func CadenceBucket(spm float64) (stepcadence.Metric, bool) {
	if spm < 30 || math.IsNaN(spm) {
		return "", false
	}
	idx := int(spm/30) - 1
	if idx >= len(stepcadence.CadenceBuckets) {
		idx = len(stepcadence.CadenceBuckets) - 1
	}
	return stepcadence.CadenceBuckets[idx], true
}

func calendarDay(ts time.Time, loc *time.Location) time.Time {
	t := ts.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func extractCadence(rec *fit.RecordMsg) (float64, bool) {
	cad256 := rec.GetCadence256Scaled()
	if !math.IsNaN(cad256) && !math.IsInf(cad256, 0) && cad256 > 0 {
		return cad256, true
	}
	if rec.Cadence == math.MaxUint8 {
		return 0, false
	}
	return float64(rec.Cadence), true
}
