package stepcadence

// DayPoint is one day of a daily category series.
type DayPoint struct {
	Day   Day
	Value Value
}

// UserSeries is one user's daily category series, ordered as the table's days.
type UserSeries struct {
	UserID string
	Points []DayPoint
}

// Values returns the series values without day labels.
func (s UserSeries) Values() []Value {
	out := make([]Value, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// DailySeries is the per-user output of one category pipeline.
type DailySeries struct {
	Category Category
	Users    []UserSeries
}

// Aggregate sums the masked constituents of each day.
//
// A day with fewer than spec.MinContributors present buckets is Missing;
// missing buckets otherwise contribute nothing. Sums below spec.DayThreshold
// are Missing as well.
func Aggregate(f *Frame, spec CategorySpec) DailySeries {
	minContrib := spec.MinContributors
	if minContrib < 1 {
		minContrib = 1
	}
	out := DailySeries{Category: spec.Category, Users: make([]UserSeries, len(f.Users))}
	for i, u := range f.Users {
		us := UserSeries{UserID: u.UserID, Points: make([]DayPoint, 0, len(u.Days))}
		for _, d := range u.Days {
			us.Points = append(us.Points, DayPoint{Day: d.Day, Value: sumDay(d, spec.Metrics, minContrib, spec.DayThreshold)})
		}
		out.Users[i] = us
	}
	return out
}

func sumDay(d DayValues, metrics []Metric, minContrib int, threshold float64) Value {
	var (
		sum      float64
		contribs int
	)
	for _, m := range metrics {
		if n, ok := d.Values[m].Get(); ok {
			sum += n
			contribs++
		}
	}
	if contribs < minContrib {
		return Missing()
	}
	v := Present(sum)
	if v.Below(threshold) {
		return Missing()
	}
	return v
}
