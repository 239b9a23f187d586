package stepcadence

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CellPolicy decides what happens to cells that are neither empty nor a
// non-negative number. There is no default: the zero value is rejected.
type CellPolicy uint8

const (
	CellPolicyUnset CellPolicy = iota
	// CellPolicyStrict fails the run on the first invalid cell.
	CellPolicyStrict
	// CellPolicyMissing treats invalid cells as missing.
	CellPolicyMissing
)

// ParseCellPolicy accepts "strict" or "missing".
func ParseCellPolicy(s string) (CellPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return CellPolicyStrict, nil
	case "missing":
		return CellPolicyMissing, nil
	case "":
		return CellPolicyUnset, ErrCellPolicyUnset
	default:
		return CellPolicyUnset, fmt.Errorf("unsupported invalid-cell policy %q (expected strict|missing)", s)
	}
}

func (p CellPolicy) String() string {
	switch p {
	case CellPolicyStrict:
		return "strict"
	case CellPolicyMissing:
		return "missing"
	default:
		return "unset"
	}
}

// DayValues holds one user's masked bucket values for one day.
type DayValues struct {
	Day    Day
	Values map[Metric]Value
}

// UserFrame holds one user's masked days, in table order.
type UserFrame struct {
	UserID string
	Days   []DayValues
}

// Frame is a masked table restricted to a set of metric columns.
type Frame struct {
	Metrics []Metric
	Users   []UserFrame
}

// Normalize converts the raw cells of the given metrics into Values. Empty
// cells and raw zeros become Missing.
func Normalize(t *RawTable, metrics []Metric, policy CellPolicy) (*Frame, error) {
	if policy != CellPolicyStrict && policy != CellPolicyMissing {
		return nil, ErrCellPolicyUnset
	}
	out := &Frame{
		Metrics: append([]Metric(nil), metrics...),
		Users:   make([]UserFrame, 0, len(t.Users)),
	}
	for _, u := range t.Users {
		uf := UserFrame{UserID: u.UserID, Days: make([]DayValues, 0, len(u.Days))}
		for _, d := range u.Days {
			dv := DayValues{Day: d.Day, Values: make(map[Metric]Value, len(metrics))}
			for _, m := range metrics {
				v, err := cellValue(d.Cells[m])
				if err != nil {
					if policy == CellPolicyStrict {
						return nil, &CellError{UserID: u.UserID, Day: d.Day, Metric: m, Text: cellText(d.Cells[m])}
					}
					v = Missing()
				}
				dv.Values[m] = v
			}
			uf.Days = append(uf.Days, dv)
		}
		out.Users = append(out.Users, uf)
	}
	return out, nil
}

func cellValue(c Cell) (Value, error) {
	switch c.Kind {
	case CellEmpty:
		return Missing(), nil
	case CellNumber:
		return numberValue(c.Num)
	case CellText:
		s := strings.TrimSpace(c.Text)
		if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "na") {
			return Missing(), nil
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Missing(), ErrInvalidCellValue
		}
		return numberValue(n)
	default:
		return Missing(), ErrInvalidCellValue
	}
}

func numberValue(n float64) (Value, error) {
	switch {
	case math.IsNaN(n):
		return Missing(), nil
	case math.IsInf(n, 0) || n < 0:
		return Missing(), ErrInvalidCellValue
	case n == 0:
		return Missing(), nil
	default:
		return Present(n), nil
	}
}

func cellText(c Cell) string {
	if c.Kind == CellNumber {
		return strconv.FormatFloat(c.Num, 'g', -1, 64)
	}
	return c.Text
}

// Mask returns a copy of f where every present value below floor is Missing.
// Mask(Mask(f, x), x) equals Mask(f, x).
func Mask(f *Frame, floor float64) *Frame {
	out := &Frame{
		Metrics: append([]Metric(nil), f.Metrics...),
		Users:   make([]UserFrame, len(f.Users)),
	}
	for i, u := range f.Users {
		uf := UserFrame{UserID: u.UserID, Days: make([]DayValues, len(u.Days))}
		for j, d := range u.Days {
			vals := make(map[Metric]Value, len(d.Values))
			for m, v := range d.Values {
				if v.Below(floor) {
					v = Missing()
				}
				vals[m] = v
			}
			uf.Days[j] = DayValues{Day: d.Day, Values: vals}
		}
		out.Users[i] = uf
	}
	return out
}

// MaskCategory normalizes the category's constituent columns and applies its
// per-bucket floor.
func MaskCategory(t *RawTable, spec CategorySpec, policy CellPolicy) (*Frame, error) {
	f, err := Normalize(t, spec.Metrics, policy)
	if err != nil {
		return nil, fmt.Errorf("mask %s: %w", spec.Category, err)
	}
	return Mask(f, spec.BucketFloor), nil
}
