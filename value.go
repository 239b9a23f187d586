package stepcadence

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// Value is a possibly-missing step count. The zero Value is Missing.
//
// Missing is the only representation of "no usable value": raw zeros, cells
// that were never measured and days excluded by a threshold all end up here,
// and none of them is ever read back as numeric zero.
type Value struct {
	n       float64
	present bool
}

// Present wraps a measured number.
func Present(n float64) Value {
	return Value{n: n, present: true}
}

// Missing returns the no-data value.
func Missing() Value {
	return Value{}
}

// Get returns the number and whether it is present.
func (v Value) Get() (float64, bool) {
	return v.n, v.present
}

// IsMissing reports whether v carries no number.
func (v Value) IsMissing() bool {
	return !v.present
}

// Or returns the number, or def when missing. Only presentation code should
// call this.
func (v Value) Or(def float64) float64 {
	if !v.present {
		return def
	}
	return v.n
}

// Equal reports whether both values are missing or both hold the same number.
func (v Value) Equal(o Value) bool {
	return v.present == o.present && (!v.present || v.n == o.n)
}

// Below reports whether v is present and strictly less than floor.
func (v Value) Below(floor float64) bool {
	return v.present && v.n < floor
}

func (v Value) String() string {
	if !v.present {
		return "NA"
	}
	return strconv.FormatFloat(v.n, 'f', -1, 64)
}

// MarshalJSON encodes Missing as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v.n, 'f', -1, 64), nil
}

// UnmarshalJSON decodes null as Missing and a number as Present.
func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = Missing()
		return nil
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("decode step value %s: %w", b, err)
	}
	*v = Present(n)
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
