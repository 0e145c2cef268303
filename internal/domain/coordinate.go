package domain

import (
	"math"
	"strconv"
	"strings"
)

// Axis tags a coordinate as latitude or longitude.
type Axis int

const (
	AxisLatitude Axis = iota
	AxisLongitude
)

func (a Axis) String() string {
	if a == AxisLongitude {
		return "longitude"
	}
	return "latitude"
}

// CorrectCoordinate repairs a hand-typed decimal-degree value and reports
// whether a plausible coordinate could be recovered.
//
// The value is stripped to digits, '.' and '-' (comma counts as a decimal
// separator), forced negative, then divided by ten while its magnitude exceeds
// the axis ceiling and the region floor. The result must fall strictly inside
// the coarse band for the axis, otherwise the row is unrecoverable.
//
//	CorrectCoordinate("25.431", AxisLatitude, DefaultRegion())  // -2.5431, true
//	CorrectCoordinate("-4300", AxisLongitude, DefaultRegion())  // -43, true
func CorrectCoordinate(raw string, axis Axis, region Region) (float64, bool) {
	v, ok := parseCoordinate(raw)
	if !ok {
		return 0, false
	}

	if v > 0 {
		v = -v
	}

	band := region.band(axis)
	// v is finite, so repeated division always drops below one of the bounds.
	for math.Abs(v) > band.Ceiling && math.Abs(v) > region.Floor {
		v /= 10.0
	}

	if !band.Contains(v) {
		return 0, false
	}
	return v, true
}

func parseCoordinate(raw string) (float64, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", ".")
	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		return 0, false
	}

	// Overflow to ±Inf comes back as ErrRange and is rejected with any other error.
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
