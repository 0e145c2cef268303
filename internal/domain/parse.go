package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the output format of collection dates.
const DateLayout = "2006-01-02"

// dateLayouts are tried in order. Day-first layouts come before any
// month-first interpretation, matching how the survey team types dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2/1/2006",
	"02/01/06",
	"2/1/06",
	"02-01-2006",
	"02.01.2006",
}

// ParseCollectionDate parses a collection date cell and returns the calendar
// date at midnight UTC. Impossible dates such as "30/28/2018" fail.
// Excel serial numbers must be converted by the reader beforehand, since the
// epoch depends on the workbook.
func ParseCollectionDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// ParseMeasurement coerces a measurement cell to a number. Blank, unparseable
// and non-finite values become the Sentinel. A comma decimal separator is
// accepted.
func ParseMeasurement(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return Sentinel
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Sentinel
	}
	return v
}

// CoerceMeasurements returns a reading for every known parameter. Parameters
// whose column was absent from the source get the Sentinel.
func CoerceMeasurements(raw map[Parameter]string) Measurements {
	m := make(Measurements, len(Parameters))
	for _, p := range Parameters {
		m[p] = ParseMeasurement(raw[p])
	}
	return m
}
