package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCollectionDate(t *testing.T) {
	mar15 := time.Date(2018, 3, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		in     string
		want   time.Time
		wantOK bool
	}{
		{"day first", "15/03/2018", mar15, true},
		{"day first unpadded", "5/3/2018", time.Date(2018, 3, 5, 0, 0, 0, 0, time.UTC), true},
		{"day first with time", "15/03/2018 10:30:00", mar15, true},
		{"two digit year", "15/03/18", mar15, true},
		{"iso", "2018-03-15", mar15, true},
		{"iso with time", "2018-03-15 00:00:00", mar15, true},
		{"rfc3339", "2018-03-15T09:00:00-03:00", mar15, true},
		{"dashes", "15-03-2018", mar15, true},
		{"dots", "15.03.2018", mar15, true},
		{"padded", "  15/03/2018 ", mar15, true},
		{"impossible month", "30/28/2018", time.Time{}, false},
		{"impossible day", "31/02/2018", time.Time{}, false},
		{"iso impossible day", "2018-02-30", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"text", "sem data", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCollectionDate(tt.in)
			require.Equal(t, tt.wantOK, ok)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestParseMeasurement(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"7.2", 7.2},
		{" 7.2 ", 7.2},
		{"7,2", 7.2},
		{"-0.5", -0.5},
		{"", Sentinel},
		{"ND", Sentinel},
		{"<0.01", Sentinel},
		{"NaN", Sentinel},
		{"Inf", Sentinel},
		{"1e999", Sentinel},
		{"0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseMeasurement(tt.in)
			assert.False(t, math.IsNaN(got))
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestCoerceMeasurements(t *testing.T) {
	got := CoerceMeasurements(map[Parameter]string{
		ParamPH:        "7.1",
		ParamTurbidity: "abc",
	})

	require.Len(t, got, len(Parameters))
	assert.InDelta(t, 7.1, got[ParamPH], 1e-12)
	assert.Equal(t, Sentinel, got[ParamTurbidity])
	assert.Equal(t, Sentinel, got[ParamSalinity])
}
