package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func readings(ph, od, turb float64) Measurements {
	return Measurements{ParamPH: ph, ParamDissolvedOxygen: od, ParamTurbidity: turb}
}

func TestRuleset_Classify(t *testing.T) {
	rs := DefaultRuleset()

	tests := []struct {
		name     string
		m        Measurements
		problems string
		count    int
		verdict  Verdict
		statuses [3]Status // ph, od, turbidez
	}{
		{
			name:     "all within standard",
			m:        readings(7.0, 6.0, 50.0),
			verdict:  VerdictApproved,
			statuses: [3]Status{StatusOK, StatusOK, StatusOK},
		},
		{
			name:     "all sentinels",
			m:        readings(0, 0, 0),
			verdict:  VerdictApproved,
			statuses: [3]Status{StatusNoData, StatusNoData, StatusNoData},
		},
		{
			name:     "acidic with low oxygen",
			m:        readings(5.5, 3.0, 0),
			problems: "pH, OD",
			count:    2,
			verdict:  VerdictRejected,
			statuses: [3]Status{StatusOutside, StatusOutside, StatusNoData},
		},
		{
			name:     "missing pH does not fail",
			m:        readings(0, 6.0, 0),
			verdict:  VerdictApproved,
			statuses: [3]Status{StatusNoData, StatusOK, StatusNoData},
		},
		{
			name:     "all three violated in fixed order",
			m:        readings(9.5, 4.9, 100.1),
			problems: "pH, OD, Turbidez",
			count:    3,
			verdict:  VerdictRejected,
			statuses: [3]Status{StatusOutside, StatusOutside, StatusOutside},
		},
		{
			name:     "inclusive limits",
			m:        readings(6.0, 5.0, 100.0),
			verdict:  VerdictApproved,
			statuses: [3]Status{StatusOK, StatusOK, StatusOK},
		},
		{
			name:     "upper pH limit",
			m:        readings(9.0, 0, 0),
			verdict:  VerdictApproved,
			statuses: [3]Status{StatusOK, StatusNoData, StatusNoData},
		},
		{
			name:     "negative pH is a reading",
			m:        readings(-1, 0, 0),
			problems: "pH",
			count:    1,
			verdict:  VerdictRejected,
			statuses: [3]Status{StatusOutside, StatusNoData, StatusNoData},
		},
		{
			name:     "missing keys act as sentinel",
			m:        Measurements{},
			verdict:  VerdictApproved,
			statuses: [3]Status{StatusNoData, StatusNoData, StatusNoData},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := rs.Classify(tt.m)
			assert.Equal(t, tt.count, out.ProblemCount())
			assert.Equal(t, tt.problems, out.ProblemList())
			assert.Equal(t, tt.verdict, out.Verdict)
			assert.Equal(t, tt.statuses[0], out.Status(ParamPH))
			assert.Equal(t, tt.statuses[1], out.Status(ParamDissolvedOxygen))
			assert.Equal(t, tt.statuses[2], out.Status(ParamTurbidity))
		})
	}
}

func TestRuleset_ExtraRuleHonorsSentinel(t *testing.T) {
	rs := append(DefaultRuleset(), AtMost(ParamPhosphorus, "Fosforo", 0.1))

	out := rs.Classify(Measurements{ParamPhosphorus: 0})
	assert.Equal(t, StatusNoData, out.Status(ParamPhosphorus))
	assert.Equal(t, VerdictApproved, out.Verdict)

	out = rs.Classify(Measurements{ParamPhosphorus: 0.3, ParamPH: 4})
	assert.Equal(t, "pH, Fosforo", out.ProblemList())
	assert.Equal(t, VerdictRejected, out.Verdict)
}

func TestOutcome_StatusWithoutRule(t *testing.T) {
	out := DefaultRuleset().Classify(readings(7, 6, 10))
	assert.Equal(t, Status(""), out.Status(ParamSalinity))
}

func TestViolations(t *testing.T) {
	rs := DefaultRuleset()
	records := []Record{
		{Outcome: rs.Classify(readings(5, 3, 0))},
		{Outcome: rs.Classify(readings(7, 3, 200))},
		{Outcome: rs.Classify(readings(7, 6, 10))},
	}

	got := Violations(records)
	assert.Equal(t, map[Parameter]int{
		ParamPH:              1,
		ParamDissolvedOxygen: 2,
		ParamTurbidity:       1,
	}, got)
}
