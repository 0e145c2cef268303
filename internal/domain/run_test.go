package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSummary(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fc := clockwork.NewFakeClockAt(start)
	SetClock(fc)
	t.Cleanup(func() { SetClock(nil) })

	s := StartRun("in.xlsx", "out.csv", "SAO LUIS")
	_, err := uuid.Parse(s.ID)
	require.NoError(t, err)
	assert.Equal(t, start, s.StartedAt)
	assert.Zero(t, s.Duration())

	fc.Advance(3 * time.Second)

	rs := DefaultRuleset()
	s = s.Finish([]Record{
		{Outcome: rs.Classify(readings(7, 6, 10))},
		{Outcome: rs.Classify(readings(4, 6, 10))},
		{Outcome: rs.Classify(readings(0, 0, 0))},
	})

	assert.Equal(t, 3, s.RowsWritten)
	assert.Equal(t, 2, s.Approved)
	assert.Equal(t, 1, s.Rejected)
	assert.Equal(t, map[Parameter]int{ParamPH: 1}, s.Violations)
	assert.Equal(t, 3*time.Second, s.Duration())
}

func TestStartRun_UniqueIDs(t *testing.T) {
	a := StartRun("", "", "")
	b := StartRun("", "", "")
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRecord_Year(t *testing.T) {
	r := Record{CollectedOn: time.Date(2019, 7, 1, 0, 0, 0, 0, time.UTC)}
	assert.Equal(t, 2019, r.Year())
}
