package xtrigger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/cursus/internal/models"
)

func fixedService(now time.Time) *Service {
	svc := NewService(arbor.NewLogger())
	svc.now = func() time.Time { return now }
	return svc
}

// point < now < point + 10y across the offset variants.
func TestWallClockSatisfied_Offsets(t *testing.T) {
	// "Now" is well after the cycle point but well before point + 10y.
	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := fixedService(now)
	point := "2020-05-05"

	cases := []struct {
		sig  string
		want bool
	}{
		{"wall_clock()", true},
		{"wall_clock(offset=P10Y)", false},
		{"wall_clock(offset=PT2H35M31S)", true},
		{"wall_clock(offset=-PT2H35M31S)", true},
	}
	for _, c := range cases {
		got, err := svc.WallClockSatisfied(c.sig, point)
		require.NoError(t, err, c.sig)
		assert.Equal(t, c.want, got, c.sig)
	}
}

func TestWallClockSatisfied_BeforePoint(t *testing.T) {
	now := time.Date(2020, 5, 4, 0, 0, 0, 0, time.UTC)
	svc := fixedService(now)
	got, err := svc.WallClockSatisfied("wall_clock()", "2020-05-05")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestWallClockSatisfied_IntegerPointRejected(t *testing.T) {
	svc := fixedService(time.Now())
	_, err := svc.WallClockSatisfied("wall_clock()", "1")
	assert.Error(t, err)
}

func TestCheckXtriggers(t *testing.T) {
	now := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := fixedService(now)
	itask := &models.TaskInstance{
		Point: "2020-05-05",
		Xtriggers: map[string]*models.XtriggerState{
			"wall_clock()":            {Signature: "wall_clock()", Label: "clock"},
			"wall_clock(offset=P10Y)": {Signature: "wall_clock(offset=P10Y)", Label: "decade"},
		},
	}
	changed := svc.CheckXtriggers(itask)
	assert.Equal(t, []string{"wall_clock()"}, changed)
	assert.True(t, itask.Xtriggers["wall_clock()"].Satisfied)
	assert.False(t, itask.Xtriggers["wall_clock(offset=P10Y)"].Satisfied)

	// Already-satisfied triggers are not re-reported.
	assert.Empty(t, svc.CheckXtriggers(itask))
}

func TestExtTriggers(t *testing.T) {
	svc := fixedService(time.Now())
	itask := &models.TaskInstance{
		Point: "1",
		ExtTriggers: map[string]*models.ExtTriggerState{
			"drop": {Label: "drop", Message: "file arrived"},
		},
	}
	assert.Empty(t, svc.CheckExtTriggers(itask))

	svc.PutExtTrigger("file arrived", "event-1")
	changed := svc.CheckExtTriggers(itask)
	assert.Equal(t, []string{"drop"}, changed)
	assert.True(t, itask.ExtTriggers["drop"].Satisfied)
}

func TestSignature(t *testing.T) {
	assert.Equal(t, "wall_clock()", Signature("wall_clock()"))
	assert.Equal(t, "wall_clock(offset=PT1H)", Signature("offset=PT1H"))
}
