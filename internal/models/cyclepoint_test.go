package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComparePoints(t *testing.T) {
	assert.Equal(t, -1, ComparePoints("1", "2"))
	assert.Equal(t, 0, ComparePoints("5", "5"))
	assert.Equal(t, 1, ComparePoints("10", "9"))
	assert.Equal(t, -1, ComparePoints("2020-05-05", "2020-05-06"))
	assert.Equal(t, 0, ComparePoints("2020-05-05", "2020-05-05"))
}

func TestOffsetIntegerPoint(t *testing.T) {
	p, err := OffsetIntegerPoint("3", -1)
	require.NoError(t, err)
	assert.Equal(t, "2", p)

	_, err = OffsetIntegerPoint("2020-05-05", 1)
	assert.Error(t, err)
}

func TestParseISODuration(t *testing.T) {
	d, err := ParseISODuration("PT2H35M31S")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour+35*time.Minute+31*time.Second, d.Clock)
	assert.False(t, d.Negative)

	d, err = ParseISODuration("-PT2H35M31S")
	require.NoError(t, err)
	assert.True(t, d.Negative)

	d, err = ParseISODuration("P10Y")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Years)

	d, err = ParseISODuration("P1DT12H")
	require.NoError(t, err)
	assert.Equal(t, 1, d.Days)
	assert.Equal(t, 12*time.Hour, d.Clock)

	d, err = ParseISODuration("-P2")
	require.NoError(t, err)
	assert.Equal(t, int64(-2), d.IntegerOffset())

	for _, bad := range []string{"", "P", "10Y", "PT", "P10X"} {
		_, err := ParseISODuration(bad)
		assert.Error(t, err, bad)
	}
}

func TestISODuration_AddTo(t *testing.T) {
	base := time.Date(2020, 5, 5, 0, 0, 0, 0, time.UTC)

	d, err := ParseISODuration("P10Y")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, 5, 5, 0, 0, 0, 0, time.UTC), d.AddTo(base))

	d, err = ParseISODuration("-PT2H35M31S")
	require.NoError(t, err)
	assert.Equal(t, base.Add(-(2*time.Hour + 35*time.Minute + 31*time.Second)), d.AddTo(base))
}

func TestPointTime(t *testing.T) {
	got, err := PointTime("2020-05-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 5, 5, 0, 0, 0, 0, time.UTC), got)

	_, err = PointTime("not-a-point")
	assert.Error(t, err)
}
