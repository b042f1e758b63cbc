package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculateVolume(t *testing.T) {
	cases := []struct {
		month   time.Month
		quarter int
	}{
		{time.January, 1},
		{time.February, 1},
		{time.March, 1},
		{time.April, 2},
		{time.June, 2},
		{time.July, 3},
		{time.September, 3},
		{time.October, 4},
		{time.December, 4},
	}
	for _, c := range cases {
		year, quarter := CalculateVolume(time.Date(2024, c.month, 15, 12, 0, 0, 0, time.UTC))
		assert.Equal(t, 2024, year, "month %s", c.month)
		assert.Equal(t, c.quarter, quarter, "month %s", c.month)
	}
}

func TestCalculateVolumeYearBoundary(t *testing.T) {
	year, quarter := CalculateVolume(time.Date(2023, time.December, 31, 23, 59, 59, 0, time.UTC))
	assert.Equal(t, 2023, year)
	assert.Equal(t, 4, quarter)

	year, quarter = CalculateVolume(time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2024, year)
	assert.Equal(t, 1, quarter)
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	assert.NoError(t, err)
	assert.Equal(t, uint(42), id)

	id, err = ParseID("  7 ")
	assert.NoError(t, err)
	assert.Equal(t, uint(7), id)

	for _, raw := range []string{"", "0", "-1", "abc", "1.5", "0x1f", "12junk", "64f1c2e8a9b3d4e5f6a7b8c9"} {
		_, err := ParseID(raw)
		assert.ErrorIs(t, err, ErrInvalidArgument, "raw %q", raw)
	}
}
