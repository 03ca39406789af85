package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfiguration(t *testing.T) {
	cfg := testConfig()

	assert.Equal(t, 5, cfg.TotalDays)
	assert.Equal(t, 17, cfg.TotalLevels)
	assert.Equal(t, 1700, cfg.TotalPossiblePoints)
	assert.Equal(t, 4, cfg.LevelsForDay(3))
	assert.Equal(t, 400, cfg.MaxPointsForDay(3))
	assert.Zero(t, cfg.LevelsForDay(9))
	assert.Zero(t, cfg.MaxPointsForDay(9))
	assert.Equal(t, []Day{1, 2, 3, 4, 5}, cfg.Days())

	d, err := cfg.Validate(5)
	assert.NoError(t, err)
	assert.Equal(t, Day(5), d)

	for _, n := range []int{0, 6, -1} {
		_, err := cfg.Validate(n)
		assert.ErrorIs(t, err, ErrDayOutOfRange, "day %d", n)
	}
}
