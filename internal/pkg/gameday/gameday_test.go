package gameday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_Day_MidnightReset(t *testing.T) {
	c := Clock{}

	before := time.Date(2024, 5, 10, 23, 59, 0, 0, time.UTC)
	after := time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-05-10", c.Day(before))
	assert.Equal(t, "2024-05-11", c.Day(after))
}

func TestClock_Day_RollsAtResetInstant(t *testing.T) {
	// Reset at 03:30 UTC: 03:29 still belongs to the previous day.
	c := Clock{ResetHour: 3, ResetMinute: 30}

	assert.Equal(t, "2024-05-10", c.Day(time.Date(2024, 5, 11, 3, 29, 59, 0, time.UTC)))
	assert.Equal(t, "2024-05-11", c.Day(time.Date(2024, 5, 11, 3, 30, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-11", c.Day(time.Date(2024, 5, 11, 23, 0, 0, 0, time.UTC)))
}

func TestClock_Day_ConvertsToUTC(t *testing.T) {
	c := Clock{}

	// 22:00-03:00 on 2024-05-10 is 01:00 UTC on 2024-05-11.
	loc := time.FixedZone("AR", -3*3600)
	local := time.Date(2024, 5, 10, 22, 0, 0, 0, loc)

	assert.Equal(t, "2024-05-11", c.Day(local))
}

func TestClock_NextReset(t *testing.T) {
	c := Clock{ResetHour: 0, ResetMinute: 0}

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	next := c.NextReset(now)
	assert.Equal(t, time.Date(2024, 5, 11, 0, 0, 0, 0, time.UTC), next)

	// Exactly at the reset instant, the next one is 24h away.
	next = c.NextReset(next)
	assert.Equal(t, time.Date(2024, 5, 12, 0, 0, 0, 0, time.UTC), next)
}

func TestClock_NextReset_LaterToday(t *testing.T) {
	c := Clock{ResetHour: 21, ResetMinute: 0}

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 10, 21, 0, 0, 0, time.UTC), c.NextReset(now))

	late := time.Date(2024, 5, 10, 22, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 5, 11, 21, 0, 0, 0, time.UTC), c.NextReset(late))
}
