package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ts(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 4, 5, 0, time.UTC)
}

func midnight(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func lastInstant(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

func TestStartAndEndOfDay(t *testing.T) {
	assert.Equal(t, midnight(2025, 3, 12), StartOfDay(ts(2025, 3, 12)))
	assert.Equal(t, lastInstant(2025, 3, 12), EndOfDay(ts(2025, 3, 12)))
	assert.Equal(t, 999999999, EndOfDay(ts(2025, 3, 12)).Nanosecond())
}

func TestWeekBoundsAreISOMondayBased(t *testing.T) {
	// 2025-03-10 is a Monday, 2025-03-16 the following Sunday.
	monday := midnight(2025, 3, 10)

	assert.Equal(t, monday, StartOfWeek(ts(2025, 3, 12)))
	assert.Equal(t, monday, StartOfWeek(ts(2025, 3, 10)))
	// Sunday belongs to the week that started the previous Monday.
	assert.Equal(t, monday, StartOfWeek(ts(2025, 3, 16)))

	assert.Equal(t, lastInstant(2025, 3, 16), EndOfWeek(ts(2025, 3, 12)))
}

func TestMonthBounds(t *testing.T) {
	assert.Equal(t, midnight(2025, 3, 1), StartOfMonth(ts(2025, 3, 12)))
	assert.Equal(t, lastInstant(2025, 3, 31), EndOfMonth(ts(2025, 3, 12)))
	// Leap February.
	assert.Equal(t, lastInstant(2024, 2, 29), EndOfMonth(ts(2024, 2, 10)))
}

func TestQuarterBounds(t *testing.T) {
	assert.Equal(t, midnight(2025, 4, 1), StartOfQuarter(ts(2025, 5, 20)))
	assert.Equal(t, lastInstant(2025, 6, 30), EndOfQuarter(ts(2025, 5, 20)))
	assert.Equal(t, midnight(2025, 10, 1), StartOfQuarter(ts(2025, 11, 15)))
	assert.Equal(t, lastInstant(2025, 12, 31), EndOfQuarter(ts(2025, 11, 15)))
}

func TestYearBounds(t *testing.T) {
	assert.Equal(t, midnight(2025, 1, 1), StartOfYear(ts(2025, 7, 4)))
	assert.Equal(t, lastInstant(2025, 12, 31), EndOfYear(ts(2025, 7, 4)))
}
