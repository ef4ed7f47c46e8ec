package core

import (
	"errors"
	"testing"
	"time"

	"github.com/huangsam/globeplay/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFormatRoundTrip(t *testing.T) {
	minDate, maxDate := day(1999, time.December, 1), day(2001, time.March, 31)
	for d := minDate; !d.After(maxDate); d = d.AddDate(0, 0, 1) {
		got, err := ParseDate(FormatDate(d))
		require.NoError(t, err)
		require.True(t, got.Equal(d), "round trip of %s", FormatDate(d))
	}
}

func TestFormatDateZeroPadded(t *testing.T) {
	assert.Equal(t, "0987-03-04", FormatDate(day(987, time.March, 4)))
	assert.Equal(t, "2020-01-09", FormatDate(day(2020, time.January, 9)))
}

func TestParseDateMalformed(t *testing.T) {
	for _, input := range []string{"", "2020-1-1", "2020/01/01", "20-01-01", "2020-13-01", "2021-02-29", "2020-01-01T00:00:00Z", "abc"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseDate(input)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestAdvanceDate(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		unit schema.StepUnit
		want time.Time
	}{
		{"year", day(2020, time.January, 1), schema.YearStep, day(2021, time.January, 1)},
		{"day", day(2020, time.January, 1), schema.DayStep, day(2020, time.January, 2)},
		{"day across month", day(2020, time.January, 31), schema.DayStep, day(2020, time.February, 1)},
		{"day across year", day(2020, time.December, 31), schema.DayStep, day(2021, time.January, 1)},
		{"leap day", day(2020, time.February, 28), schema.DayStep, day(2020, time.February, 29)},
		{"year from leap day normalizes", day(2020, time.February, 29), schema.YearStep, day(2021, time.March, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, AdvanceDate(tt.from, tt.unit).Equal(tt.want))
		})
	}
}

func TestDateCursor(t *testing.T) {
	c, err := NewDateCursor(day(2020, 1, 1), day(2000, 1, 1), day(2022, 1, 1), schema.YearStep)
	require.NoError(t, err)

	t.Run("set out of range is rejected", func(t *testing.T) {
		err := c.Set(day(2023, 1, 1))
		assert.ErrorIs(t, err, ErrOutOfRange)
		assert.Equal(t, "2020-01-01", FormatDate(c.Current()))
	})

	t.Run("malformed text leaves cursor unchanged", func(t *testing.T) {
		err := c.SetText("2021-02-30")
		assert.ErrorIs(t, err, ErrParse)
		assert.Equal(t, "2020-01-01", FormatDate(c.Current()))
	})

	t.Run("peek never passes max", func(t *testing.T) {
		require.NoError(t, c.SetText("2021-06-01"))
		_, err := c.Peek(schema.YearStep)
		assert.ErrorIs(t, err, ErrOutOfRange)

		next, err := c.Peek(schema.DayStep)
		require.NoError(t, err)
		assert.Equal(t, "2021-06-02", FormatDate(next))
		assert.Equal(t, "2021-06-01", FormatDate(c.Current()))
	})

	t.Run("peek reaching max exactly is allowed", func(t *testing.T) {
		require.NoError(t, c.SetText("2021-01-01"))
		next, err := c.Peek(schema.YearStep)
		require.NoError(t, err)
		assert.True(t, next.Equal(c.Max()))
	})

	t.Run("ownership is exclusive", func(t *testing.T) {
		require.NoError(t, c.Acquire(schema.YearStep))
		require.NoError(t, c.Acquire(schema.YearStep))
		assert.True(t, errors.Is(c.Acquire(schema.DayStep), ErrCursorOwned))

		c.Release(schema.DayStep)
		assert.Equal(t, schema.YearStep, c.Owner())
		c.Release(schema.YearStep)
		assert.Equal(t, schema.StepUnit(""), c.Owner())
		assert.NoError(t, c.Acquire(schema.DayStep))
	})
}

func TestNewDateCursorValidation(t *testing.T) {
	_, err := NewDateCursor(day(2020, 1, 1), day(2021, 1, 1), day(2022, 1, 1), schema.YearStep)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = NewDateCursor(day(2020, 1, 1), day(2023, 1, 1), day(2022, 1, 1), schema.YearStep)
	assert.ErrorIs(t, err, ErrOutOfRange)
}
