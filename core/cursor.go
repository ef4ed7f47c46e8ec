package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/globeplay/schema"
)

// ParseDate parses a YYYY-MM-DD literal into a UTC midnight date.
func ParseDate(text string) (time.Time, error) {
	d, err := time.Parse(schema.DateLayout, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrParse, text)
	}
	return d, nil
}

// FormatDate renders d as a zero-padded YYYY-MM-DD literal.
func FormatDate(d time.Time) string {
	return d.Format(schema.DateLayout)
}

// AdvanceDate adds one calendar step of unit to d.
func AdvanceDate(d time.Time, unit schema.StepUnit) time.Time {
	if unit == schema.DayStep {
		return d.AddDate(0, 0, 1)
	}
	return d.AddDate(1, 0, 0)
}

// DateCursor holds the current date and its valid range.
// The owner field gives one playback unit exclusive use of the cursor.
// DateCursor is not safe for concurrent use; the controller serializes access.
type DateCursor struct {
	current time.Time
	min     time.Time
	max     time.Time
	unit    schema.StepUnit
	owner   schema.StepUnit
}

// NewDateCursor creates a cursor, enforcing min <= current <= max.
func NewDateCursor(current, minDate, maxDate time.Time, unit schema.StepUnit) (*DateCursor, error) {
	if minDate.After(maxDate) {
		return nil, fmt.Errorf("%w: min %s is after max %s", ErrOutOfRange, FormatDate(minDate), FormatDate(maxDate))
	}
	c := &DateCursor{min: minDate, max: maxDate, unit: unit}
	if err := c.Set(current); err != nil {
		return nil, err
	}
	return c, nil
}

// Current returns the committed date.
func (c *DateCursor) Current() time.Time { return c.current }

// Min returns the lower bound.
func (c *DateCursor) Min() time.Time { return c.min }

// Max returns the upper bound.
func (c *DateCursor) Max() time.Time { return c.max }

// Unit returns the default step unit.
func (c *DateCursor) Unit() schema.StepUnit { return c.unit }

// Owner returns the unit currently owning the cursor, or "" when free.
func (c *DateCursor) Owner() schema.StepUnit { return c.owner }

// Set moves the cursor to d. Dates outside [min, max] are rejected and leave it unchanged.
func (c *DateCursor) Set(d time.Time) error {
	if d.Before(c.min) || d.After(c.max) {
		return fmt.Errorf("%w: %s not in [%s, %s]", ErrOutOfRange, FormatDate(d), FormatDate(c.min), FormatDate(c.max))
	}
	c.current = d
	return nil
}

// SetText parses text and moves the cursor. Malformed input leaves the cursor unchanged.
func (c *DateCursor) SetText(text string) error {
	d, err := ParseDate(text)
	if err != nil {
		return err
	}
	return c.Set(d)
}

// Peek returns the date one step of unit after the current one.
// It fails with ErrOutOfRange when that date would exceed max; there is no wraparound.
func (c *DateCursor) Peek(unit schema.StepUnit) (time.Time, error) {
	next := AdvanceDate(c.current, unit)
	if next.After(c.max) {
		return time.Time{}, fmt.Errorf("%w: next %s step passes %s", ErrOutOfRange, unit, FormatDate(c.max))
	}
	return next, nil
}

// Acquire gives unit exclusive ownership. It fails when another unit owns the cursor.
func (c *DateCursor) Acquire(unit schema.StepUnit) error {
	if c.owner != "" && c.owner != unit {
		return fmt.Errorf("%w: %s playback is running", ErrCursorOwned, c.owner)
	}
	c.owner = unit
	return nil
}

// Release drops ownership if unit holds it.
func (c *DateCursor) Release(unit schema.StepUnit) {
	if c.owner == unit {
		c.owner = ""
	}
}
