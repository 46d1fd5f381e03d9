// Package period maps timestamps onto calendar periods (days, ISO weeks,
// calendar months) and provides ordered period keys for streak arithmetic.
package period

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidTimestamp is returned when a timestamp cannot be bucketed.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrUnsupportedPeriodicity is returned for recurrence values other
	// than daily, weekly, or monthly.
	ErrUnsupportedPeriodicity = errors.New("unsupported periodicity")
)

// Periodicity is the recurrence granularity of a habit.
type Periodicity string

const (
	Daily   Periodicity = "daily"
	Weekly  Periodicity = "weekly"
	Monthly Periodicity = "monthly"
)

// All lists the supported periodicities in display order.
var All = []Periodicity{Daily, Weekly, Monthly}

// Parse validates a user-supplied periodicity string.
func Parse(s string) (Periodicity, error) {
	p := Periodicity(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPeriodicity, s)
	}
	return p, nil
}

func (p Periodicity) Valid() bool {
	return p == Daily || p == Weekly || p == Monthly
}

func (p Periodicity) String() string { return string(p) }

// Key identifies one concrete period instance by the UTC midnight of its
// first day: the date itself for daily, the Monday for weekly, the first of
// the month for monthly. Keys of the same periodicity order chronologically.
type Key struct {
	start time.Time
}

// KeyOf buckets t into its period under p. The zero time is rejected so a
// missing timestamp can never masquerade as a real period.
func KeyOf(t time.Time, p Periodicity) (Key, error) {
	if t.IsZero() {
		return Key{}, ErrInvalidTimestamp
	}
	if !p.Valid() {
		return Key{}, fmt.Errorf("%w: %q", ErrUnsupportedPeriodicity, p)
	}
	y, m, d := t.UTC().Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	switch p {
	case Weekly:
		// ISO weeks start on Monday; Go counts Sunday as 0.
		wd := int(day.Weekday())
		if wd == 0 {
			wd = 7
		}
		return Key{start: day.AddDate(0, 0, -(wd - 1))}, nil
	case Monthly:
		return Key{start: time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)}, nil
	default:
		return Key{start: day}, nil
	}
}

// Shift moves k by n periods of p. Date arithmetic carries across month,
// year, and ISO-week boundaries, so callers never special-case rollover.
func Shift(k Key, p Periodicity, n int) Key {
	switch p {
	case Weekly:
		return Key{start: k.start.AddDate(0, 0, 7*n)}
	case Monthly:
		return Key{start: k.start.AddDate(0, n, 0)}
	default:
		return Key{start: k.start.AddDate(0, 0, n)}
	}
}

// Next returns the immediate successor period of k.
func Next(k Key, p Periodicity) Key { return Shift(k, p, 1) }

// Prev returns the immediate predecessor period of k.
func Prev(k Key, p Periodicity) Key { return Shift(k, p, -1) }

// Compare orders two keys of the same periodicity: -1 if a is earlier,
// 1 if later, 0 if they name the same period.
func Compare(a, b Key) int {
	switch {
	case a.start.Before(b.start):
		return -1
	case a.start.After(b.start):
		return 1
	}
	return 0
}

func (k Key) Before(o Key) bool { return k.start.Before(o.start) }
func (k Key) After(o Key) bool  { return k.start.After(o.start) }
func (k Key) Equal(o Key) bool  { return k.start.Equal(o.start) }
func (k Key) IsZero() bool      { return k.start.IsZero() }

// Time returns the period's start instant (UTC midnight of its first day).
func (k Key) Time() time.Time { return k.start }

// Label renders k for display: 2025-04-15 for daily, 2025-W16 for weekly
// (ISO year and week number), 2025-04 for monthly.
func (k Key) Label(p Periodicity) string {
	switch p {
	case Weekly:
		y, w := k.start.ISOWeek()
		return fmt.Sprintf("%d-W%02d", y, w)
	case Monthly:
		return k.start.Format("2006-01")
	default:
		return k.start.Format("2006-01-02")
	}
}

// ParseDate parses a YYYY-MM-DD value into a UTC midnight instant.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is not a YYYY-MM-DD date", ErrInvalidTimestamp, s)
	}
	return t, nil
}
