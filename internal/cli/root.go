// Package cli implements the habitual command line interface. Each command
// is a kong-bound struct whose Run method receives the shared Context.
package cli

import (
	"fmt"
	"time"

	"habitual/internal/habit"
	"habitual/internal/period"
	"habitual/internal/store"
)

// Context carries the dependencies kong passes to every command.
type Context struct {
	Store *store.Store
}

// resolveHabit loads a habit by name, the identifier users type at the CLI.
func resolveHabit(ctx *Context, name string) (*habit.Habit, error) {
	return ctx.Store.GetHabitByName(name)
}

// parseOn turns an optional --on YYYY-MM-DD flag into the reference instant
// for streak arithmetic, defaulting to the current UTC time.
func parseOn(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	return period.ParseDate(s)
}

// describeStreak renders a streak result as a one-line summary.
func describeStreak(current, longest int, broken bool, unit string) string {
	state := "alive"
	if broken {
		state = "broken"
	}
	return fmt.Sprintf("current %d %s, longest %d %s (%s)",
		current, pluralize(unit, current), longest, pluralize(unit, longest), state)
}

func pluralize(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

// streakUnit names one period of the habit's recurrence.
func streakUnit(h *habit.Habit) string {
	switch h.Periodicity {
	case period.Weekly:
		return "week"
	case period.Monthly:
		return "month"
	default:
		return "day"
	}
}
