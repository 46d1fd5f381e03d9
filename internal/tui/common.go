package tui

import (
	"fmt"
	"time"

	"habitual/internal/period"
)

// viewState represents the currently active view.
type viewState int

const (
	viewToday viewState = iota
	viewHabits
	viewTrends
	viewHistory
	viewSettings
)

var viewNames = []string{"Today", "Habits", "Trends", "History", "Settings"}

// --- Messages ---

type completionLoggedMsg struct {
	name string
}

type completionClearedMsg struct {
	name  string
	count int64
}

type saveUsedMsg struct {
	name      string
	label     string
	remaining int
}

type habitCreatedMsg struct {
	name string
}

type habitDeletedMsg struct {
	name string
}

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

func formatDay(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// periodUnit names a single period of a recurrence for streak copy.
func periodUnit(p period.Periodicity) string {
	switch p {
	case period.Weekly:
		return "week"
	case period.Monthly:
		return "month"
	default:
		return "day"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
