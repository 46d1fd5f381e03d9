package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"habitual/internal/habit"
	"habitual/internal/period"
	"habitual/internal/store"
	"habitual/internal/streak"
)

type todayModel struct {
	store  *store.Store
	width  int
	height int

	habits  []*habit.Habit
	results map[string]streak.Result
	cursor  int
	day     string // UTC day the current data was loaded for
}

func newTodayModel(s *store.Store) todayModel {
	return todayModel{store: s}
}

func (t todayModel) Init() tea.Cmd {
	return t.loadData()
}

func (t *todayModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

// progress reports how many habits are completed in their current period.
func (t todayModel) progress() (done, total int) {
	now := time.Now().UTC()
	for _, h := range t.habits {
		k, err := period.KeyOf(now, h.Periodicity)
		if err == nil && h.CompletedIn(k) {
			done++
		}
	}
	return done, len(t.habits)
}

type todayDataMsg struct {
	habits  []*habit.Habit
	results map[string]streak.Result
	day     string
}

func (t todayModel) loadData() tea.Cmd {
	return func() tea.Msg {
		habits, err := t.store.ListHabits()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		now := time.Now().UTC()
		results := make(map[string]streak.Result, len(habits))
		for _, h := range habits {
			res, err := h.Metrics(now)
			if err != nil {
				continue
			}
			results[h.ID] = res
		}
		return todayDataMsg{habits: habits, results: results, day: formatDay(now)}
	}
}

func (t todayModel) update(msg tea.Msg) (todayModel, tea.Cmd) {
	switch msg := msg.(type) {
	case todayDataMsg:
		t.habits = msg.habits
		t.results = msg.results
		t.day = msg.day
		if t.cursor >= len(t.habits) {
			t.cursor = max(0, len(t.habits)-1)
		}
		return t, nil

	case tickMsg:
		// Reload on UTC day rollover so period state never goes stale.
		if t.day != "" && t.day != formatDay(time.Time(msg)) {
			return t, t.loadData()
		}
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if t.cursor > 0 {
				t.cursor--
			}
		case key.Matches(msg, keys.Down):
			if t.cursor < len(t.habits)-1 {
				t.cursor++
			}
		case key.Matches(msg, keys.Done), key.Matches(msg, keys.Enter):
			return t.logCompletion()
		case key.Matches(msg, keys.Undo):
			return t.clearPeriod()
		case key.Matches(msg, keys.Save):
			return t.useSave()
		}
	}
	return t, nil
}

func (t todayModel) logCompletion() (todayModel, tea.Cmd) {
	if len(t.habits) == 0 {
		return t, nil
	}
	h := t.habits[t.cursor]
	added, err := t.store.RecordCompletion(h.ID, time.Now().UTC(), habit.SourceManual)
	if err != nil {
		return t, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	if !added {
		return t, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("%s is already logged today", h.Name)}
		}
	}
	return t, tea.Batch(
		t.loadData(),
		func() tea.Msg { return completionLoggedMsg{name: h.Name} },
	)
}

func (t todayModel) clearPeriod() (todayModel, tea.Cmd) {
	if len(t.habits) == 0 {
		return t, nil
	}
	h := t.habits[t.cursor]
	k, err := period.KeyOf(time.Now().UTC(), h.Periodicity)
	if err != nil {
		return t, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	n, err := t.store.DeleteCompletionPeriod(h.ID, k, h.Periodicity)
	if err != nil {
		return t, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	if n == 0 {
		return t, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Nothing recorded for %s this %s", h.Name, periodUnit(h.Periodicity))}
		}
	}
	return t, tea.Batch(
		t.loadData(),
		func() tea.Msg { return completionClearedMsg{name: h.Name, count: n} },
	)
}

func (t todayModel) useSave() (todayModel, tea.Cmd) {
	if len(t.habits) == 0 {
		return t, nil
	}
	h := t.habits[t.cursor]
	k, remaining, err := t.store.UseStreakSave(h.ID, time.Now().UTC())
	if err != nil {
		return t, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return t, tea.Batch(
		t.loadData(),
		func() tea.Msg {
			return saveUsedMsg{name: h.Name, label: k.Label(h.Periodicity), remaining: remaining}
		},
	)
}

func (t todayModel) view() string {
	if t.width < 20 {
		return "Terminal too small"
	}

	contentWidth := t.width - 4

	streakPanel := t.renderStreakPanel(contentWidth)
	listPanel := t.renderListPanel(contentWidth)

	return lipgloss.JoinVertical(lipgloss.Left, streakPanel, listPanel)
}

func (t todayModel) renderStreakPanel(w int) string {
	if len(t.habits) == 0 {
		figure := streakStyle.Width(w - 6).Render("0 days")
		indicator := mutedStyle.Render("■  NO HABITS")
		hint := mutedStyle.Render("Press 2 to go to Habits and create one")

		content := lipgloss.JoinVertical(lipgloss.Center, figure, indicator, hint)
		return panelStyle.Width(w).Render(content)
	}

	h := t.habits[t.cursor]
	res := t.results[h.ID]
	unit := periodUnit(h.Periodicity)
	ledger := h.Ledger()

	cur, err := period.KeyOf(time.Now().UTC(), h.Periodicity)
	if err != nil {
		return panelStyle.Width(w).Render(errorStyle.Render(err.Error()))
	}
	doneNow := ledger.Contains(cur)

	var figure, indicator string
	switch {
	case res.Broken:
		figure = streakBrokenStyle.Width(w - 6).Render(plural(res.Current, unit))
		indicator = mutedStyle.Render("○  BROKEN")
	case doneNow:
		figure = streakAliveStyle.Width(w - 6).Render(plural(res.Current, unit))
		indicator = successStyle.Render("●  DONE THIS " + strings.ToUpper(unit))
	default:
		figure = streakStyle.Width(w - 6).Render(plural(res.Current, unit))
		indicator = warningStyle.Render("◐  DUE THIS " + strings.ToUpper(unit))
	}

	nameLine := highlightStyle.Render(h.Name) +
		mutedStyle.Render(fmt.Sprintf("  ·  best %s", plural(res.Longest, unit)))
	if h.StreakSaves > 0 {
		nameLine += accentStyle.Render(fmt.Sprintf("  ·  %s left", plural(h.StreakSaves, "save")))
	}

	marks := renderMarks(ledger, h.Periodicity, cur, 14)

	content := lipgloss.JoinVertical(lipgloss.Center,
		figure,
		indicator,
		nameLine,
		"",
		marks,
	)
	if doneNow {
		return activePanelStyle.Width(w).Render(content)
	}
	return panelStyle.Width(w).Render(content)
}

// renderMarks draws the last n periods as a row of check marks, oldest first.
func renderMarks(l *streak.Ledger, p period.Periodicity, cur period.Key, n int) string {
	var marks []string
	for i := n - 1; i >= 0; i-- {
		k := period.Shift(cur, p, -i)
		if l.Contains(k) {
			marks = append(marks, successStyle.Render("✓"))
		} else {
			marks = append(marks, mutedStyle.Render("·"))
		}
	}
	return strings.Join(marks, " ")
}

func (t todayModel) renderListPanel(w int) string {
	title := titleStyle.Render("Today")
	header := fmt.Sprintf("%s  %s", title, mutedStyle.Render(t.day))

	if len(t.habits) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			mutedStyle.Render("No habits yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	now := time.Now().UTC()

	var rows []string
	rows = append(rows, header)
	for i, h := range t.habits {
		mark := mutedStyle.Render("·")
		if k, err := period.KeyOf(now, h.Periodicity); err == nil && h.CompletedIn(k) {
			mark = successStyle.Render("✓")
		}

		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		res := t.results[h.ID]
		streakCol := fmt.Sprintf("%3d%s", res.Current, string(periodUnit(h.Periodicity)[0]))
		if res.Broken {
			streakCol += " ✗"
		}

		row := style.Render(fmt.Sprintf("%s%s %-24s %-8s %s", cursor, mark, h.Name, h.Periodicity, streakCol))
		if h.StreakSaves > 0 {
			row += accentStyle.Render(fmt.Sprintf("  ⚑%d", h.StreakSaves))
		}
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  space: done  u: undo  s: use save"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
