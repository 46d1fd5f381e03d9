package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"habitual/internal/habit"
	"habitual/internal/period"
	"habitual/internal/store"
)

type historyModel struct {
	store  *store.Store
	width  int
	height int

	habits   []*habit.Habit
	selected int
	cursor   int // index into the newest-first completion list
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{store: s}
}

func (m *historyModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type historyDataMsg struct {
	habits   []*habit.Habit
	selected int
}

func (m historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		habits, err := m.store.ListHabits()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		sel := m.selected
		if sel >= len(habits) {
			sel = max(0, len(habits)-1)
		}
		return historyDataMsg{habits: habits, selected: sel}
	}
}

// completions returns the selected habit's history newest first.
func (m historyModel) completions() []habit.Completion {
	if len(m.habits) == 0 {
		return nil
	}
	cs := m.habits[m.selected].Completions
	out := make([]habit.Completion, len(cs))
	for i, c := range cs {
		out[len(cs)-1-i] = c
	}
	return out
}

func (m historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case historyDataMsg:
		m.habits = msg.habits
		m.selected = msg.selected
		if n := len(m.completions()); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.completions())-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Left):
			if m.selected > 0 {
				m.selected--
				m.cursor = 0
			}
		case key.Matches(msg, keys.Right):
			if m.selected < len(m.habits)-1 {
				m.selected++
				m.cursor = 0
			}
		case key.Matches(msg, keys.Delete):
			return m.deleteAtCursor()
		}
	}
	return m, nil
}

func (m historyModel) deleteAtCursor() (historyModel, tea.Cmd) {
	comps := m.completions()
	if len(comps) == 0 {
		return m, nil
	}
	h := m.habits[m.selected]
	c := comps[m.cursor]

	ok, err := m.store.DeleteCompletion(h.ID, formatDay(c.At))
	if err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	if !ok {
		return m, nil
	}
	return m, tea.Batch(
		m.refresh(),
		func() tea.Msg { return completionClearedMsg{name: h.Name, count: 1} },
	)
}

func (m historyModel) view() string {
	w := m.width - 4
	title := titleStyle.Render("History")

	if len(m.habits) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No habits yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	h := m.habits[m.selected]
	selector := highlightStyle.Render(h.Name) +
		mutedStyle.Render(fmt.Sprintf("  %s  %d/%d", h.Periodicity, m.selected+1, len(m.habits)))
	header := lipgloss.JoinHorizontal(lipgloss.Bottom, title, "  ", selector)

	comps := m.completions()
	if len(comps) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			header,
			"",
			mutedStyle.Render("No completions logged yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, header)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-5s %-10s %s", "Day", "Time", "Period", "Source")))

	// Keep the cursor in view on long histories.
	visible := m.height - 10
	if visible < 5 {
		visible = 5
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(len(comps), start+visible)

	for i := start; i < end; i++ {
		c := comps[i]
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}

		label := ""
		if k, err := period.KeyOf(c.At, h.Periodicity); err == nil {
			label = k.Label(h.Periodicity)
		}

		row := style.Render(fmt.Sprintf("%s%-12s %-5s %-10s",
			cursor, formatDay(c.At), c.At.UTC().Format("15:04"), label,
		))
		if c.Source == habit.SourceSave {
			row += accentStyle.Render(" save")
		}
		rows = append(rows, row)
	}

	if end < len(comps) {
		rows = append(rows, mutedStyle.Render(fmt.Sprintf("  … %d more", len(comps)-end)))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  ←/→: habit  ↑/↓: scroll  d: delete entry"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
