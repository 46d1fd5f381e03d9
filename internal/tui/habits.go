package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"habitual/internal/habit"
	"habitual/internal/period"
	"habitual/internal/store"
	"habitual/internal/streak"
)

type habitsModel struct {
	store  *store.Store
	width  int
	height int

	habits  []*habit.Habit
	results map[string]streak.Result
	cursor  int

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit", "delete"

	// Form field pointers (survive value copies)
	formName        *string
	formPeriodicity *string
	formSaves       *string
	formConfirm     *bool

	editingID   string
	editingName string
}

func newHabitsModel(s *store.Store) habitsModel {
	name, periodicity, saves, confirm := "", string(period.Daily), "", false
	return habitsModel{
		store:           s,
		formName:        &name,
		formPeriodicity: &periodicity,
		formSaves:       &saves,
		formConfirm:     &confirm,
	}
}

func (m *habitsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type habitsDataMsg struct {
	habits  []*habit.Habit
	results map[string]streak.Result
}

func (m habitsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		habits, err := m.store.ListHabits()
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
		return habitsDataMsg{habits: habits, results: results}
	}
}

func (m habitsModel) update(msg tea.Msg) (habitsModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case habitsDataMsg:
		m.habits = msg.habits
		m.results = msg.results
		if m.cursor >= len(m.habits) {
			m.cursor = max(0, len(m.habits)-1)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.habits)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.New):
			return m.showNewForm()
		case key.Matches(msg, keys.Enter):
			if len(m.habits) > 0 {
				return m.showEditForm()
			}
		case key.Matches(msg, keys.Delete):
			if len(m.habits) > 0 {
				return m.showDeleteConfirm()
			}
		}
	}
	return m, nil
}

func periodicityOptions() []huh.Option[string] {
	opts := make([]huh.Option[string], len(period.All))
	for i, p := range period.All {
		opts[i] = huh.NewOption(string(p), string(p))
	}
	return opts
}

func (m habitsModel) showNewForm() (habitsModel, tea.Cmd) {
	*m.formName = ""
	*m.formPeriodicity = string(m.store.DefaultPeriodicity())
	*m.formSaves = strconv.Itoa(m.store.DefaultStreakSaves())
	m.formType = "new"

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Habit Name").Value(m.formName),
			huh.NewSelect[string]().Title("Periodicity").Options(periodicityOptions()...).Value(m.formPeriodicity),
			huh.NewInput().Title("Streak Saves").Value(m.formSaves),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m habitsModel) showEditForm() (habitsModel, tea.Cmd) {
	h := m.habits[m.cursor]
	*m.formName = h.Name
	*m.formPeriodicity = string(h.Periodicity)
	*m.formSaves = strconv.Itoa(h.StreakSaves)
	m.formType = "edit"
	m.editingID = h.ID
	m.editingName = h.Name

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Habit Name").Value(m.formName),
			huh.NewSelect[string]().Title("Periodicity").Options(periodicityOptions()...).Value(m.formPeriodicity),
			huh.NewInput().Title("Streak Saves").Value(m.formSaves),
		),
	).WithShowHelp(true).WithShowErrors(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m habitsModel) showDeleteConfirm() (habitsModel, tea.Cmd) {
	h := m.habits[m.cursor]
	*m.formConfirm = false
	m.formType = "delete"
	m.editingID = h.ID
	m.editingName = h.Name

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q and its whole history?", h.Name)).
				Affirmative("Delete").
				Negative("Keep").
				Value(m.formConfirm),
		),
	).WithShowHelp(true)

	m.formActive = true
	return m, m.form.Init()
}

func (m habitsModel) updateForm(msg tea.Msg) (habitsModel, tea.Cmd) {
	// Check for escape to cancel form
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		switch m.formType {
		case "new":
			return m.submitNew()
		case "edit":
			return m.submitEdit()
		case "delete":
			return m.submitDelete()
		}
	}

	return m, cmd
}

func (m habitsModel) submitNew() (habitsModel, tea.Cmd) {
	name := strings.TrimSpace(*m.formName)
	if name == "" {
		return m, m.refresh()
	}
	p, err := period.Parse(*m.formPeriodicity)
	if err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	saves, err := strconv.Atoi(strings.TrimSpace(*m.formSaves))
	if err != nil || saves < 0 {
		saves = 0
	}
	h, err := m.store.CreateHabit(name, p, saves)
	if err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return m, tea.Batch(
		m.refresh(),
		func() tea.Msg { return habitCreatedMsg{name: h.Name} },
	)
}

func (m habitsModel) submitEdit() (habitsModel, tea.Cmd) {
	if name := strings.TrimSpace(*m.formName); name != "" && name != m.editingName {
		if err := m.store.RenameHabit(m.editingID, name); err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
	}
	if p, err := period.Parse(*m.formPeriodicity); err == nil {
		if err := m.store.UpdatePeriodicity(m.editingID, p); err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
	}
	if saves, err := strconv.Atoi(strings.TrimSpace(*m.formSaves)); err == nil && saves >= 0 {
		if err := m.store.SetStreakSaves(m.editingID, saves); err != nil {
			return m, func() tea.Msg {
				return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
			}
		}
	}
	return m, m.refresh()
}

func (m habitsModel) submitDelete() (habitsModel, tea.Cmd) {
	if !*m.formConfirm {
		return m, nil
	}
	if err := m.store.DeleteHabit(m.editingID); err != nil {
		return m, func() tea.Msg {
			return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
		}
	}
	return m, tea.Batch(
		m.refresh(),
		func() tea.Msg { return habitDeletedMsg{name: m.editingName} },
	)
}

func (m habitsModel) view() string {
	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Habit")
		switch m.formType {
		case "edit":
			title = titleStyle.Render("Edit Habit")
		case "delete":
			title = titleStyle.Render("Delete Habit")
		}
		formView := m.form.View()
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", formView)
		return panelStyle.Width(m.width - 4).Render(content)
	}

	return m.renderList()
}

func (m habitsModel) renderList() string {
	w := m.width - 4
	title := titleStyle.Render("Habits")

	if len(m.habits) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No habits yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	// Table header
	header := mutedStyle.Render(fmt.Sprintf("  %-24s %-10s %8s %8s %6s  %s", "Name", "Period", "Current", "Best", "Saves", "Since"))
	rows = append(rows, header)

	for i, h := range m.habits {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		res := m.results[h.ID]
		current := strconv.Itoa(res.Current)
		if res.Broken {
			current += " ✗"
		}
		row := style.Render(fmt.Sprintf("%s%-24s %-10s %8s %8d %6d  %s",
			cursor, h.Name, h.Periodicity, current, res.Longest, h.StreakSaves,
			formatDay(h.CreatedAt),
		))
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  enter: edit  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
