package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"habitual/internal/store"
)

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	defaultPeriodicity *string
	defaultSaves       *string
	trendWindow        *string
}

func newSettingsModel(s *store.Store) settingsModel {
	dp, ds, tw := "", "", ""
	return settingsModel{
		store:              s,
		defaultPeriodicity: &dp,
		defaultSaves:       &ds,
		trendWindow:        &tw,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, _ := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.New):
			return s.showForm()
		}
	}
	return s, nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	// Load current values
	*s.defaultPeriodicity = s.getVal(store.SettingDefaultPeriodicity, "daily")
	*s.defaultSaves = s.getVal(store.SettingDefaultStreakSaves, "0")
	*s.trendWindow = s.getVal(store.SettingTrendWindow, "30")

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Default periodicity").
				Options(periodicityOptions()...).Value(s.defaultPeriodicity),
			huh.NewInput().Title("Default streak saves").Value(s.defaultSaves),
			huh.NewInput().Title("Trend window (periods)").Value(s.trendWindow),
		).Title("New habit defaults"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		s.saveSettings()
		return s, s.refresh()
	}

	return s, cmd
}

func (s settingsModel) saveSettings() {
	s.store.SetSetting(store.SettingDefaultPeriodicity, *s.defaultPeriodicity)
	if v := strings.TrimSpace(*s.defaultSaves); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			s.store.SetSetting(store.SettingDefaultStreakSaves, v)
		}
	}
	if v := strings.TrimSpace(*s.trendWindow); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			s.store.SetSetting(store.SettingTrendWindow, v)
		}
	}
}

func (s settingsModel) getVal(k, fallback string) string {
	v, err := s.store.GetSetting(k)
	if err != nil {
		return fallback
	}
	return v
}

func (s settingsModel) view() string {
	w := s.width - 4

	if s.formActive && s.form != nil {
		title := titleStyle.Render("Settings")
		formView := s.form.View()
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", formView),
		)
	}

	title := titleStyle.Render("Settings")
	hint := mutedStyle.Render("Press enter to edit settings")

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(setting.Key)
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}

	rows = append(rows, "")
	rows = append(rows, hint)

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func formatSettingValue(k, v string) string {
	switch k {
	case store.SettingTrendWindow:
		if n, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d periods", n)
		}
	case store.SettingDefaultStreakSaves:
		if n, err := strconv.Atoi(v); err == nil {
			return fmt.Sprintf("%d per habit", n)
		}
	}
	return v
}
