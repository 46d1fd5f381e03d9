package tui

import (
	"fmt"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"habitual/internal/habit"
	"habitual/internal/period"
	"habitual/internal/store"
	"habitual/internal/streak"
)

type trendsModel struct {
	store  *store.Store
	width  int
	height int

	habits   []*habit.Habit
	selected int
	offset   int // full windows back from the current period (0 = current)

	buckets []streak.TrendBucket
	result  streak.Result

	chart barchart.Model
}

func newTrendsModel(s *store.Store) trendsModel {
	return trendsModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (r *trendsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

type trendsDataMsg struct {
	habits   []*habit.Habit
	selected int
	buckets  []streak.TrendBucket
	result   streak.Result
}

func (r trendsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		habits, err := r.store.ListHabits()
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load error: %v", err), isError: true}
		}
		if len(habits) == 0 {
			return trendsDataMsg{}
		}

		sel := r.selected
		if sel >= len(habits) {
			sel = len(habits) - 1
		}
		h := habits[sel]

		n := r.windowSize(h.Periodicity)
		buckets, err := h.Trend(r.windowRef(h.Periodicity, n), n)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Trend error: %v", err), isError: true}
		}
		result, err := h.Metrics(time.Now().UTC())
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Trend error: %v", err), isError: true}
		}

		return trendsDataMsg{habits: habits, selected: sel, buckets: buckets, result: result}
	}
}

func (r trendsModel) windowSize(p period.Periodicity) int {
	switch p {
	case period.Weekly:
		return 12
	case period.Monthly:
		return 6
	default:
		return r.store.TrendWindow()
	}
}

// windowRef is the reference instant ending the charted window. Offset n
// steps back a whole window at a time.
func (r trendsModel) windowRef(p period.Periodicity, n int) time.Time {
	now := time.Now().UTC()
	if r.offset == 0 {
		return now
	}
	k, err := period.KeyOf(now, p)
	if err != nil {
		return now
	}
	return period.Shift(k, p, -r.offset*n).Time()
}

func (r trendsModel) update(msg tea.Msg) (trendsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case trendsDataMsg:
		r.habits = msg.habits
		r.selected = msg.selected
		r.buckets = msg.buckets
		r.result = msg.result
		r.buildChart()
		return r, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if r.selected > 0 {
				r.selected--
				r.offset = 0
				return r, r.refresh()
			}
		case key.Matches(msg, keys.Down):
			if r.selected < len(r.habits)-1 {
				r.selected++
				r.offset = 0
				return r, r.refresh()
			}
		case key.Matches(msg, keys.Left):
			r.offset++
			return r, r.refresh()
		case key.Matches(msg, keys.Right):
			if r.offset > 0 {
				r.offset--
			}
			return r, r.refresh()
		}
	}
	return r, nil
}

func (r *trendsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if r.height > 30 {
		chartHeight = 16
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	p := period.Daily
	name := ""
	if len(r.habits) > 0 {
		p = r.habits[r.selected].Periodicity
		name = r.habits[r.selected].Name
	}

	filled := lipgloss.NewStyle().Foreground(colorPrimary)
	empty := lipgloss.NewStyle().Foreground(colorSubtle)

	var bars []barchart.BarData
	for _, b := range r.buckets {
		style := filled
		if b.Count == 0 {
			style = empty
		}
		bars = append(bars, barchart.BarData{
			Label: chartLabel(b.Key, p),
			Values: []barchart.BarValue{{
				Name:  name,
				Value: float64(b.Count),
				Style: style,
			}},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func chartLabel(k period.Key, p period.Periodicity) string {
	switch p {
	case period.Weekly:
		_, week := k.Time().ISOWeek()
		return fmt.Sprintf("W%02d", week)
	case period.Monthly:
		return k.Time().Format("Jan")
	default:
		return k.Time().Format("02")
	}
}

func (r trendsModel) view() string {
	w := r.width - 4

	if len(r.habits) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Trends"),
			"",
			mutedStyle.Render("No habits to chart yet"),
		)
		return panelStyle.Width(w).Render(content)
	}

	h := r.habits[r.selected]
	unit := periodUnit(h.Periodicity)

	selector := highlightStyle.Render(h.Name) +
		mutedStyle.Render(fmt.Sprintf("  %d/%d", r.selected+1, len(r.habits)))

	rangeLabel := ""
	if len(r.buckets) > 0 {
		first := r.buckets[0].Key.Label(h.Periodicity)
		last := r.buckets[len(r.buckets)-1].Key.Label(h.Periodicity)
		rangeLabel = mutedStyle.Render(fmt.Sprintf("%s to %s", first, last))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Trends"), "  ", selector, "  ", rangeLabel,
	)

	chartView := r.chart.View()

	total := 0
	for _, b := range r.buckets {
		total += b.Count
	}
	summary := fmt.Sprintf("  current %s   longest %s   %s in window",
		plural(r.result.Current, unit),
		plural(r.result.Longest, unit),
		plural(total, "completion"),
	)
	if r.result.Broken {
		summary += "   " + warningStyle.Render("streak broken")
	}

	nav := mutedStyle.Render("  ↑/↓: habit  ←/→: older/newer window")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", summary, "", nav,
		),
	)
}
