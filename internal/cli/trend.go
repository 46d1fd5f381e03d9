package cli

import (
	"fmt"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"habitual/internal/period"
)

type TrendCmd struct {
	Name    string `arg:"" help:"Habit name."`
	Periods int    `short:"n" default:"0" help:"Number of periods to chart. Defaults per periodicity (trend_window setting for daily, 12 weekly, 6 monthly)."`
	On      string `help:"Reference date ending the window (YYYY-MM-DD). Defaults to today."`
}

func (c *TrendCmd) Run(ctx *Context) error {
	h, err := resolveHabit(ctx, c.Name)
	if err != nil {
		return err
	}
	ref, err := parseOn(c.On)
	if err != nil {
		return err
	}

	n := c.Periods
	if n <= 0 {
		switch h.Periodicity {
		case period.Weekly:
			n = 12
		case period.Monthly:
			n = 6
		default:
			n = ctx.Store.TrendWindow()
		}
	}

	buckets, err := h.Trend(ref, n)
	if err != nil {
		return err
	}

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6C63FF"))
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#414868"))

	chart := barchart.New(72, 12)
	var bars []barchart.BarData
	total := 0
	for _, b := range buckets {
		total += b.Count
		style := barStyle
		if b.Count == 0 {
			style = emptyStyle
		}
		bars = append(bars, barchart.BarData{
			Label: chartLabel(b.Key, h.Periodicity),
			Values: []barchart.BarValue{
				{Name: h.Name, Value: float64(b.Count), Style: style},
			},
		})
	}
	chart.PushAll(bars)
	chart.Draw()

	first := buckets[0].Key.Label(h.Periodicity)
	last := buckets[len(buckets)-1].Key.Label(h.Periodicity)
	fmt.Printf("%s (%s), %s to %s\n", h.Name, h.Periodicity, first, last)
	fmt.Println(chart.View())
	fmt.Printf("%d completed day(s) across %d period(s)\n", total, n)
	return nil
}

// chartLabel renders a compact axis label: day of month, ISO week number,
// or month abbreviation.
func chartLabel(k period.Key, p period.Periodicity) string {
	switch p {
	case period.Weekly:
		_, w := k.Time().ISOWeek()
		return fmt.Sprintf("W%02d", w)
	case period.Monthly:
		return k.Time().Format("Jan")
	default:
		return k.Time().Format("02")
	}
}
