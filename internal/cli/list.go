package cli

import (
	"fmt"

	"habitual/internal/habit"
	"habitual/internal/period"
)

type ListCmd struct {
	Periodicity string `short:"p" help:"Only list habits with this periodicity."`
	On          string `help:"Reference date for streaks (YYYY-MM-DD). Defaults to today."`
}

func (c *ListCmd) Run(ctx *Context) error {
	ref, err := parseOn(c.On)
	if err != nil {
		return err
	}

	var habits []*habit.Habit
	if c.Periodicity == "" {
		habits, err = ctx.Store.ListHabits()
	} else {
		var p period.Periodicity
		p, err = period.Parse(c.Periodicity)
		if err != nil {
			return err
		}
		habits, err = ctx.Store.ListHabitsByPeriodicity(p)
	}
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		fmt.Println("No habits found")
		return nil
	}

	fmt.Printf("%-24s %-9s %8s %8s %6s  %s\n", "NAME", "PERIOD", "CURRENT", "LONGEST", "SAVES", "LAST DONE")
	for _, h := range habits {
		res, err := h.Metrics(ref)
		if err != nil {
			return err
		}
		lastDone := "never"
		if last, ok := h.LastCompletion(); ok {
			lastDone = last.At.UTC().Format("2006-01-02")
		}
		marker := ""
		if res.Broken {
			marker = " (broken)"
		}
		fmt.Printf("%-24s %-9s %8d %8d %6d  %s%s\n",
			h.Name, h.Periodicity, res.Current, res.Longest, h.StreakSaves, lastDone, marker)
	}
	return nil
}
