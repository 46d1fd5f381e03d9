package cli

import (
	"fmt"

	"habitual/internal/habit"
	"habitual/internal/period"
)

type DoneCmd struct {
	Name string `arg:"" help:"Habit name."`
	On   string `help:"Completion date (YYYY-MM-DD). Defaults to now."`
}

func (c *DoneCmd) Run(ctx *Context) error {
	h, err := resolveHabit(ctx, c.Name)
	if err != nil {
		return err
	}
	at, err := parseOn(c.On)
	if err != nil {
		return err
	}

	added, err := ctx.Store.RecordCompletion(h.ID, at, habit.SourceManual)
	if err != nil {
		return err
	}
	k, err := period.KeyOf(at, h.Periodicity)
	if err != nil {
		return err
	}
	if !added {
		fmt.Printf("%q already completed on %s\n", h.Name, at.UTC().Format("2006-01-02"))
		return nil
	}

	// Reload so the streak reflects the new completion.
	h, err = ctx.Store.GetHabit(h.ID)
	if err != nil {
		return err
	}
	res, err := h.Metrics(at)
	if err != nil {
		return err
	}
	fmt.Printf("Completed %q for %s: %s\n",
		h.Name, k.Label(h.Periodicity), describeStreak(res.Current, res.Longest, res.Broken, streakUnit(h)))
	return nil
}
