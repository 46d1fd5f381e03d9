package cli

import (
	"fmt"

	"habitual/internal/period"
)

type PeriodCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Periodicity string `arg:"" help:"New periodicity: daily, weekly, or monthly."`
}

func (c *PeriodCmd) Run(ctx *Context) error {
	p, err := period.Parse(c.Periodicity)
	if err != nil {
		return err
	}
	h, err := resolveHabit(ctx, c.Name)
	if err != nil {
		return err
	}
	if err := ctx.Store.UpdatePeriodicity(h.ID, p); err != nil {
		return err
	}
	fmt.Printf("Changed %q to %s; streaks now re-bucket the existing history\n", h.Name, p)
	return nil
}
