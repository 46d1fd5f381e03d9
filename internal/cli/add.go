package cli

import (
	"fmt"

	"habitual/internal/period"
)

type AddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Periodicity string `short:"p" help:"Periodicity: daily, weekly, or monthly. Defaults to the default_periodicity setting."`
	Saves       int    `short:"s" default:"-1" help:"Streak saves to grant. Defaults to the default_streak_saves setting."`
}

func (c *AddCmd) Run(ctx *Context) error {
	var p period.Periodicity
	if c.Periodicity == "" {
		p = ctx.Store.DefaultPeriodicity()
	} else {
		var err error
		p, err = period.Parse(c.Periodicity)
		if err != nil {
			return err
		}
	}

	saves := c.Saves
	if saves < 0 {
		saves = ctx.Store.DefaultStreakSaves()
	}

	h, err := ctx.Store.CreateHabit(c.Name, p, saves)
	if err != nil {
		return err
	}
	fmt.Printf("Added %s habit %q (ID: %s)\n", h.Periodicity, h.Name, h.ID)
	return nil
}
