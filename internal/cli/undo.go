package cli

import (
	"fmt"

	"habitual/internal/period"
)

type UndoCmd struct {
	Name string `arg:"" help:"Habit name."`
	On   string `help:"A date inside the period to clear (YYYY-MM-DD). Defaults to today."`
}

func (c *UndoCmd) Run(ctx *Context) error {
	h, err := resolveHabit(ctx, c.Name)
	if err != nil {
		return err
	}
	at, err := parseOn(c.On)
	if err != nil {
		return err
	}
	k, err := period.KeyOf(at, h.Periodicity)
	if err != nil {
		return err
	}

	n, err := ctx.Store.DeleteCompletionPeriod(h.ID, k, h.Periodicity)
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Printf("Nothing recorded for %q in %s\n", h.Name, k.Label(h.Periodicity))
		return nil
	}
	fmt.Printf("Cleared %d completion(s) for %q in %s\n", n, h.Name, k.Label(h.Periodicity))
	return nil
}
