package cli

import "fmt"

type SaveCmd struct {
	Name string `arg:"" help:"Habit name."`
	On   string `help:"Reference date (YYYY-MM-DD); the period before it is backfilled. Defaults to today."`
}

func (c *SaveCmd) Run(ctx *Context) error {
	h, err := resolveHabit(ctx, c.Name)
	if err != nil {
		return err
	}
	ref, err := parseOn(c.On)
	if err != nil {
		return err
	}

	k, remaining, err := ctx.Store.UseStreakSave(h.ID, ref)
	if err != nil {
		return err
	}
	fmt.Printf("Streak save applied to %s for %q (%d left)\n",
		k.Label(h.Periodicity), h.Name, remaining)
	return nil
}
