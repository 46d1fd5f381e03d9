package cli

import "fmt"

type DeleteCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *DeleteCmd) Run(ctx *Context) error {
	h, err := resolveHabit(ctx, c.Name)
	if err != nil {
		return err
	}
	if err := ctx.Store.DeleteHabit(h.ID); err != nil {
		return err
	}
	fmt.Printf("Deleted %q and %d completions\n", h.Name, len(h.Completions))
	return nil
}
