package cli

import "fmt"

type RenameCmd struct {
	Name    string `arg:"" help:"Current habit name."`
	NewName string `arg:"" help:"New habit name."`
}

func (c *RenameCmd) Run(ctx *Context) error {
	h, err := resolveHabit(ctx, c.Name)
	if err != nil {
		return err
	}
	if err := ctx.Store.RenameHabit(h.ID, c.NewName); err != nil {
		return err
	}
	fmt.Printf("Renamed %q to %q\n", c.Name, c.NewName)
	return nil
}
