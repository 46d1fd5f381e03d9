package cli

import "fmt"

type StreakCmd struct {
	Name string `arg:"" help:"Habit name."`
	On   string `help:"Reference date for the streak (YYYY-MM-DD). Defaults to today."`
}

func (c *StreakCmd) Run(ctx *Context) error {
	h, err := resolveHabit(ctx, c.Name)
	if err != nil {
		return err
	}
	ref, err := parseOn(c.On)
	if err != nil {
		return err
	}
	res, err := h.Metrics(ref)
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s): %s\n", h.Name, h.Periodicity, describeStreak(res.Current, res.Longest, res.Broken, streakUnit(h)))
	if res.Broken && h.StreakSaves > 0 {
		fmt.Printf("  %d streak save(s) available; run: habitual save %q\n", h.StreakSaves, h.Name)
	}
	return nil
}
