package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"habitual/internal/cli"
	"habitual/internal/store"
)

var CLI struct {
	Version kong.VersionFlag
	DB      string `help:"Database file path. Defaults to the user config directory." type:"path"`

	Tui    cli.TuiCmd    `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Add    cli.AddCmd    `cmd:"" help:"Add a new habit."`
	List   cli.ListCmd   `cmd:"" help:"List habits with their streaks."`
	Done   cli.DoneCmd   `cmd:"" help:"Log a completion for a habit."`
	Undo   cli.UndoCmd   `cmd:"" help:"Clear completions logged in a period."`
	Save   cli.SaveCmd   `cmd:"" help:"Spend a streak save to bridge a missed period."`
	Streak cli.StreakCmd `cmd:"" help:"Show a habit's streak."`
	Trend  cli.TrendCmd  `cmd:"" help:"Chart completions per period."`
	Rename cli.RenameCmd `cmd:"" help:"Rename a habit."`
	Period cli.PeriodCmd `cmd:"" help:"Change a habit's periodicity."`
	Delete cli.DeleteCmd `cmd:"" help:"Delete a habit and its history."`
	Export cli.ExportCmd `cmd:"" help:"Export habits to CSV or JSON."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("habitual"),
		kong.Description("Habit tracker with streaks, streak saves, and trends"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	dbPath := CLI.DB
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	s, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	if err := ctx.Run(&cli.Context{Store: s}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
