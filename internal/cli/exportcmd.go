package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"habitual/internal/export"
)

type ExportCmd struct {
	Format string `short:"f" default:"csv" enum:"csv,json" help:"Export format: csv or json."`
	Out    string `short:"o" type:"path" help:"Output path. Defaults to habitual-export-DATE.FORMAT in your home directory."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	habits, err := ctx.Store.ListHabits()
	if err != nil {
		return err
	}

	path := c.Out
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		name := fmt.Sprintf("habitual-export-%s.%s", time.Now().UTC().Format("2006-01-02"), c.Format)
		path = filepath.Join(home, name)
	}

	switch c.Format {
	case "json":
		err = export.ToJSON(habits, time.Now().UTC(), path)
	default:
		err = export.ToCSV(habits, path)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Exported %d habit(s) to %s\n", len(habits), path)
	return nil
}
