// Package export writes habit data to CSV and JSON files.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"habitual/internal/habit"
)

// ToCSV writes one row per completion across all habits: flat rows suit
// spreadsheets, so habit metadata repeats on every row.
func ToCSV(habits []*habit.Habit, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"habit", "periodicity", "day", "completed_at", "source"}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, h := range habits {
		for _, c := range h.Completions {
			row := []string{
				h.Name,
				h.Periodicity.String(),
				c.At.UTC().Format("2006-01-02"),
				c.At.UTC().Format(time.RFC3339),
				string(c.Source),
			}
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write csv row: %w", err)
			}
		}
	}
	return w.Error()
}
