package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"habitual/internal/habit"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Count      int         `json:"count"`
	Habits     []jsonHabit `json:"habits"`
}

type jsonHabit struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Periodicity   string           `json:"periodicity"`
	CreatedAt     string           `json:"created_at"`
	StreakSaves   int              `json:"streak_saves"`
	CurrentStreak int              `json:"current_streak"`
	LongestStreak int              `json:"longest_streak"`
	Broken        bool             `json:"broken"`
	Completions   []jsonCompletion `json:"completions"`
}

type jsonCompletion struct {
	CompletedAt string `json:"completed_at"`
	Day         string `json:"day"`
	Source      string `json:"source"`
}

// ToJSON writes the full dataset with streak metrics computed as of ref.
// Timestamps are RFC 3339 in UTC so the file round-trips losslessly.
func ToJSON(habits []*habit.Habit, ref time.Time, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(habits),
		Habits:     make([]jsonHabit, 0, len(habits)),
	}

	for _, h := range habits {
		res, err := h.Metrics(ref)
		if err != nil {
			return fmt.Errorf("metrics for %q: %w", h.Name, err)
		}
		jh := jsonHabit{
			ID:            h.ID,
			Name:          h.Name,
			Periodicity:   h.Periodicity.String(),
			CreatedAt:     h.CreatedAt.UTC().Format(time.RFC3339),
			StreakSaves:   h.StreakSaves,
			CurrentStreak: res.Current,
			LongestStreak: res.Longest,
			Broken:        res.Broken,
			Completions:   make([]jsonCompletion, 0, len(h.Completions)),
		}
		for _, c := range h.Completions {
			jh.Completions = append(jh.Completions, jsonCompletion{
				CompletedAt: c.At.UTC().Format(time.RFC3339),
				Day:         c.At.UTC().Format("2006-01-02"),
				Source:      string(c.Source),
			})
		}
		out.Habits = append(out.Habits, jh)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
