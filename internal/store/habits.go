package store

import (
	"database/sql"
	"fmt"
	"time"

	"habitual/internal/habit"
	"habitual/internal/period"
)

// CreateHabit inserts a new habit and returns it fully loaded. The name must
// be unique; streakSaves is the number of saves granted up front.
func (s *Store) CreateHabit(name string, p period.Periodicity, streakSaves int) (*habit.Habit, error) {
	if streakSaves < 0 {
		return nil, fmt.Errorf("streak saves cannot be negative: %d", streakSaves)
	}
	h, err := habit.New(name, p, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	h.StreakSaves = streakSaves

	_, err = s.db.Exec(
		`INSERT INTO habits (id, name, periodicity, streak_saves, created_at) VALUES (?, ?, ?, ?, ?)`,
		h.ID, h.Name, string(h.Periodicity), h.StreakSaves, h.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("insert habit: %w", err)
	}
	return s.GetHabit(h.ID)
}

// GetHabit loads a habit with its full completion history.
func (s *Store) GetHabit(id string) (*habit.Habit, error) {
	h := &habit.Habit{}
	var periodicity, createdAt string
	err := s.db.QueryRow(
		`SELECT id, name, periodicity, streak_saves, created_at FROM habits WHERE id = ?`, id,
	).Scan(&h.ID, &h.Name, &periodicity, &h.StreakSaves, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get habit %s: %w", id, err)
	}
	h.Periodicity = period.Periodicity(periodicity)
	h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	h.Completions, err = s.ListCompletions(h.ID)
	if err != nil {
		return nil, err
	}
	return h, nil
}

// GetHabitByName resolves the name users type at the CLI.
func (s *Store) GetHabitByName(name string) (*habit.Habit, error) {
	var id string
	err := s.db.QueryRow(`SELECT id FROM habits WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("habit %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("get habit by name: %w", err)
	}
	return s.GetHabit(id)
}

// ListHabits returns all habits ordered by name, histories included.
func (s *Store) ListHabits() ([]*habit.Habit, error) {
	return s.listHabits(`SELECT id, name, periodicity, streak_saves, created_at FROM habits ORDER BY name`)
}

// ListHabitsByPeriodicity returns the habits sharing one recurrence,
// ordered by name.
func (s *Store) ListHabitsByPeriodicity(p period.Periodicity) ([]*habit.Habit, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: %q", period.ErrUnsupportedPeriodicity, p)
	}
	return s.listHabits(
		`SELECT id, name, periodicity, streak_saves, created_at FROM habits WHERE periodicity = ? ORDER BY name`,
		string(p),
	)
}

func (s *Store) listHabits(query string, args ...any) ([]*habit.Habit, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	defer rows.Close()

	var habits []*habit.Habit
	for rows.Next() {
		h := &habit.Habit{}
		var periodicity, createdAt string
		if err := rows.Scan(&h.ID, &h.Name, &periodicity, &h.StreakSaves, &createdAt); err != nil {
			return nil, err
		}
		h.Periodicity = period.Periodicity(periodicity)
		h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, h := range habits {
		h.Completions, err = s.ListCompletions(h.ID)
		if err != nil {
			return nil, err
		}
	}
	return habits, nil
}

// RenameHabit validates the new name through the aggregate, then persists it.
func (s *Store) RenameHabit(id, name string) error {
	h, err := s.GetHabit(id)
	if err != nil {
		return err
	}
	if err := h.Rename(name); err != nil {
		return err
	}
	_, err = s.db.Exec(`UPDATE habits SET name = ? WHERE id = ?`, h.Name, id)
	if err != nil {
		return fmt.Errorf("rename habit: %w", err)
	}
	return nil
}

// UpdatePeriodicity switches a habit's recurrence. Completions are stored as
// raw timestamps, so metrics re-bucket automatically on the next read.
func (s *Store) UpdatePeriodicity(id string, p period.Periodicity) error {
	if !p.Valid() {
		return fmt.Errorf("%w: %q", period.ErrUnsupportedPeriodicity, p)
	}
	_, err := s.db.Exec(`UPDATE habits SET periodicity = ? WHERE id = ?`, string(p), id)
	if err != nil {
		return fmt.Errorf("update periodicity: %w", err)
	}
	return nil
}

// SetStreakSaves sets the remaining save balance.
func (s *Store) SetStreakSaves(id string, n int) error {
	if n < 0 {
		return fmt.Errorf("streak saves cannot be negative: %d", n)
	}
	_, err := s.db.Exec(`UPDATE habits SET streak_saves = ? WHERE id = ?`, n, id)
	if err != nil {
		return fmt.Errorf("set streak saves: %w", err)
	}
	return nil
}

// DeleteHabit removes the habit; the completion history goes with it via
// ON DELETE CASCADE.
func (s *Store) DeleteHabit(id string) error {
	res, err := s.db.Exec(`DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete habit: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("habit %s not found", id)
	}
	return nil
}
