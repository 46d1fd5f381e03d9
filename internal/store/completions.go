package store

import (
	"fmt"
	"time"

	"habitual/internal/habit"
	"habitual/internal/period"
)

// RecordCompletion logs a completion for the habit at the given instant.
// The UNIQUE(habit_id, day) constraint makes the insert idempotent per UTC
// calendar day; the bool reports whether a row was actually added.
func (s *Store) RecordCompletion(habitID string, at time.Time, source habit.Source) (bool, error) {
	if at.IsZero() {
		return false, period.ErrInvalidTimestamp
	}
	at = at.UTC()
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO completions (habit_id, completed_at, day, source) VALUES (?, ?, ?, ?)`,
		habitID, at.Format(time.RFC3339), at.Format("2006-01-02"), string(source),
	)
	if err != nil {
		return false, fmt.Errorf("record completion: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ListCompletions returns a habit's completions in chronological order.
func (s *Store) ListCompletions(habitID string) ([]habit.Completion, error) {
	rows, err := s.db.Query(
		`SELECT completed_at, source FROM completions WHERE habit_id = ? ORDER BY completed_at`, habitID,
	)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var completions []habit.Completion
	for rows.Next() {
		var completedAt, source string
		if err := rows.Scan(&completedAt, &source); err != nil {
			return nil, err
		}
		var c habit.Completion
		c.At, _ = time.Parse(time.RFC3339, completedAt)
		c.Source = habit.Source(source)
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

// DeleteCompletion removes the completion recorded on a single UTC calendar
// day (YYYY-MM-DD), reporting whether one existed.
func (s *Store) DeleteCompletion(habitID, day string) (bool, error) {
	res, err := s.db.Exec(
		`DELETE FROM completions WHERE habit_id = ? AND day = ?`, habitID, day,
	)
	if err != nil {
		return false, fmt.Errorf("delete completion: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// DeleteCompletionPeriod removes every completion falling inside period k,
// returning how many rows went away. The day column holds UTC dates, so the
// period's day range bounds the delete.
func (s *Store) DeleteCompletionPeriod(habitID string, k period.Key, p period.Periodicity) (int64, error) {
	from := k.Time().Format("2006-01-02")
	to := period.Next(k, p).Time().Format("2006-01-02")
	res, err := s.db.Exec(
		`DELETE FROM completions WHERE habit_id = ? AND day >= ? AND day < ?`,
		habitID, from, to,
	)
	if err != nil {
		return 0, fmt.Errorf("delete completion period: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// UseStreakSave spends one of the habit's saves to backfill the period
// before the one containing ref. The backfill insert and the balance
// decrement commit together or not at all. Returns the backfilled period
// and the remaining balance.
func (s *Store) UseStreakSave(habitID string, ref time.Time) (period.Key, int, error) {
	h, err := s.GetHabit(habitID)
	if err != nil {
		return period.Key{}, 0, err
	}
	k, err := h.UseStreakSave(ref)
	if err != nil {
		return period.Key{}, 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return period.Key{}, 0, fmt.Errorf("begin save: %w", err)
	}
	at := k.Time()
	_, err = tx.Exec(
		`INSERT OR IGNORE INTO completions (habit_id, completed_at, day, source) VALUES (?, ?, ?, ?)`,
		habitID, at.Format(time.RFC3339), at.Format("2006-01-02"), string(habit.SourceSave),
	)
	if err == nil {
		_, err = tx.Exec(`UPDATE habits SET streak_saves = ? WHERE id = ?`, h.StreakSaves, habitID)
	}
	if err != nil {
		tx.Rollback()
		return period.Key{}, 0, fmt.Errorf("use streak save: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return period.Key{}, 0, fmt.Errorf("commit save: %w", err)
	}
	return k, h.StreakSaves, nil
}
