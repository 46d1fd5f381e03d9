package store

import (
	"fmt"
	"strconv"

	"habitual/internal/period"
)

// Setting keys.
const (
	SettingDefaultPeriodicity = "default_periodicity"
	SettingDefaultStreakSaves = "default_streak_saves"
	SettingTrendWindow        = "trend_window"
)

type Setting struct {
	Key   string
	Value string
}

func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *Store) GetAllSettings() ([]Setting, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	var settings []Setting
	for rows.Next() {
		var s Setting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		settings = append(settings, s)
	}
	return settings, rows.Err()
}

// DefaultPeriodicity returns the configured periodicity for new habits,
// falling back to daily when the value is missing or unparseable.
func (s *Store) DefaultPeriodicity() period.Periodicity {
	v, err := s.GetSetting(SettingDefaultPeriodicity)
	if err != nil {
		return period.Daily
	}
	p, err := period.Parse(v)
	if err != nil {
		return period.Daily
	}
	return p
}

// DefaultStreakSaves returns the save balance granted to new habits.
func (s *Store) DefaultStreakSaves() int {
	return s.intSetting(SettingDefaultStreakSaves, 0)
}

// TrendWindow returns the number of periods trend charts display.
func (s *Store) TrendWindow() int {
	n := s.intSetting(SettingTrendWindow, 30)
	if n < 1 {
		return 30
	}
	return n
}

func (s *Store) intSetting(key string, fallback int) int {
	v, err := s.GetSetting(key)
	if err != nil {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
