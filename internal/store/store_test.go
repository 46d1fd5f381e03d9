package store

import (
	"errors"
	"testing"
	"time"

	"habitual/internal/habit"
	"habitual/internal/period"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// mustRecord is a test helper that records a completion and fails the test
// if it errors or the row already existed.
func mustRecord(t *testing.T, s *Store, habitID string, at time.Time) {
	t.Helper()
	added, err := s.RecordCompletion(habitID, at, habit.SourceManual)
	if err != nil {
		t.Fatalf("record completion: %v", err)
	}
	if !added {
		t.Fatalf("completion for %v already recorded", at)
	}
}

func completionCount(t *testing.T, s *Store, habitID string) int {
	t.Helper()
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM completions WHERE habit_id = ?`, habitID).Scan(&n); err != nil {
		t.Fatalf("count completions: %v", err)
	}
	return n
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s, err := NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	// Should have run migration v1
	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != 1 {
		t.Fatalf("expected user_version 1, got %d", version)
	}
}

func TestNewWithPath(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/sub/habitual.db"
	s, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopen — should succeed and not re-migrate
	s2, err := New(path)
	if err != nil {
		t.Fatal(err)
	}
	s2.Close()
}

func TestDefaultDBPath(t *testing.T) {
	path, err := DefaultDBPath()
	if err != nil {
		t.Fatal(err)
	}
	if path == "" {
		t.Fatal("empty path")
	}
}

func TestPragmasConfigured(t *testing.T) {
	s := newTestStore(t)

	var fk int
	s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk)
	if fk != 1 {
		t.Fatalf("expected foreign_keys=1, got %d", fk)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	// Running migrate again should be a no-op
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

// ============================================================
// Habits
// ============================================================

func TestCreateAndGetHabit(t *testing.T) {
	s := newTestStore(t)
	h, err := s.CreateHabit("Meditate", period.Daily, 2)
	if err != nil {
		t.Fatal(err)
	}
	if h.Name != "Meditate" || h.Periodicity != period.Daily {
		t.Fatalf("unexpected habit: %+v", h)
	}
	if h.ID == "" {
		t.Fatal("expected non-empty ID")
	}
	if h.StreakSaves != 2 {
		t.Fatalf("expected 2 streak saves, got %d", h.StreakSaves)
	}
	if h.CreatedAt.IsZero() {
		t.Fatal("CreatedAt should be set")
	}
	if len(h.Completions) != 0 {
		t.Fatalf("new habit should have no completions, got %d", len(h.Completions))
	}

	fetched, err := s.GetHabit(h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.Name != "Meditate" {
		t.Fatalf("GetHabit returned wrong name: %s", fetched.Name)
	}
}

func TestCreateHabitDuplicateName(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateHabit("Dup", period.Daily, 0)
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.CreateHabit("Dup", period.Weekly, 0)
	if err == nil {
		t.Fatal("expected error for duplicate habit name")
	}
}

func TestCreateHabitEmptyName(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateHabit("   ", period.Daily, 0); !errors.Is(err, habit.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestCreateHabitInvalidPeriodicity(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateHabit("Read", period.Periodicity("hourly"), 0); !errors.Is(err, period.ErrUnsupportedPeriodicity) {
		t.Fatalf("expected ErrUnsupportedPeriodicity, got %v", err)
	}
}

func TestCreateHabitNegativeSaves(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateHabit("Read", period.Daily, -1); err == nil {
		t.Fatal("expected error for negative streak saves")
	}
}

func TestGetHabitNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetHabit("no-such-id")
	if err == nil {
		t.Fatal("expected error for missing habit")
	}
}

func TestGetHabitByName(t *testing.T) {
	s := newTestStore(t)
	created, _ := s.CreateHabit("Run", period.Weekly, 0)

	h, err := s.GetHabitByName("Run")
	if err != nil {
		t.Fatal(err)
	}
	if h.ID != created.ID {
		t.Fatalf("expected ID %s, got %s", created.ID, h.ID)
	}

	if _, err := s.GetHabitByName("Missing"); err == nil {
		t.Fatal("expected error for unknown name")
	}
}

func TestListHabits(t *testing.T) {
	s := newTestStore(t)
	s.CreateHabit("Write", period.Daily, 0)
	s.CreateHabit("Gym", period.Weekly, 0)

	habits, err := s.ListHabits()
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 2 {
		t.Fatalf("expected 2 habits, got %d", len(habits))
	}
	// Should be sorted by name
	if habits[0].Name != "Gym" || habits[1].Name != "Write" {
		t.Fatalf("expected sorted by name: got %s, %s", habits[0].Name, habits[1].Name)
	}
}

func TestListHabitsEmpty(t *testing.T) {
	s := newTestStore(t)
	habits, err := s.ListHabits()
	if err != nil {
		t.Fatal(err)
	}
	if habits != nil {
		t.Fatalf("expected nil slice, got %d items", len(habits))
	}
}

func TestListHabitsByPeriodicity(t *testing.T) {
	s := newTestStore(t)
	s.CreateHabit("Read", period.Daily, 0)
	s.CreateHabit("Gym", period.Weekly, 0)
	s.CreateHabit("Review budget", period.Monthly, 0)

	weekly, err := s.ListHabitsByPeriodicity(period.Weekly)
	if err != nil {
		t.Fatal(err)
	}
	if len(weekly) != 1 || weekly[0].Name != "Gym" {
		t.Fatalf("expected only Gym, got %+v", weekly)
	}

	if _, err := s.ListHabitsByPeriodicity(period.Periodicity("hourly")); !errors.Is(err, period.ErrUnsupportedPeriodicity) {
		t.Fatalf("expected ErrUnsupportedPeriodicity, got %v", err)
	}
}

func TestListHabitsIncludesCompletions(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Read", period.Daily, 0)
	mustRecord(t, s, h.ID, date(2025, time.April, 14))
	mustRecord(t, s, h.ID, date(2025, time.April, 15))

	habits, err := s.ListHabits()
	if err != nil {
		t.Fatal(err)
	}
	if len(habits) != 1 {
		t.Fatalf("expected 1 habit, got %d", len(habits))
	}
	if len(habits[0].Completions) != 2 {
		t.Fatalf("expected 2 completions loaded, got %d", len(habits[0].Completions))
	}
}

func TestRenameHabit(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Old", period.Daily, 0)

	if err := s.RenameHabit(h.ID, "  New  "); err != nil {
		t.Fatal(err)
	}
	renamed, _ := s.GetHabit(h.ID)
	if renamed.Name != "New" {
		t.Fatalf("expected trimmed name New, got %q", renamed.Name)
	}

	if err := s.RenameHabit(h.ID, "   "); !errors.Is(err, habit.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestRenameHabitToExistingName(t *testing.T) {
	s := newTestStore(t)
	s.CreateHabit("Taken", period.Daily, 0)
	h, _ := s.CreateHabit("Free", period.Daily, 0)

	if err := s.RenameHabit(h.ID, "Taken"); err == nil {
		t.Fatal("expected error renaming to an existing name")
	}
}

func TestUpdatePeriodicity(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Read", period.Daily, 0)

	if err := s.UpdatePeriodicity(h.ID, period.Monthly); err != nil {
		t.Fatal(err)
	}
	updated, _ := s.GetHabit(h.ID)
	if updated.Periodicity != period.Monthly {
		t.Fatalf("expected monthly, got %s", updated.Periodicity)
	}

	if err := s.UpdatePeriodicity(h.ID, period.Periodicity("hourly")); !errors.Is(err, period.ErrUnsupportedPeriodicity) {
		t.Fatalf("expected ErrUnsupportedPeriodicity, got %v", err)
	}
}

func TestSetStreakSaves(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Read", period.Daily, 0)

	if err := s.SetStreakSaves(h.ID, 5); err != nil {
		t.Fatal(err)
	}
	updated, _ := s.GetHabit(h.ID)
	if updated.StreakSaves != 5 {
		t.Fatalf("expected 5 saves, got %d", updated.StreakSaves)
	}

	if err := s.SetStreakSaves(h.ID, -1); err == nil {
		t.Fatal("expected error for negative saves")
	}
}

func TestDeleteHabitCascades(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Doomed", period.Daily, 0)
	mustRecord(t, s, h.ID, date(2025, time.April, 14))
	mustRecord(t, s, h.ID, date(2025, time.April, 15))

	if err := s.DeleteHabit(h.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetHabit(h.ID); err == nil {
		t.Fatal("expected deleted habit to be gone")
	}
	if n := completionCount(t, s, h.ID); n != 0 {
		t.Fatalf("expected cascade to remove completions, %d left", n)
	}
}

func TestDeleteHabitNotFound(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteHabit("no-such-id"); err == nil {
		t.Fatal("expected error deleting a missing habit")
	}
}

// ============================================================
// Completions
// ============================================================

func TestRecordCompletion(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Read", period.Daily, 0)

	added, err := s.RecordCompletion(h.ID, time.Date(2025, time.April, 15, 18, 30, 0, 0, time.UTC), habit.SourceManual)
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Fatal("expected first completion to be added")
	}

	loaded, _ := s.GetHabit(h.ID)
	if len(loaded.Completions) != 1 {
		t.Fatalf("expected 1 completion, got %d", len(loaded.Completions))
	}
	if loaded.Completions[0].Source != habit.SourceManual {
		t.Fatalf("expected manual source, got %q", loaded.Completions[0].Source)
	}
}

func TestRecordCompletionSameDayIdempotent(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Read", period.Daily, 0)

	mustRecord(t, s, h.ID, time.Date(2025, time.April, 15, 8, 0, 0, 0, time.UTC))
	added, err := s.RecordCompletion(h.ID, time.Date(2025, time.April, 15, 22, 0, 0, 0, time.UTC), habit.SourceManual)
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Fatal("expected same-day completion to be ignored")
	}
	if n := completionCount(t, s, h.ID); n != 1 {
		t.Fatalf("expected 1 row, got %d", n)
	}
}

func TestRecordCompletionKeepsWeeklyDays(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Gym", period.Weekly, 0)

	mustRecord(t, s, h.ID, date(2025, time.April, 14))
	mustRecord(t, s, h.ID, date(2025, time.April, 16))

	// Raw rows per day even though both land in one week.
	if n := completionCount(t, s, h.ID); n != 2 {
		t.Fatalf("expected 2 rows, got %d", n)
	}
	loaded, _ := s.GetHabit(h.ID)
	if loaded.Ledger().Len() != 1 {
		t.Fatalf("expected a single week key, got %d", loaded.Ledger().Len())
	}
}

func TestRecordCompletionZeroTime(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Read", period.Daily, 0)
	if _, err := s.RecordCompletion(h.ID, time.Time{}, habit.SourceManual); !errors.Is(err, period.ErrInvalidTimestamp) {
		t.Fatalf("expected ErrInvalidTimestamp, got %v", err)
	}
}

func TestListCompletionsChronological(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Read", period.Daily, 0)

	mustRecord(t, s, h.ID, date(2025, time.April, 15))
	mustRecord(t, s, h.ID, date(2025, time.April, 12))
	mustRecord(t, s, h.ID, date(2025, time.April, 14))

	completions, err := s.ListCompletions(h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(completions) != 3 {
		t.Fatalf("expected 3 completions, got %d", len(completions))
	}
	for i := 1; i < len(completions); i++ {
		if completions[i].At.Before(completions[i-1].At) {
			t.Fatal("completions should be in chronological order")
		}
	}
}

func TestListCompletionsEmpty(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Read", period.Daily, 0)
	completions, err := s.ListCompletions(h.ID)
	if err != nil {
		t.Fatal(err)
	}
	if completions != nil {
		t.Fatalf("expected nil slice, got %d items", len(completions))
	}
}

func TestDeleteCompletion(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Read", period.Daily, 0)
	mustRecord(t, s, h.ID, date(2025, time.April, 15))

	removed, err := s.DeleteCompletion(h.ID, "2025-04-15")
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("expected completion to be removed")
	}
	removed, _ = s.DeleteCompletion(h.ID, "2025-04-15")
	if removed {
		t.Fatal("expected second delete to be a no-op")
	}
}

func TestDeleteCompletionPeriod(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Gym", period.Weekly, 0)

	mustRecord(t, s, h.ID, date(2025, time.April, 14))
	mustRecord(t, s, h.ID, date(2025, time.April, 16))
	mustRecord(t, s, h.ID, date(2025, time.April, 18))
	mustRecord(t, s, h.ID, date(2025, time.April, 21)) // next week

	week, err := period.KeyOf(date(2025, time.April, 14), period.Weekly)
	if err != nil {
		t.Fatal(err)
	}
	n, err := s.DeleteCompletionPeriod(h.ID, week, period.Weekly)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("expected 3 deletions, got %d", n)
	}
	if left := completionCount(t, s, h.ID); left != 1 {
		t.Fatalf("expected 1 completion left, got %d", left)
	}
}

// ============================================================
// Streak saves
// ============================================================

func TestUseStreakSave(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Read", period.Daily, 2)

	mustRecord(t, s, h.ID, date(2025, time.April, 12))
	mustRecord(t, s, h.ID, date(2025, time.April, 13))
	// April 14 missed.
	ref := date(2025, time.April, 15)

	k, remaining, err := s.UseStreakSave(h.ID, ref)
	if err != nil {
		t.Fatal(err)
	}
	if !k.Time().Equal(date(2025, time.April, 14)) {
		t.Fatalf("expected backfilled period 2025-04-14, got %v", k.Time())
	}
	if remaining != 1 {
		t.Fatalf("expected 1 save left, got %d", remaining)
	}

	loaded, _ := s.GetHabit(h.ID)
	if loaded.StreakSaves != 1 {
		t.Fatalf("expected persisted balance 1, got %d", loaded.StreakSaves)
	}
	res, err := loaded.Metrics(ref)
	if err != nil {
		t.Fatal(err)
	}
	if res.Current != 3 || res.Broken {
		t.Fatalf("expected alive streak of 3 after save, got current %d broken %v", res.Current, res.Broken)
	}

	last, ok := loaded.LastCompletion()
	if !ok || last.Source != habit.SourceSave {
		t.Fatalf("expected last completion to be a save backfill, got %+v", last)
	}
}

func TestUseStreakSaveWithoutBalance(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Read", period.Daily, 0)
	mustRecord(t, s, h.ID, date(2025, time.April, 13))

	if _, _, err := s.UseStreakSave(h.ID, date(2025, time.April, 15)); !errors.Is(err, habit.ErrNoStreakSaves) {
		t.Fatalf("expected ErrNoStreakSaves, got %v", err)
	}
	if n := completionCount(t, s, h.ID); n != 1 {
		t.Fatalf("expected history untouched, got %d rows", n)
	}
}

func TestUseStreakSaveNothingToSave(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Read", period.Daily, 1)
	mustRecord(t, s, h.ID, date(2025, time.April, 14))

	if _, _, err := s.UseStreakSave(h.ID, date(2025, time.April, 15)); !errors.Is(err, habit.ErrNothingToSave) {
		t.Fatalf("expected ErrNothingToSave, got %v", err)
	}
	loaded, _ := s.GetHabit(h.ID)
	if loaded.StreakSaves != 1 {
		t.Fatalf("expected balance untouched, got %d", loaded.StreakSaves)
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)

	defaults := map[string]string{
		"default_periodicity":  "daily",
		"default_streak_saves": "0",
		"trend_window":         "30",
	}

	for k, expected := range defaults {
		val, err := s.GetSetting(k)
		if err != nil {
			t.Fatalf("GetSetting(%q): %v", k, err)
		}
		if val != expected {
			t.Fatalf("GetSetting(%q) = %q, want %q", k, val, expected)
		}
	}
}

func TestSetSetting(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting(SettingTrendWindow, "14")
	val, _ := s.GetSetting(SettingTrendWindow)
	if val != "14" {
		t.Fatalf("expected 14, got %s", val)
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)

	s.SetSetting("key", "v1")
	s.SetSetting("key", "v2")
	val, _ := s.GetSetting("key")
	if val != "v2" {
		t.Fatalf("expected v2, got %s", val)
	}
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nonexistent")
	if err == nil {
		t.Fatal("expected error for missing setting")
	}
}

func TestGetAllSettings(t *testing.T) {
	s := newTestStore(t)
	all, err := s.GetAllSettings()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) < 3 {
		t.Fatalf("expected at least 3 default settings, got %d", len(all))
	}
	// Should be sorted by key
	for i := 1; i < len(all); i++ {
		if all[i-1].Key >= all[i].Key {
			t.Fatalf("settings not sorted: %s >= %s", all[i-1].Key, all[i].Key)
		}
	}
}

func TestTypedSettingHelpers(t *testing.T) {
	s := newTestStore(t)

	if p := s.DefaultPeriodicity(); p != period.Daily {
		t.Fatalf("expected daily default, got %s", p)
	}
	s.SetSetting(SettingDefaultPeriodicity, "weekly")
	if p := s.DefaultPeriodicity(); p != period.Weekly {
		t.Fatalf("expected weekly, got %s", p)
	}
	s.SetSetting(SettingDefaultPeriodicity, "garbage")
	if p := s.DefaultPeriodicity(); p != period.Daily {
		t.Fatalf("expected fallback to daily, got %s", p)
	}

	if n := s.DefaultStreakSaves(); n != 0 {
		t.Fatalf("expected 0 default saves, got %d", n)
	}
	s.SetSetting(SettingDefaultStreakSaves, "3")
	if n := s.DefaultStreakSaves(); n != 3 {
		t.Fatalf("expected 3, got %d", n)
	}

	if n := s.TrendWindow(); n != 30 {
		t.Fatalf("expected window 30, got %d", n)
	}
	s.SetSetting(SettingTrendWindow, "not-a-number")
	if n := s.TrendWindow(); n != 30 {
		t.Fatalf("expected fallback window 30, got %d", n)
	}
}

// ============================================================
// Foreign key constraints
// ============================================================

func TestForeignKeyCompletionsHabit(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RecordCompletion("no-such-habit", date(2025, time.April, 15), habit.SourceManual)
	if err == nil {
		t.Fatal("expected foreign key error")
	}
}

// ============================================================
// Close
// ============================================================

func TestCloseStore(t *testing.T) {
	s, _ := NewMemory()
	err := s.Close()
	if err != nil {
		t.Fatalf("first close: %v", err)
	}
}

// ============================================================
// Edge cases
// ============================================================

func TestMetricsFromStoredHistory(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Read", period.Daily, 0)

	mustRecord(t, s, h.ID, date(2025, time.April, 13))
	mustRecord(t, s, h.ID, date(2025, time.April, 14))
	mustRecord(t, s, h.ID, date(2025, time.April, 15))

	loaded, _ := s.GetHabit(h.ID)
	res, err := loaded.Metrics(date(2025, time.April, 15))
	if err != nil {
		t.Fatal(err)
	}
	if res.Current != 3 || res.Longest != 3 || res.Broken {
		t.Fatalf("expected 3/3 alive, got %+v", res)
	}
}

func TestPeriodicityChangeRebucketsStoredHistory(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.CreateHabit("Read", period.Daily, 0)

	mustRecord(t, s, h.ID, date(2025, time.April, 14))
	mustRecord(t, s, h.ID, date(2025, time.April, 15))
	mustRecord(t, s, h.ID, date(2025, time.April, 16))

	if err := s.UpdatePeriodicity(h.ID, period.Weekly); err != nil {
		t.Fatal(err)
	}
	loaded, _ := s.GetHabit(h.ID)
	res, err := loaded.Metrics(date(2025, time.April, 16))
	if err != nil {
		t.Fatal(err)
	}
	if res.Current != 1 {
		t.Fatalf("expected the week to count once, got %d", res.Current)
	}
	if n := completionCount(t, s, h.ID); n != 3 {
		t.Fatalf("expected raw rows untouched, got %d", n)
	}
}
