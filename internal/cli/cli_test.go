package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"habitual/internal/habit"
	"habitual/internal/period"
	"habitual/internal/store"
)

func newTestContext(t *testing.T) *Context {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return &Context{Store: s}
}

// ============================================================
// Helpers
// ============================================================

func TestParseOnDefaultsToNow(t *testing.T) {
	ts, err := parseOn("")
	if err != nil {
		t.Fatalf("parseOn: %v", err)
	}
	if ts.IsZero() {
		t.Fatal("expected a non-zero default")
	}
}

func TestParseOnDate(t *testing.T) {
	ts, err := parseOn("2025-04-15")
	if err != nil {
		t.Fatalf("parseOn: %v", err)
	}
	if ts.UTC().Format("2006-01-02") != "2025-04-15" {
		t.Fatalf("expected 2025-04-15, got %v", ts)
	}
}

func TestParseOnInvalid(t *testing.T) {
	for _, s := range []string{"15/04/2025", "yesterday", "2025-4-5x"} {
		if _, err := parseOn(s); err == nil {
			t.Errorf("parseOn(%q): expected error", s)
		}
	}
}

func TestDescribeStreak(t *testing.T) {
	got := describeStreak(1, 4, false, "day")
	if got != "current 1 day, longest 4 days (alive)" {
		t.Fatalf("unexpected description: %q", got)
	}
	got = describeStreak(0, 2, true, "week")
	if !strings.Contains(got, "broken") {
		t.Fatalf("expected broken state, got %q", got)
	}
}

// ============================================================
// Commands
// ============================================================

func TestAddCmd(t *testing.T) {
	ctx := newTestContext(t)
	cmd := &AddCmd{Name: "Read", Periodicity: "weekly", Saves: 2}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("add: %v", err)
	}

	h, err := ctx.Store.GetHabitByName("Read")
	if err != nil {
		t.Fatal(err)
	}
	if h.Periodicity != period.Weekly || h.StreakSaves != 2 {
		t.Fatalf("unexpected habit: %+v", h)
	}
}

func TestAddCmdDefaultsFromSettings(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Store.SetSetting(store.SettingDefaultPeriodicity, "monthly")
	ctx.Store.SetSetting(store.SettingDefaultStreakSaves, "3")

	cmd := &AddCmd{Name: "Budget", Saves: -1}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("add: %v", err)
	}
	h, _ := ctx.Store.GetHabitByName("Budget")
	if h.Periodicity != period.Monthly {
		t.Fatalf("expected monthly from settings, got %s", h.Periodicity)
	}
	if h.StreakSaves != 3 {
		t.Fatalf("expected 3 saves from settings, got %d", h.StreakSaves)
	}
}

func TestAddCmdExplicitZeroSaves(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Store.SetSetting(store.SettingDefaultStreakSaves, "5")

	cmd := &AddCmd{Name: "Read", Saves: 0}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("add: %v", err)
	}
	h, _ := ctx.Store.GetHabitByName("Read")
	if h.StreakSaves != 0 {
		t.Fatalf("expected explicit 0 to win over the setting, got %d", h.StreakSaves)
	}
}

func TestAddCmdInvalidPeriodicity(t *testing.T) {
	ctx := newTestContext(t)
	cmd := &AddCmd{Name: "Read", Periodicity: "hourly", Saves: -1}
	if err := cmd.Run(ctx); !errors.Is(err, period.ErrUnsupportedPeriodicity) {
		t.Fatalf("expected ErrUnsupportedPeriodicity, got %v", err)
	}
}

func TestDoneCmd(t *testing.T) {
	ctx := newTestContext(t)
	if err := (&AddCmd{Name: "Read", Saves: -1}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	done := &DoneCmd{Name: "Read", On: "2025-04-15"}
	if err := done.Run(ctx); err != nil {
		t.Fatalf("done: %v", err)
	}
	h, _ := ctx.Store.GetHabitByName("Read")
	if len(h.Completions) != 1 {
		t.Fatalf("expected 1 completion, got %d", len(h.Completions))
	}

	// Same day again is a friendly no-op.
	if err := done.Run(ctx); err != nil {
		t.Fatalf("repeat done: %v", err)
	}
	h, _ = ctx.Store.GetHabitByName("Read")
	if len(h.Completions) != 1 {
		t.Fatalf("expected completion count unchanged, got %d", len(h.Completions))
	}
}

func TestDoneCmdUnknownHabit(t *testing.T) {
	ctx := newTestContext(t)
	if err := (&DoneCmd{Name: "Ghost"}).Run(ctx); err == nil {
		t.Fatal("expected error for unknown habit")
	}
}

func TestUndoCmd(t *testing.T) {
	ctx := newTestContext(t)
	(&AddCmd{Name: "Read", Saves: -1}).Run(ctx)
	(&DoneCmd{Name: "Read", On: "2025-04-15"}).Run(ctx)

	undo := &UndoCmd{Name: "Read", On: "2025-04-15"}
	if err := undo.Run(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	h, _ := ctx.Store.GetHabitByName("Read")
	if len(h.Completions) != 0 {
		t.Fatalf("expected history cleared, got %d", len(h.Completions))
	}

	// Clearing an empty period reports rather than errors.
	if err := undo.Run(ctx); err != nil {
		t.Fatalf("repeat undo: %v", err)
	}
}

func TestUndoCmdClearsWholePeriod(t *testing.T) {
	ctx := newTestContext(t)
	(&AddCmd{Name: "Gym", Periodicity: "weekly", Saves: -1}).Run(ctx)
	(&DoneCmd{Name: "Gym", On: "2025-04-14"}).Run(ctx)
	(&DoneCmd{Name: "Gym", On: "2025-04-16"}).Run(ctx)

	if err := (&UndoCmd{Name: "Gym", On: "2025-04-15"}).Run(ctx); err != nil {
		t.Fatalf("undo: %v", err)
	}
	h, _ := ctx.Store.GetHabitByName("Gym")
	if len(h.Completions) != 0 {
		t.Fatalf("expected the whole week cleared, got %d completions", len(h.Completions))
	}
}

func TestSaveCmd(t *testing.T) {
	ctx := newTestContext(t)
	(&AddCmd{Name: "Read", Saves: 1}).Run(ctx)
	(&DoneCmd{Name: "Read", On: "2025-04-13"}).Run(ctx)

	if err := (&SaveCmd{Name: "Read", On: "2025-04-15"}).Run(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	h, _ := ctx.Store.GetHabitByName("Read")
	if h.StreakSaves != 0 {
		t.Fatalf("expected balance spent, got %d", h.StreakSaves)
	}
	last, ok := h.LastCompletion()
	if !ok || last.Source != habit.SourceSave {
		t.Fatalf("expected a save backfill, got %+v", last)
	}
}

func TestSaveCmdNoBalance(t *testing.T) {
	ctx := newTestContext(t)
	(&AddCmd{Name: "Read", Saves: 0}).Run(ctx)
	(&DoneCmd{Name: "Read", On: "2025-04-13"}).Run(ctx)

	if err := (&SaveCmd{Name: "Read", On: "2025-04-15"}).Run(ctx); !errors.Is(err, habit.ErrNoStreakSaves) {
		t.Fatalf("expected ErrNoStreakSaves, got %v", err)
	}
}

func TestStreakCmd(t *testing.T) {
	ctx := newTestContext(t)
	(&AddCmd{Name: "Read", Saves: -1}).Run(ctx)
	(&DoneCmd{Name: "Read", On: "2025-04-15"}).Run(ctx)

	if err := (&StreakCmd{Name: "Read", On: "2025-04-15"}).Run(ctx); err != nil {
		t.Fatalf("streak: %v", err)
	}
	if err := (&StreakCmd{Name: "Ghost"}).Run(ctx); err == nil {
		t.Fatal("expected error for unknown habit")
	}
}

func TestRenameCmd(t *testing.T) {
	ctx := newTestContext(t)
	(&AddCmd{Name: "Old", Saves: -1}).Run(ctx)

	if err := (&RenameCmd{Name: "Old", NewName: "New"}).Run(ctx); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if _, err := ctx.Store.GetHabitByName("New"); err != nil {
		t.Fatal("expected habit under new name")
	}
	if _, err := ctx.Store.GetHabitByName("Old"); err == nil {
		t.Fatal("expected old name gone")
	}
}

func TestPeriodCmd(t *testing.T) {
	ctx := newTestContext(t)
	(&AddCmd{Name: "Read", Saves: -1}).Run(ctx)

	if err := (&PeriodCmd{Name: "Read", Periodicity: "monthly"}).Run(ctx); err != nil {
		t.Fatalf("period: %v", err)
	}
	h, _ := ctx.Store.GetHabitByName("Read")
	if h.Periodicity != period.Monthly {
		t.Fatalf("expected monthly, got %s", h.Periodicity)
	}

	if err := (&PeriodCmd{Name: "Read", Periodicity: "hourly"}).Run(ctx); !errors.Is(err, period.ErrUnsupportedPeriodicity) {
		t.Fatalf("expected ErrUnsupportedPeriodicity, got %v", err)
	}
}

func TestDeleteCmd(t *testing.T) {
	ctx := newTestContext(t)
	(&AddCmd{Name: "Doomed", Saves: -1}).Run(ctx)
	(&DoneCmd{Name: "Doomed", On: "2025-04-15"}).Run(ctx)

	if err := (&DeleteCmd{Name: "Doomed"}).Run(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := ctx.Store.GetHabitByName("Doomed"); err == nil {
		t.Fatal("expected habit gone")
	}
}

func TestListCmd(t *testing.T) {
	ctx := newTestContext(t)
	if err := (&ListCmd{}).Run(ctx); err != nil {
		t.Fatalf("empty list: %v", err)
	}
	(&AddCmd{Name: "Read", Saves: -1}).Run(ctx)
	(&AddCmd{Name: "Gym", Periodicity: "weekly", Saves: -1}).Run(ctx)

	if err := (&ListCmd{On: "2025-04-15"}).Run(ctx); err != nil {
		t.Fatalf("list: %v", err)
	}
	if err := (&ListCmd{Periodicity: "weekly"}).Run(ctx); err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if err := (&ListCmd{Periodicity: "hourly"}).Run(ctx); err == nil {
		t.Fatal("expected error for invalid periodicity filter")
	}
}

func TestTrendCmd(t *testing.T) {
	ctx := newTestContext(t)
	(&AddCmd{Name: "Read", Saves: -1}).Run(ctx)
	(&DoneCmd{Name: "Read", On: "2025-04-14"}).Run(ctx)
	(&DoneCmd{Name: "Read", On: "2025-04-15"}).Run(ctx)

	if err := (&TrendCmd{Name: "Read", Periods: 7, On: "2025-04-15"}).Run(ctx); err != nil {
		t.Fatalf("trend: %v", err)
	}
}

func TestExportCmd(t *testing.T) {
	ctx := newTestContext(t)
	(&AddCmd{Name: "Read", Saves: -1}).Run(ctx)
	(&DoneCmd{Name: "Read", On: "2025-04-15"}).Run(ctx)

	out := filepath.Join(t.TempDir(), "dump.json")
	if err := (&ExportCmd{Format: "json", Out: out}).Run(ctx); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected export file: %v", err)
	}
}
