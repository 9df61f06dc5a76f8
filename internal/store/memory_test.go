package store_test

import (
	"testing"
	"time"

	"drivemeta/internal/store"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	s := store.NewMemoryStore()
	defer s.Close()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := s.RecordRun(testRun(runID(i), base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
	}

	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].ID != "run-2" {
		t.Errorf("newest run = %s, want run-2", runs[0].ID)
	}

	got, err := s.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got == nil || got.ID != "run-1" {
		t.Fatalf("GetRun() = %+v", got)
	}

	// Mutating a returned run must not affect the stored copy.
	got.Status = "tampered"
	again, _ := s.GetRun("run-1")
	if again.Status == "tampered" {
		t.Error("store returned a shared run instance")
	}

	if missing, _ := s.GetRun("nope"); missing != nil {
		t.Errorf("GetRun(missing) = %+v, want nil", missing)
	}
	if err := s.CheckMigrations(); err != nil {
		t.Errorf("CheckMigrations() error = %v", err)
	}
}
