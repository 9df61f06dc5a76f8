package meta_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"drivemeta/internal/drive"
	"drivemeta/internal/meta"
)

// slowResolver blocks Resolve for a fixed duration on selected item IDs.
type slowResolver struct {
	delay time.Duration
	ids   map[string]bool
}

func (r *slowResolver) Resolve(itemID, name string) string {
	if r.ids[itemID] {
		time.Sleep(r.delay)
	}
	return name
}

// panicResolver panics on selected item IDs.
type panicResolver struct {
	ids map[string]bool
}

func (r *panicResolver) Resolve(itemID, name string) string {
	if r.ids[itemID] {
		panic("malformed item")
	}
	return name
}

func makeItems(n int) []drive.RawItem {
	items := make([]drive.RawItem, 0, n)
	for i := 0; i < n; i++ {
		items = append(items, drive.RawItem{
			ID:       fmt.Sprintf("item-%03d", i),
			Name:     fmt.Sprintf("file-%03d.txt", i),
			MimeType: "text/plain",
			Size:     "100",
		})
	}
	return items
}

func recordIDs(records []meta.FileRecord) []string {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	sort.Strings(ids)
	return ids
}

func TestScheduler_Workers(t *testing.T) {
	t.Parallel()
	tests := []struct {
		requested int
		want      int
	}{
		{0, 1},
		{-5, 1},
		{1, 1},
		{3, 3},
		{4, 4},
		{8, 4},
	}
	canon := meta.NewCanonicalizer(nil)
	for _, tt := range tests {
		s := meta.NewScheduler(canon, tt.requested, 0, nil)
		if got := s.Workers(); got != tt.want {
			t.Errorf("NewScheduler(workers=%d).Workers() = %d, want %d", tt.requested, got, tt.want)
		}
	}
}

func TestScheduler_Process(t *testing.T) {
	canon := meta.NewCanonicalizer(nil)

	t.Run("sequential and parallel produce the same record set", func(t *testing.T) {
		t.Parallel()
		items := makeItems(50)

		seq := meta.NewScheduler(canon, 1, time.Second, nil)
		seqRecords, seqFailed, err := seq.Process(context.Background(), items, nil, nil)
		if err != nil {
			t.Fatalf("sequential Process() error = %v", err)
		}

		par := meta.NewScheduler(canon, 4, time.Second, nil)
		parRecords, parFailed, err := par.Process(context.Background(), items, nil, nil)
		if err != nil {
			t.Fatalf("parallel Process() error = %v", err)
		}

		if len(seqFailed) != 0 || len(parFailed) != 0 {
			t.Fatalf("unexpected failures: seq=%v par=%v", seqFailed, parFailed)
		}

		seqIDs, parIDs := recordIDs(seqRecords), recordIDs(parRecords)
		if len(seqIDs) != 50 || len(parIDs) != 50 {
			t.Fatalf("record counts: seq=%d par=%d, want 50", len(seqIDs), len(parIDs))
		}
		for i := range seqIDs {
			if seqIDs[i] != parIDs[i] {
				t.Fatalf("record sets differ at %d: %s vs %s", i, seqIDs[i], parIDs[i])
			}
		}
	})

	t.Run("per-item timeout becomes a failure, not a fatal error", func(t *testing.T) {
		t.Parallel()
		slowCanon := meta.NewCanonicalizer(&slowResolver{
			delay: 500 * time.Millisecond,
			ids:   map[string]bool{"item-003": true},
		})

		items := makeItems(10)
		s := meta.NewScheduler(slowCanon, 2, 50*time.Millisecond, nil)
		records, failed, err := s.Process(context.Background(), items, nil, nil)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if len(failed) != 1 || failed[0] != "item-003" {
			t.Fatalf("failed = %v, want [item-003]", failed)
		}
		if len(records) != 9 {
			t.Fatalf("got %d records, want 9", len(records))
		}
		for _, r := range records {
			if r.ID == "item-003" {
				t.Error("timed-out item leaked into the results")
			}
		}
	})

	t.Run("panic during normalization is a per-item failure", func(t *testing.T) {
		t.Parallel()
		panicCanon := meta.NewCanonicalizer(&panicResolver{ids: map[string]bool{"item-005": true}})

		items := makeItems(10)
		s := meta.NewScheduler(panicCanon, 1, time.Second, nil)
		records, failed, err := s.Process(context.Background(), items, nil, nil)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if len(failed) != 1 || failed[0] != "item-005" {
			t.Fatalf("failed = %v, want [item-005]", failed)
		}
		if len(records) != 9 {
			t.Fatalf("got %d records, want 9", len(records))
		}
	})

	t.Run("checkpoint stop aborts between batches", func(t *testing.T) {
		t.Parallel()
		items := makeItems(35)

		completions := 0
		checkpoint := func() error {
			completions++
			if completions >= 12 {
				return meta.ErrStopped
			}
			return nil
		}

		s := meta.NewScheduler(canon, 2, time.Second, nil)
		records, failed, err := s.Process(context.Background(), items, nil, checkpoint)
		if !errors.Is(err, meta.ErrStopped) {
			t.Fatalf("Process() error = %v, want ErrStopped", err)
		}
		if records != nil || failed != nil {
			t.Error("stopped run must not return partial results")
		}
	})

	t.Run("progress reports completion counts", func(t *testing.T) {
		t.Parallel()
		items := makeItems(7)

		var lastDone, lastTotal int
		progress := func(phase string, done, total int, message string) {
			lastDone, lastTotal = done, total
		}

		s := meta.NewScheduler(canon, 1, time.Second, nil)
		if _, _, err := s.Process(context.Background(), items, progress, nil); err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if lastDone != 7 || lastTotal != 7 {
			t.Errorf("final progress = %d/%d, want 7/7", lastDone, lastTotal)
		}
	})

	t.Run("empty item list", func(t *testing.T) {
		t.Parallel()
		s := meta.NewScheduler(canon, 2, time.Second, nil)
		records, failed, err := s.Process(context.Background(), nil, nil, nil)
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if len(records) != 0 || len(failed) != 0 {
			t.Errorf("got %d records / %d failures, want none", len(records), len(failed))
		}
	})
}
