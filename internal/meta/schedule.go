package meta

import (
	"context"
	"fmt"
	"time"

	"drivemeta/internal/drive"
)

const (
	// maxWorkers caps extraction concurrency. The remote API exhibits higher
	// error rates under load, so stability wins over throughput.
	maxWorkers = 4

	// batchSize bounds in-flight extractions so only one batch's worth of
	// futures exists at a time, and gives pause/stop a natural checkpoint.
	batchSize = 10

	// defaultItemTimeout bounds a single item's extraction. A completion that
	// arrives after its deadline is discarded, never leaked into the results.
	defaultItemTimeout = 60 * time.Second
)

// Scheduler applies the canonicalizer to a flat item list under bounded
// parallelism. Per-item failures are accumulated, never fatal: partial success
// is the normal terminal condition when some items fail.
type Scheduler struct {
	canon       *Canonicalizer
	workers     int
	itemTimeout time.Duration
	logger      Logger
}

// NewScheduler creates a Scheduler with concurrency clamped to [1, 4].
// A non-positive timeout selects the default.
func NewScheduler(canon *Canonicalizer, workers int, itemTimeout time.Duration, logger Logger) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	if itemTimeout <= 0 {
		itemTimeout = defaultItemTimeout
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Scheduler{canon: canon, workers: workers, itemTimeout: itemTimeout, logger: logger}
}

// Workers returns the effective worker count.
func (s *Scheduler) Workers() int { return s.workers }

// itemOutcome is the result of one item's extraction.
type itemOutcome struct {
	record FileRecord
	itemID string
	err    error
}

// Process extracts every item and returns the successful records and the IDs
// of failed items. Result order is completion order and carries no guarantee;
// sequential and parallel runs produce the same record set. checkpoint is
// honored after every item completion; a checkpoint error (stop) aborts
// between batches after the in-flight batch drains.
func (s *Scheduler) Process(ctx context.Context, items []drive.RawItem, progress ProgressFunc, checkpoint CheckpointFunc) ([]FileRecord, []string, error) {
	if progress == nil {
		progress = func(string, int, int, string) {}
	}
	if checkpoint == nil {
		checkpoint = func() error { return nil }
	}

	total := len(items)
	progress("processing", 0, total, fmt.Sprintf("Processing %d files with %d workers...", total, s.workers))

	var records []FileRecord
	var failed []string
	done := 0

	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		batch := items[start:end]

		var checkpointErr error
		apply := func(out itemOutcome) {
			if out.err != nil {
				s.logger.Warn("item extraction failed", "item_id", out.itemID, "error", out.err)
				failed = append(failed, out.itemID)
			} else {
				records = append(records, out.record)
			}
			done++
			progress("processing", done, total, fmt.Sprintf("Processed %d/%d files...", done, total))
			if err := checkpoint(); err != nil && checkpointErr == nil {
				checkpointErr = err
			}
		}

		if s.workers == 1 {
			for _, item := range batch {
				apply(s.extractOne(item))
				if checkpointErr != nil {
					return nil, nil, checkpointErr
				}
			}
			continue
		}

		// Dispatch the whole batch to the worker pool, then drain it.
		// A stop observed mid-batch still lets in-flight work finish.
		outcomes := make(chan itemOutcome, len(batch))
		sem := make(chan struct{}, s.workers)
		for _, item := range batch {
			item := item
			sem <- struct{}{}
			go func() {
				defer func() { <-sem }()
				outcomes <- s.extractWithTimeout(item)
			}()
		}
		for range batch {
			apply(<-outcomes)
		}
		if checkpointErr != nil {
			return nil, nil, checkpointErr
		}

		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
	}

	return records, failed, nil
}

// extractWithTimeout runs one extraction with a deadline. If the deadline
// passes, the outcome is a failure and any late completion is dropped on a
// buffered channel.
func (s *Scheduler) extractWithTimeout(item drive.RawItem) itemOutcome {
	result := make(chan itemOutcome, 1)
	go func() {
		result <- s.extractOne(item)
	}()

	timer := time.NewTimer(s.itemTimeout)
	defer timer.Stop()

	select {
	case out := <-result:
		return out
	case <-timer.C:
		return itemOutcome{itemID: itemID(item), err: fmt.Errorf("extraction timed out after %s", s.itemTimeout)}
	}
}

// extractOne normalizes a single item. Normalization is pure and never errors,
// but a malformed item that panics the canonicalizer is downgraded to a
// per-item CanonicalizationError rather than taking down the job.
func (s *Scheduler) extractOne(item drive.RawItem) (out itemOutcome) {
	out.itemID = itemID(item)
	defer func() {
		if r := recover(); r != nil {
			out.err = &CanonicalizationError{ItemID: out.itemID, Err: fmt.Errorf("%v", r)}
		}
	}()
	out.record = s.canon.Normalize(item)
	return out
}

func itemID(item drive.RawItem) string {
	if item.ID == "" {
		return "unknown"
	}
	return item.ID
}
