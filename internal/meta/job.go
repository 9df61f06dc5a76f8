package meta

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"drivemeta/internal/drive"
)

// Status is the controller's job state.
type Status string

const (
	StatusIdle           Status = "idle"
	StatusAuthenticating Status = "authenticating"
	StatusCollecting     Status = "collecting"
	StatusProcessing     Status = "processing"
	StatusPaused         Status = "paused"
	StatusStopped        Status = "stopped"
	StatusCompleted      Status = "completed"
	StatusError          Status = "error"
)

// ErrStopped is returned from checkpoints once a stop has been requested.
var ErrStopped = errors.New("stop requested")

// Authenticator prepares the remote session before traversal. Authentication
// proper (tokens, consent) lives outside the core; the controller only needs
// to know whether the session is usable.
type Authenticator interface {
	Authenticate(ctx context.Context) error
}

// Exporter renders a completed record set. Exporters own serialization only
// and must not alter hash-relevant field values.
type Exporter interface {
	Export(records []FileRecord, fingerprint string) (artifact string, err error)
}

// FinishFunc is called once per job with the terminal snapshot. Used by the
// app layer to record run history; failures there are logged, not fatal.
type FinishFunc func(snap Snapshot)

// Snapshot is an internally consistent view of the job state. Readers never
// observe a torn update of progress/total/message.
type Snapshot struct {
	JobID          string
	Status         Status
	Progress       int
	Total          int
	Failures       int
	Phase          string
	Message        string
	ErrDetail      string
	Fingerprint    string
	RootID         string
	IncludeTrashed bool
	StartTime      time.Time
	Elapsed        time.Duration
}

// StartOptions configures one extraction job.
type StartOptions struct {
	RootID         string
	IncludeTrashed bool
	Workers        int
}

// Controller wraps the traverser and scheduler in a resumable state machine.
// All state lives behind one mutex; pause parks the worker on a condition
// variable so it burns no CPU while blocked.
type Controller struct {
	lister      drive.Lister
	auth        Authenticator
	canon       *Canonicalizer
	exporters   []Exporter
	finish      FinishFunc
	pageSize    int
	itemTimeout time.Duration
	logger      Logger
	clock       Clock
	idgen       IDGenerator

	mu   sync.Mutex
	cond *sync.Cond

	status         Status
	jobID          string
	rootID         string
	includeTrashed bool
	progressCount  int
	totalCount     int
	phase          string
	message        string
	errDetail      string
	startTime      time.Time
	fingerprint    string
	records        []FileRecord
	failures       []string
	pauseRequest   bool
	stopRequest    bool
}

// NewController creates a Controller in the idle state.
// finish may be nil; exporters may be empty.
func NewController(lister drive.Lister, auth Authenticator, canon *Canonicalizer, exporters []Exporter, finish FinishFunc, pageSize int, itemTimeout time.Duration, logger Logger, clock Clock, idgen IDGenerator) *Controller {
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	if idgen == nil {
		idgen = UUIDGenerator{}
	}
	c := &Controller{
		lister:      lister,
		auth:        auth,
		canon:       canon,
		exporters:   exporters,
		finish:      finish,
		pageSize:    pageSize,
		itemTimeout: itemTimeout,
		logger:      logger,
		clock:       clock,
		idgen:       idgen,
		status:      StatusIdle,
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Start begins a new extraction job in the background. Only one job runs at a
// time: starting while a job is active is an InvalidStateError. Starting from
// a terminal state resets all previous job state.
func (c *Controller) Start(ctx context.Context, opts StartOptions) (string, error) {
	c.mu.Lock()
	switch c.status {
	case StatusIdle, StatusCompleted, StatusStopped, StatusError:
		// ok
	default:
		st := c.status
		c.mu.Unlock()
		return "", &InvalidStateError{Request: "start", State: st}
	}

	jobID := c.idgen.New()
	c.jobID = jobID
	c.rootID = opts.RootID
	c.includeTrashed = opts.IncludeTrashed
	c.status = StatusAuthenticating
	c.progressCount = 0
	c.totalCount = 0
	c.phase = "authenticating"
	c.message = "Authenticating..."
	c.errDetail = ""
	c.fingerprint = ""
	c.records = nil
	c.failures = nil
	c.pauseRequest = false
	c.stopRequest = false
	c.startTime = c.clock.Now()
	c.mu.Unlock()

	c.logger.Info("job started", "job_id", jobID, "root_id", opts.RootID,
		"include_trashed", opts.IncludeTrashed, "workers", opts.Workers)

	go c.run(ctx, opts)
	return jobID, nil
}

// Pause requests a pause. Legal only while processing; the scheduler observes
// it at its next per-item checkpoint.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusProcessing {
		return &InvalidStateError{Request: "pause", State: c.status}
	}
	c.pauseRequest = true
	return nil
}

// Resume releases a paused job. Legal only while paused.
func (c *Controller) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusPaused {
		return &InvalidStateError{Request: "resume", State: c.status}
	}
	c.pauseRequest = false
	c.cond.Broadcast()
	return nil
}

// Stop requests a stop. Legal from any non-terminal, non-idle state. The stop
// is cooperative: it is observed at the next checkpoint, the in-flight batch
// drains, and all results are discarded.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch c.status {
	case StatusAuthenticating, StatusCollecting, StatusProcessing, StatusPaused:
		c.stopRequest = true
		c.cond.Broadcast()
		return nil
	default:
		return &InvalidStateError{Request: "stop", State: c.status}
	}
}

// Progress returns the current job snapshot. It always succeeds.
func (c *Controller) Progress() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Results returns the record set and fingerprint of a completed job.
// Readable only in the completed state.
func (c *Controller) Results() ([]FileRecord, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status != StatusCompleted {
		return nil, "", &InvalidStateError{Request: "read results", State: c.status}
	}
	records := make([]FileRecord, len(c.records))
	copy(records, c.records)
	return records, c.fingerprint, nil
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{
		JobID:          c.jobID,
		Status:         c.status,
		Progress:       c.progressCount,
		Total:          c.totalCount,
		Failures:       len(c.failures),
		Phase:          c.phase,
		Message:        c.message,
		ErrDetail:      c.errDetail,
		Fingerprint:    c.fingerprint,
		RootID:         c.rootID,
		IncludeTrashed: c.includeTrashed,
		StartTime:      c.startTime,
	}
	if !c.startTime.IsZero() {
		snap.Elapsed = c.clock.Now().Sub(c.startTime)
	}
	return snap
}

// run drives the sequential job phases: authenticate, collect, process,
// export. It is the only writer of terminal states.
func (c *Controller) run(ctx context.Context, opts StartOptions) {
	if c.auth != nil {
		if err := c.auth.Authenticate(ctx); err != nil {
			c.fail(fmt.Errorf("authentication failed: %w", err))
			return
		}
	}
	if c.stopped() {
		c.terminate(StatusStopped, "Extraction stopped")
		return
	}

	c.transition(StatusCollecting, "collecting", "Collecting file list from the drive...")

	traverser := NewTraverser(c.lister, c.pageSize, c.logger)
	items, err := traverser.Collect(ctx, opts.RootID, opts.IncludeTrashed, c.report, c.checkpoint)
	if err != nil {
		if errors.Is(err, ErrStopped) {
			c.terminate(StatusStopped, "Extraction stopped")
			return
		}
		c.fail(fmt.Errorf("collecting files: %w", err))
		return
	}
	if c.stopped() {
		c.terminate(StatusStopped, "Extraction stopped")
		return
	}

	c.mu.Lock()
	c.totalCount = len(items)
	c.mu.Unlock()

	// Zero items is a distinct, successful outcome: the job completes with an
	// empty export instead of an error.
	if len(items) == 0 {
		c.complete(nil, nil, "No files found to extract")
		return
	}

	c.transition(StatusProcessing, "processing", fmt.Sprintf("Processing %d files...", len(items)))

	scheduler := NewScheduler(c.canon, opts.Workers, c.itemTimeout, c.logger)
	records, failed, err := scheduler.Process(ctx, items, c.report, c.checkpoint)
	if err != nil {
		if errors.Is(err, ErrStopped) {
			c.terminate(StatusStopped, "Extraction stopped")
			return
		}
		c.fail(fmt.Errorf("processing items: %w", err))
		return
	}
	// A stop accepted after the scheduler's last checkpoint still wins.
	if c.stopped() {
		c.terminate(StatusStopped, "Extraction stopped")
		return
	}
	if len(records) == 0 {
		c.fail(fmt.Errorf("all %d items failed extraction", len(items)))
		return
	}

	c.complete(records, failed, fmt.Sprintf("Successfully extracted %d of %d files", len(records), len(items)))
}

// complete fingerprints the record set, runs all exporters, and transitions to
// completed. Any export failure is fatal: no partial export is published. A
// stop request is re-checked before every exporter and before the terminal
// transition, so a stop accepted during the export window still ends stopped.
func (c *Controller) complete(records []FileRecord, failed []string, message string) {
	fingerprint, err := Fingerprint(records)
	if err != nil {
		c.fail(fmt.Errorf("computing fingerprint: %w", err))
		return
	}

	for _, exporter := range c.exporters {
		if c.stopped() {
			c.terminate(StatusStopped, "Extraction stopped")
			return
		}
		artifact, err := exporter.Export(records, fingerprint)
		if err != nil {
			c.fail(fmt.Errorf("exporting results: %w", err))
			return
		}
		c.logger.Info("export written", "artifact", artifact)
	}

	c.mu.Lock()
	if c.stopRequest {
		c.mu.Unlock()
		c.terminate(StatusStopped, "Extraction stopped")
		return
	}
	c.records = records
	c.failures = failed
	c.fingerprint = fingerprint
	c.status = StatusCompleted
	c.phase = "completed"
	c.message = message
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("job completed", "job_id", snap.JobID, "records", len(records),
		"failures", len(failed), "fingerprint", fingerprint)
	c.callFinish(snap)
}

// fail transitions to the error state, retaining the failure detail.
func (c *Controller) fail(err error) {
	c.mu.Lock()
	c.status = StatusError
	c.phase = "error"
	c.message = "Extraction failed"
	c.errDetail = err.Error()
	c.records = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Error("job failed", "job_id", snap.JobID, "error", err)
	c.callFinish(snap)
}

// terminate moves to a terminal state with all in-flight results discarded.
func (c *Controller) terminate(status Status, message string) {
	c.mu.Lock()
	c.status = status
	c.phase = string(status)
	c.message = message
	c.records = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.logger.Info("job terminated", "job_id", snap.JobID, "status", status)
	c.callFinish(snap)
}

func (c *Controller) callFinish(snap Snapshot) {
	if c.finish != nil {
		c.finish(snap)
	}
}

func (c *Controller) transition(status Status, phase, message string) {
	c.mu.Lock()
	c.status = status
	c.phase = phase
	c.message = message
	c.mu.Unlock()
}

func (c *Controller) stopped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopRequest
}

// report is the advisory progress callback handed to the traverser and
// scheduler. It never blocks and never invokes callbacks from inside the lock.
func (c *Controller) report(phase string, done, total int, message string) {
	c.mu.Lock()
	c.phase = phase
	c.progressCount = done
	if total > 0 {
		c.totalCount = total
	}
	c.message = message
	c.mu.Unlock()
}

// checkpoint is the sole place pause and stop are honored. A paused job parks
// here on the condition variable until resume or stop.
func (c *Controller) checkpoint() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.pauseRequest && !c.stopRequest {
		if c.status != StatusPaused {
			c.status = StatusPaused
			c.message = "Extraction paused"
			c.logger.Info("job paused", "job_id", c.jobID)
		}
		c.cond.Wait()
	}

	if c.stopRequest {
		return ErrStopped
	}

	if c.status == StatusPaused {
		c.status = StatusProcessing
		c.message = "Extraction resumed"
		c.logger.Info("job resumed", "job_id", c.jobID)
	}
	return nil
}
