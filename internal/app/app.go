package app

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	"drivemeta/internal/config"
	"drivemeta/internal/drive"
	"drivemeta/internal/encryption"
	"drivemeta/internal/export"
	"drivemeta/internal/meta"
	"drivemeta/internal/sink"
	"drivemeta/internal/store"
)

// pollInterval is how often waiting callers sample job progress.
const pollInterval = 250 * time.Millisecond

// App is the application layer between the control surfaces (CLI, HTTP API)
// and the extraction core. It constructs all dependencies from config and
// manages their lifecycle on Close.
type App struct {
	cfg        *config.Config
	client     *drive.HTTPClient
	store      store.Store
	controller *meta.Controller
	logger     meta.Logger
	clock      meta.Clock
	logFile    *os.File
}

// NewApp creates a fully wired App from the given config.
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	runTag := time.Now().UTC().Format("20060102T150405Z")
	slogger, logFile, err := newLogger(cfg.LogDir, runTag)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: slogger}

	client := drive.NewHTTPClient(cfg.Drive.Endpoint, drive.FileTokenSource{Path: cfg.Drive.TokenPath})

	st, err := store.NewStoreFromConfig(cfg.Store)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating run store: %w", err)
	}

	artifactSink, err := sink.NewSinkFromConfig(ctx, cfg.Sink)
	if err != nil {
		st.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating artifact sink: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		st.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	clock := meta.RealClock{}
	exporters, err := export.NewExportersFromConfig(cfg.Extract.Formats, artifactSink, enc, clock)
	if err != nil {
		st.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating exporters: %w", err)
	}

	a := &App{
		cfg:     cfg,
		client:  client,
		store:   st,
		logger:  logger,
		clock:   clock,
		logFile: logFile,
	}

	itemTimeout := time.Duration(cfg.Extract.ItemTimeoutSeconds) * time.Second
	a.controller = meta.NewController(
		client, client,
		meta.NewCanonicalizer(nil),
		exporters,
		a.recordRun,
		cfg.Drive.PageSize,
		itemTimeout,
		logger, clock, meta.UUIDGenerator{},
	)

	return a, nil
}

// Controller exposes the job control surface to the HTTP API layer.
func (a *App) Controller() *meta.Controller { return a.controller }

// recordRun persists the terminal snapshot of a job. Recording failures are
// logged, never fatal: run history is an audit aid, not a gate.
func (a *App) recordRun(snap meta.Snapshot) {
	run := &store.Run{
		ID:             snap.JobID,
		RootID:         snap.RootID,
		IncludeTrashed: snap.IncludeTrashed,
		Status:         string(snap.Status),
		ItemCount:      snap.Total,
		FailureCount:   snap.Failures,
		Fingerprint:    snap.Fingerprint,
		Message:        snap.Message,
		StartedAt:      snap.StartTime,
		FinishedAt:     sql.NullTime{Time: a.clock.Now(), Valid: true},
	}
	if err := a.store.RecordRun(run); err != nil {
		a.logger.Error("recording run failed", "job_id", snap.JobID, "error", err)
	}
}

// StartExtraction resolves the folder reference and starts a background job.
func (a *App) StartExtraction(ctx context.Context, folderRef string, includeTrashed bool, workers int) (string, error) {
	rootID := ""
	if folderRef != "" {
		rootID = drive.ParseFolderRef(folderRef)
		if rootID == "" {
			return "", fmt.Errorf("unrecognized folder reference: %q", folderRef)
		}
	}
	if workers == 0 {
		workers = a.cfg.Extract.Workers
	}

	return a.controller.Start(ctx, meta.StartOptions{
		RootID:         rootID,
		IncludeTrashed: includeTrashed,
		Workers:        workers,
	})
}

// RunExtraction starts a job and blocks until it reaches a terminal state,
// invoking onProgress (if non-nil) with every sampled snapshot.
func (a *App) RunExtraction(ctx context.Context, folderRef string, includeTrashed bool, workers int, onProgress func(meta.Snapshot)) (meta.Snapshot, error) {
	if _, err := a.StartExtraction(ctx, folderRef, includeTrashed, workers); err != nil {
		return meta.Snapshot{}, err
	}

	for {
		snap := a.controller.Progress()
		if onProgress != nil {
			onProgress(snap)
		}
		switch snap.Status {
		case meta.StatusCompleted, meta.StatusStopped, meta.StatusError:
			return snap, nil
		}

		select {
		case <-ctx.Done():
			// Best effort: ask the job to stop, then report what we have.
			a.controller.Stop()
			return a.controller.Progress(), ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Results returns the record set and fingerprint of the last completed job.
func (a *App) Results() ([]meta.FileRecord, string, error) {
	return a.controller.Results()
}

// ListFolders lists every folder in the store, for locating crawl roots.
func (a *App) ListFolders(ctx context.Context) ([]drive.Folder, error) {
	return drive.ListFolders(ctx, a.client)
}

// History returns the most recent recorded runs.
func (a *App) History(limit int) ([]*store.Run, error) {
	return a.store.ListRuns(limit)
}

// Close releases all resources.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
