package meta

import (
	"context"
	"fmt"

	"drivemeta/internal/drive"
)

// defaultPageSize caps remote listing pages.
const defaultPageSize = 1000

// ProgressFunc receives advisory progress updates. total is 0 while it is
// unknown (during collection).
type ProgressFunc func(phase string, done, total int, message string)

// CheckpointFunc is invoked at every legal suspension point (traversal page
// boundaries, scheduler per-item completions). It blocks while the job is
// paused and returns ErrStopped once a stop has been requested.
type CheckpointFunc func() error

// Traverser enumerates all leaf items reachable from a starting container,
// or the whole store when no root is given.
type Traverser struct {
	lister   drive.Lister
	pageSize int
	logger   Logger
}

// NewTraverser creates a Traverser over the given lister. pageSize values
// outside (0, defaultPageSize] are clamped to the default.
func NewTraverser(lister drive.Lister, pageSize int, logger Logger) *Traverser {
	if pageSize <= 0 || pageSize > defaultPageSize {
		pageSize = defaultPageSize
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Traverser{lister: lister, pageSize: pageSize, logger: logger}
}

// Collect returns every leaf item under rootID, or every leaf item in the
// store when rootID is empty. A remote listing error aborts the whole
// traversal. progress is advisory; checkpoint is honored at page boundaries.
// Either callback may be nil.
func (t *Traverser) Collect(ctx context.Context, rootID string, includeTrashed bool, progress ProgressFunc, checkpoint CheckpointFunc) ([]drive.RawItem, error) {
	if progress == nil {
		progress = func(string, int, int, string) {}
	}
	if checkpoint == nil {
		checkpoint = func() error { return nil }
	}

	progress("collecting", 0, 0, "Collecting file list from the drive...")

	if rootID == "" {
		return t.collectFlat(ctx, includeTrashed, progress, checkpoint)
	}

	visited := make(map[string]bool)
	var leaves []drive.RawItem
	if err := t.collectFolder(ctx, rootID, includeTrashed, visited, &leaves, progress, checkpoint); err != nil {
		return nil, err
	}
	return leaves, nil
}

// collectFlat performs a single paginated listing of the entire store,
// ordered by creation time for determinism across pages.
func (t *Traverser) collectFlat(ctx context.Context, includeTrashed bool, progress ProgressFunc, checkpoint CheckpointFunc) ([]drive.RawItem, error) {
	var all []drive.RawItem
	pageToken := ""

	for {
		page, err := t.lister.ListPage(ctx, drive.ListQuery{
			IncludeTrashed: includeTrashed,
			PageToken:      pageToken,
			PageSize:       t.pageSize,
			OrderBy:        "createdTime",
		})
		if err != nil {
			return nil, fmt.Errorf("listing store: %w", err)
		}
		// An empty page ends the listing even when a next token is present.
		if len(page.Items) == 0 {
			break
		}

		for _, item := range page.Items {
			if !item.IsFolder() {
				all = append(all, item)
			}
		}

		progress("collecting", len(all), 0, fmt.Sprintf("Found %d files so far...", len(all)))
		if err := checkpoint(); err != nil {
			return nil, err
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return all, nil
}

// collectFolder recursively visits a container and all descendant containers.
// The visited set makes cross-linked containment graphs terminate: an already
// visited container is skipped without error, so total work is bounded by the
// number of distinct containers.
func (t *Traverser) collectFolder(ctx context.Context, folderID string, includeTrashed bool, visited map[string]bool, leaves *[]drive.RawItem, progress ProgressFunc, checkpoint CheckpointFunc) error {
	if visited[folderID] {
		return nil
	}
	visited[folderID] = true

	pageToken := ""
	for {
		page, err := t.lister.ListPage(ctx, drive.ListQuery{
			ParentID:       folderID,
			IncludeTrashed: includeTrashed,
			PageToken:      pageToken,
			PageSize:       t.pageSize,
			OrderBy:        "createdTime",
		})
		if err != nil {
			return fmt.Errorf("listing folder %s: %w", folderID, err)
		}
		// An empty page ends the listing even when a next token is present.
		if len(page.Items) == 0 {
			break
		}

		var subfolders []drive.RawItem
		for _, item := range page.Items {
			if item.IsFolder() {
				subfolders = append(subfolders, item)
			} else {
				*leaves = append(*leaves, item)
			}
		}

		progress("collecting", len(*leaves), 0,
			fmt.Sprintf("Found %d files, scanning %d subfolders...", len(*leaves), len(subfolders)))
		if err := checkpoint(); err != nil {
			return err
		}

		// Depth-first over the containers discovered in this page.
		for _, folder := range subfolders {
			if folder.ID == "" || visited[folder.ID] {
				continue
			}
			if err := t.collectFolder(ctx, folder.ID, includeTrashed, visited, leaves, progress, checkpoint); err != nil {
				return err
			}
		}

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	t.logger.Debug("folder scanned", "folder_id", folderID, "leaves", len(*leaves))
	return nil
}
