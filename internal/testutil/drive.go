package testutil

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"

	"drivemeta/internal/drive"
)

// FakeDrive is an in-memory remote store for testing. Items are organized in
// a parent/child tree; listing supports pagination, folder filtering, and
// trash filtering the way the real listing API does. Safe for concurrent use.
type FakeDrive struct {
	mu    sync.Mutex
	items map[string]drive.RawItem

	// AuthErr, when set, is returned from Authenticate.
	AuthErr error

	// failAfter, when > 0, fails every ListPage call after that many
	// successful ones. Used to test mid-traversal transport failures.
	failAfter int
	failErr   error
	listCalls int
}

// NewFakeDrive creates an empty fake store.
func NewFakeDrive() *FakeDrive {
	return &FakeDrive{items: make(map[string]drive.RawItem)}
}

// Add inserts an item. The item's Parents field places it in the tree.
func (d *FakeDrive) Add(item drive.RawItem) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items[item.ID] = item
}

// AddFolder inserts a folder with the given parent. An empty parent makes it
// a root-level folder.
func (d *FakeDrive) AddFolder(id, name, parent string) {
	item := drive.RawItem{
		ID:       id,
		Name:     name,
		MimeType: drive.FolderMimeType,
	}
	if parent != "" {
		item.Parents = []string{parent}
	}
	d.Add(item)
}

// AddFile inserts a leaf item with the given parent.
func (d *FakeDrive) AddFile(id, name, parent string) {
	item := drive.RawItem{
		ID:       id,
		Name:     name,
		MimeType: "text/plain",
	}
	if parent != "" {
		item.Parents = []string{parent}
	}
	d.Add(item)
}

// FailListAfter makes every ListPage call after the first n succeed calls
// return err.
func (d *FakeDrive) FailListAfter(n int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failAfter = n
	d.failErr = err
}

// ListCalls reports how many ListPage calls have been made.
func (d *FakeDrive) ListCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listCalls
}

// Authenticate implements the authenticator used during job startup.
func (d *FakeDrive) Authenticate(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.AuthErr
}

// ListPage implements drive.Lister against the in-memory tree.
func (d *FakeDrive) ListPage(_ context.Context, q drive.ListQuery) (*drive.Page, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.listCalls++
	if d.failAfter > 0 && d.listCalls > d.failAfter {
		return nil, d.failErr
	}

	var matched []drive.RawItem
	for _, item := range d.items {
		if q.ParentID != "" && !hasParent(item, q.ParentID) {
			continue
		}
		if q.FoldersOnly && !item.IsFolder() {
			continue
		}
		if !q.IncludeTrashed && item.Trashed {
			continue
		}
		matched = append(matched, item)
	}

	// Deterministic order regardless of the requested sort key.
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}
	start := 0
	if q.PageToken != "" {
		n, err := strconv.Atoi(q.PageToken)
		if err != nil {
			return nil, errors.New("bad page token")
		}
		start = n
	}
	if start > len(matched) {
		start = len(matched)
	}

	end := start + pageSize
	next := ""
	if end >= len(matched) {
		end = len(matched)
	} else {
		next = strconv.Itoa(end)
	}

	return &drive.Page{Items: matched[start:end], NextPageToken: next}, nil
}

// GetItem implements drive.Getter.
func (d *FakeDrive) GetItem(_ context.Context, id string) (*drive.RawItem, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	item, ok := d.items[id]
	if !ok {
		return nil, &drive.TransportError{Op: "get", StatusCode: 404, Err: errors.New("not found")}
	}
	return &item, nil
}

func hasParent(item drive.RawItem, parent string) bool {
	for _, p := range item.Parents {
		if p == parent {
			return true
		}
	}
	return false
}
