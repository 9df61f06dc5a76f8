package meta

import (
	"context"
	"strings"
	"sync"

	"drivemeta/internal/drive"
)

// PathResolver maps an item to its display path. The default resolver returns
// the bare name: full ancestor resolution costs one remote call per ancestor,
// so it is opt-in.
type PathResolver interface {
	Resolve(itemID, name string) string
}

// BareNameResolver returns the item name unchanged. This is the default.
type BareNameResolver struct{}

func (BareNameResolver) Resolve(_, name string) string { return name }

// AncestorPathResolver walks parent references to build a full path, caching
// every intermediate result. The walk is depth-bounded and cycle-safe; any
// remote failure falls back to the bare name so resolution never breaks
// normalization.
type AncestorPathResolver struct {
	getter   drive.Getter
	maxDepth int

	mu    sync.Mutex
	cache map[string]string
}

// NewAncestorPathResolver creates a resolver over the given item getter.
// maxDepth bounds the ancestor walk; values below 1 default to 10.
func NewAncestorPathResolver(getter drive.Getter, maxDepth int) *AncestorPathResolver {
	if maxDepth < 1 {
		maxDepth = 10
	}
	return &AncestorPathResolver{
		getter:   getter,
		maxDepth: maxDepth,
		cache:    make(map[string]string),
	}
}

func (r *AncestorPathResolver) Resolve(itemID, name string) string {
	if itemID == "" {
		return name
	}

	r.mu.Lock()
	if cached, ok := r.cache[itemID]; ok {
		r.mu.Unlock()
		return cached
	}
	r.mu.Unlock()

	parts := []string{}
	visited := map[string]bool{}
	currentID := itemID
	currentName := name

	for depth := 0; depth < r.maxDepth && currentID != "" && !visited[currentID]; depth++ {
		visited[currentID] = true

		r.mu.Lock()
		cached, ok := r.cache[currentID]
		r.mu.Unlock()
		if ok {
			parts = append([]string{cached}, parts...)
			break
		}

		item, err := r.getter.GetItem(context.Background(), currentID)
		if err != nil {
			break
		}
		if item.Name != "" {
			currentName = item.Name
		}
		parts = append([]string{currentName}, parts...)

		if len(item.Parents) == 0 {
			break
		}
		currentID = item.Parents[0]
		currentName = ""
	}

	result := name
	if len(parts) > 0 {
		result = strings.Join(parts, "/")
	}

	r.mu.Lock()
	r.cache[itemID] = result
	r.mu.Unlock()
	return result
}
