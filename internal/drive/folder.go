package drive

import (
	"context"
	"regexp"
	"strings"
)

// Shared-link shapes a folder reference may arrive in.
var (
	folderPathPattern = regexp.MustCompile(`/drive/folders/([a-zA-Z0-9_-]+)`)
	openIDPattern     = regexp.MustCompile(`/open\?id=([a-zA-Z0-9_-]+)`)
	queryIDPattern    = regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`)
)

// ParseFolderRef extracts a folder ID from a bare identifier or a shared-link
// URL. It returns the empty string when no ID can be found.
func ParseFolderRef(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	// A bare ID has no URL structure at all.
	if !strings.HasPrefix(ref, "http") && !strings.ContainsAny(ref, "/?") {
		return ref
	}

	for _, pattern := range []*regexp.Regexp{folderPathPattern, openIDPattern, queryIDPattern} {
		if m := pattern.FindStringSubmatch(ref); m != nil {
			return m[1]
		}
	}
	return ""
}

// Folder is a container summary returned by ListFolders.
type Folder struct {
	ID          string
	Name        string
	CreatedTime string
}

// ListFolders returns every non-trashed container in the store, ordered by
// name. Useful for locating the ID of a folder to crawl.
func ListFolders(ctx context.Context, lister Lister) ([]Folder, error) {
	var folders []Folder
	pageToken := ""

	for {
		page, err := lister.ListPage(ctx, ListQuery{
			FoldersOnly: true,
			PageToken:   pageToken,
			PageSize:    100,
			OrderBy:     "name",
		})
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			folders = append(folders, Folder{ID: item.ID, Name: item.Name, CreatedTime: item.CreatedTime})
		}
		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return folders, nil
}
