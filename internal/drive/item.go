package drive

import "context"

// FolderMimeType marks a container in the remote store. Everything else is a
// leaf item.
const FolderMimeType = "application/vnd.google-apps.folder"

// ItemFields is the per-item field projection requested on every listing call.
// It covers identity, timestamps, size, checksum, owner and modifier
// identities, sharing/permission/trash/star flags, description, version, and
// parent references.
const ItemFields = "id, name, mimeType, createdTime, modifiedTime, viewedByMeTime, " +
	"size, owners, webViewLink, sharingUser, permissions, " +
	"parents, md5Checksum, version, shared, " +
	"trashed, starred, description, lastModifyingUser"

// User identifies an account referenced by an item (owner, last modifier,
// sharing user).
type User struct {
	DisplayName  string `json:"displayName"`
	EmailAddress string `json:"emailAddress"`
}

// Permission is a single grant on an item.
type Permission struct {
	Type string `json:"type"`
	Role string `json:"role"`
}

// RawItem is an item record exactly as received from the remote store.
// It is immutable once fetched; the canonicalizer turns it into a FileRecord.
type RawItem struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	MimeType       string       `json:"mimeType"`
	CreatedTime    string       `json:"createdTime"`
	ModifiedTime   string       `json:"modifiedTime"`
	ViewedByMeTime string       `json:"viewedByMeTime"`
	Size           string       `json:"size"`
	Owners         []User       `json:"owners"`
	LastModifier   *User        `json:"lastModifyingUser"`
	SharingUser    *User        `json:"sharingUser"`
	WebViewLink    string       `json:"webViewLink"`
	Shared         bool         `json:"shared"`
	Trashed        bool         `json:"trashed"`
	Starred        bool         `json:"starred"`
	Description    string       `json:"description"`
	MD5Checksum    string       `json:"md5Checksum"`
	Version        string       `json:"version"`
	Permissions    []Permission `json:"permissions"`
	Parents        []string     `json:"parents"`
}

// IsFolder reports whether the item is a container.
func (i RawItem) IsFolder() bool { return i.MimeType == FolderMimeType }

// ListQuery describes one page request against the remote listing API.
type ListQuery struct {
	// ParentID restricts the listing to immediate children of a container.
	// Empty means the whole store.
	ParentID string

	// FoldersOnly restricts the listing to containers.
	FoldersOnly bool

	IncludeTrashed bool
	PageToken      string
	PageSize       int
	OrderBy        string
}

// Page is one page of listing results.
type Page struct {
	Items         []RawItem
	NextPageToken string
}

// Lister is the remote listing capability the traverser depends on.
// Implementations must translate remote failures into *TransportError.
type Lister interface {
	ListPage(ctx context.Context, q ListQuery) (*Page, error)
}

// Getter fetches a single item by ID with a minimal projection.
// Only the optional ancestor-path resolver uses it.
type Getter interface {
	GetItem(ctx context.Context, id string) (*RawItem, error)
}
