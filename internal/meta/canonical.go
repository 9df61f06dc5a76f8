package meta

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"drivemeta/internal/drive"
)

// notAvailable is the sentinel for fields the remote store did not populate.
const notAvailable = "N/A"

// fileTypeLabels maps well-known MIME types to human labels. Unmapped types
// fall back to the uppercased subtype token after the slash.
var fileTypeLabels = map[string]string{
	drive.FolderMimeType:                         "Folder",
	"application/vnd.google-apps.document":       "Google Docs",
	"application/vnd.google-apps.spreadsheet":    "Google Sheets",
	"application/vnd.google-apps.presentation":   "Google Slides",
	"application/pdf":                            "PDF",
	"image/jpeg":                                 "JPEG Image",
	"image/png":                                  "PNG Image",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": "Word",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       "Excel",
	"text/plain": "Text",
}

// Canonicalizer turns raw remote items into normalized FileRecords.
// Normalization is pure and never fails: missing fields degrade to sentinel
// values instead of errors.
type Canonicalizer struct {
	paths PathResolver
}

// NewCanonicalizer creates a Canonicalizer. A nil resolver means paths are the
// bare item name.
func NewCanonicalizer(paths PathResolver) *Canonicalizer {
	if paths == nil {
		paths = BareNameResolver{}
	}
	return &Canonicalizer{paths: paths}
}

// Normalize builds the FileRecord for a single raw item.
func (c *Canonicalizer) Normalize(item drive.RawItem) FileRecord {
	ownerEmail, ownerName := notAvailable, notAvailable
	if len(item.Owners) > 0 {
		ownerEmail = orNA(item.Owners[0].EmailAddress)
		ownerName = orNA(item.Owners[0].DisplayName)
	}

	modifierEmail, modifierName := notAvailable, notAvailable
	if item.LastModifier != nil {
		modifierEmail = orNA(item.LastModifier.EmailAddress)
		modifierName = orNA(item.LastModifier.DisplayName)
	}

	sharingEmail := notAvailable
	if item.SharingUser != nil {
		sharingEmail = orNA(item.SharingUser.EmailAddress)
	}

	perms := make([]string, 0, len(item.Permissions))
	for _, p := range item.Permissions {
		t, r := p.Type, p.Role
		if t == "" {
			t = "unknown"
		}
		if r == "" {
			r = "unknown"
		}
		perms = append(perms, t+":"+r)
	}
	permissions := notAvailable
	if len(perms) > 0 {
		permissions = strings.Join(perms, "; ")
	}

	sizeBytes := item.Size
	if sizeBytes == "" {
		sizeBytes = "0"
	}

	return FileRecord{
		ID:                  orNA(item.ID),
		Name:                orNA(item.Name),
		MimeType:            orNA(item.MimeType),
		FileType:            FileTypeLabel(item.MimeType),
		CreationTime:        FormatTime(item.CreatedTime),
		CreationTimeRaw:     orNA(item.CreatedTime),
		ModificationTime:    FormatTime(item.ModifiedTime),
		ModificationTimeRaw: orNA(item.ModifiedTime),
		LastViewedTime:      FormatTime(item.ViewedByMeTime),
		SizeBytes:           sizeBytes,
		SizeFormatted:       FormatSize(item.Size),
		OwnerEmail:          ownerEmail,
		OwnerName:           ownerName,
		LastModifierEmail:   modifierEmail,
		LastModifierName:    modifierName,
		SharingUserEmail:    sharingEmail,
		Path:                c.paths.Resolve(item.ID, item.Name),
		ShareLink:           orNA(item.WebViewLink),
		Shared:              item.Shared,
		Trashed:             item.Trashed,
		Starred:             item.Starred,
		Description:         item.Description,
		Checksum:            orNA(item.MD5Checksum),
		Version:             orNA(item.Version),
		Permissions:         permissions,
		PermissionCount:     len(item.Permissions),
		ParentIDs:           item.Parents,
	}
}

// FileTypeLabel classifies a MIME type into a human label.
func FileTypeLabel(mimeType string) string {
	if label, ok := fileTypeLabels[mimeType]; ok {
		return label
	}
	if idx := strings.LastIndex(mimeType, "/"); idx >= 0 {
		return strings.ToUpper(mimeType[idx+1:])
	}
	return strings.ToUpper(mimeType)
}

// FormatTime reformats a wire timestamp (RFC 3339) into the fixed display
// format. Empty input yields the sentinel; unparsable input is returned
// verbatim so no information is lost.
func FormatTime(wire string) string {
	if wire == "" {
		return notAvailable
	}
	t, err := time.Parse(time.RFC3339, wire)
	if err != nil {
		return wire
	}
	return t.UTC().Format("2006-01-02 15:04:05") + " UTC"
}

// FormatSize renders a byte count as base-1024 scaled units with two decimal
// places. Empty input yields the sentinel; non-numeric input is returned
// verbatim.
func FormatSize(sizeBytes string) string {
	if sizeBytes == "" {
		return notAvailable
	}
	n, err := strconv.ParseInt(sizeBytes, 10, 64)
	if err != nil {
		return sizeBytes
	}
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB", "TB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.2f PB", size)
}

func orNA(s string) string {
	if s == "" {
		return notAvailable
	}
	return s
}
