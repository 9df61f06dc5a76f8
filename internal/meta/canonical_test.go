package meta_test

import (
	"testing"

	"drivemeta/internal/drive"
	"drivemeta/internal/meta"
)

func TestCanonicalizer_Normalize(t *testing.T) {
	canon := meta.NewCanonicalizer(nil)

	t.Run("fully populated item", func(t *testing.T) {
		t.Parallel()
		item := drive.RawItem{
			ID:           "f1",
			Name:         "report.pdf",
			MimeType:     "application/pdf",
			CreatedTime:  "2024-06-01T10:00:00Z",
			ModifiedTime: "2024-06-02T11:30:00Z",
			Size:         "2048",
			Owners:       []drive.User{{DisplayName: "Alice", EmailAddress: "alice@example.com"}},
			LastModifier: &drive.User{DisplayName: "Bob", EmailAddress: "bob@example.com"},
			SharingUser:  &drive.User{EmailAddress: "carol@example.com"},
			WebViewLink:  "https://example.com/view/f1",
			Shared:       true,
			MD5Checksum:  "abc123",
			Version:      "7",
			Permissions: []drive.Permission{
				{Type: "user", Role: "owner"},
				{Type: "anyone", Role: "reader"},
			},
			Parents: []string{"p1"},
		}

		r := canon.Normalize(item)

		if r.ID != "f1" || r.Name != "report.pdf" {
			t.Errorf("identity fields: got %q/%q", r.ID, r.Name)
		}
		if r.FileType != "PDF" {
			t.Errorf("FileType = %q, want PDF", r.FileType)
		}
		if r.CreationTime != "2024-06-01 10:00:00 UTC" {
			t.Errorf("CreationTime = %q", r.CreationTime)
		}
		if r.CreationTimeRaw != "2024-06-01T10:00:00Z" {
			t.Errorf("CreationTimeRaw = %q", r.CreationTimeRaw)
		}
		if r.SizeBytes != "2048" || r.SizeFormatted != "2.00 KB" {
			t.Errorf("size: got %q / %q", r.SizeBytes, r.SizeFormatted)
		}
		if r.OwnerEmail != "alice@example.com" || r.OwnerName != "Alice" {
			t.Errorf("owner: got %q / %q", r.OwnerEmail, r.OwnerName)
		}
		if r.LastModifierEmail != "bob@example.com" {
			t.Errorf("LastModifierEmail = %q", r.LastModifierEmail)
		}
		if r.SharingUserEmail != "carol@example.com" {
			t.Errorf("SharingUserEmail = %q", r.SharingUserEmail)
		}
		if r.Permissions != "user:owner; anyone:reader" {
			t.Errorf("Permissions = %q", r.Permissions)
		}
		if r.PermissionCount != 2 {
			t.Errorf("PermissionCount = %d, want 2", r.PermissionCount)
		}
		if r.Path != "report.pdf" {
			t.Errorf("Path = %q, want bare name", r.Path)
		}
	})

	t.Run("sparse item degrades to sentinels", func(t *testing.T) {
		t.Parallel()
		r := canon.Normalize(drive.RawItem{ID: "f2", Name: "empty"})

		if r.OwnerEmail != "N/A" || r.OwnerName != "N/A" {
			t.Errorf("owner: got %q / %q, want N/A", r.OwnerEmail, r.OwnerName)
		}
		if r.LastModifierEmail != "N/A" {
			t.Errorf("LastModifierEmail = %q, want N/A", r.LastModifierEmail)
		}
		if r.SharingUserEmail != "N/A" {
			t.Errorf("SharingUserEmail = %q, want N/A", r.SharingUserEmail)
		}
		if r.SizeBytes != "0" {
			t.Errorf("SizeBytes = %q, want 0", r.SizeBytes)
		}
		if r.Permissions != "N/A" || r.PermissionCount != 0 {
			t.Errorf("permissions: got %q / %d", r.Permissions, r.PermissionCount)
		}
		if r.Checksum != "N/A" || r.Version != "N/A" {
			t.Errorf("checksum/version: got %q / %q", r.Checksum, r.Version)
		}
		if r.CreationTime != "N/A" {
			t.Errorf("CreationTime = %q, want N/A", r.CreationTime)
		}
		// Description intentionally passes through empty.
		if r.Description != "" {
			t.Errorf("Description = %q, want empty", r.Description)
		}
	})

	t.Run("permission with missing parts", func(t *testing.T) {
		t.Parallel()
		r := canon.Normalize(drive.RawItem{
			ID:          "f3",
			Permissions: []drive.Permission{{Type: "", Role: "writer"}},
		})
		if r.Permissions != "unknown:writer" {
			t.Errorf("Permissions = %q", r.Permissions)
		}
	})
}

func TestFileTypeLabel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		mimeType string
		want     string
	}{
		{"application/vnd.google-apps.folder", "Folder"},
		{"application/vnd.google-apps.document", "Google Docs"},
		{"application/vnd.google-apps.spreadsheet", "Google Sheets"},
		{"application/pdf", "PDF"},
		{"image/jpeg", "JPEG Image"},
		{"text/plain", "Text"},
		{"video/mp4", "MP4"},
		{"weird", "WEIRD"},
	}
	for _, tt := range tests {
		if got := meta.FileTypeLabel(tt.mimeType); got != tt.want {
			t.Errorf("FileTypeLabel(%q) = %q, want %q", tt.mimeType, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		wire string
		want string
	}{
		{"rfc3339", "2024-06-01T10:00:00Z", "2024-06-01 10:00:00 UTC"},
		{"offset normalized to UTC", "2024-06-01T12:00:00+02:00", "2024-06-01 10:00:00 UTC"},
		{"fractional seconds", "2024-06-01T10:00:00.123Z", "2024-06-01 10:00:00 UTC"},
		{"empty", "", "N/A"},
		{"unparsable returned verbatim", "yesterday", "yesterday"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := meta.FormatTime(tt.wire); got != tt.want {
				t.Errorf("FormatTime(%q) = %q, want %q", tt.wire, got, tt.want)
			}
		})
	}
}

func TestFormatSize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		size string
		want string
	}{
		{"0", "0.00 B"},
		{"1023", "1023.00 B"},
		{"1024", "1.00 KB"},
		{"1536", "1.50 KB"},
		{"1048576", "1.00 MB"},
		{"1099511627776", "1.00 TB"},
		{"", "N/A"},
		{"not-a-number", "not-a-number"},
	}
	for _, tt := range tests {
		if got := meta.FormatSize(tt.size); got != tt.want {
			t.Errorf("FormatSize(%q) = %q, want %q", tt.size, got, tt.want)
		}
	}
}
