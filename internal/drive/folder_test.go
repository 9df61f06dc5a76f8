package drive_test

import (
	"context"
	"testing"

	"drivemeta/internal/drive"
	"drivemeta/internal/testutil"
)

func TestParseFolderRef(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"bare id", "1AbC_d-EfG", "1AbC_d-EfG"},
		{"folders url", "https://drive.google.com/drive/folders/1AbC_d-EfG", "1AbC_d-EfG"},
		{"folders url with params", "https://drive.google.com/drive/folders/1AbC_d-EfG?usp=sharing", "1AbC_d-EfG"},
		{"open url", "https://drive.google.com/open?id=1AbC_d-EfG", "1AbC_d-EfG"},
		{"query id", "https://drive.google.com/somepath?x=1&id=1AbC_d-EfG", "1AbC_d-EfG"},
		{"whitespace trimmed", "  1AbC_d-EfG  ", "1AbC_d-EfG"},
		{"empty", "", ""},
		{"url without id", "https://drive.google.com/drive/my-drive", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := drive.ParseFolderRef(tt.ref); got != tt.want {
				t.Errorf("ParseFolderRef(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}

func TestListFolders(t *testing.T) {
	t.Parallel()
	fake := testutil.NewFakeDrive()
	fake.AddFolder("fa", "Alpha", "")
	fake.AddFolder("fb", "Beta", "fa")
	fake.AddFile("f1", "not-a-folder.txt", "fa")

	folders, err := drive.ListFolders(context.Background(), fake)
	if err != nil {
		t.Fatalf("ListFolders() error = %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("got %d folders, want 2", len(folders))
	}
	if folders[0].ID != "fa" || folders[1].ID != "fb" {
		t.Errorf("folders = %v", folders)
	}
}
