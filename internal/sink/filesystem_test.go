package sink_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"drivemeta/internal/sink"
)

func TestFileSystemSink(t *testing.T) {
	t.Run("put writes the artifact", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		s, err := sink.NewFileSystemSink(dir)
		if err != nil {
			t.Fatalf("NewFileSystemSink() error = %v", err)
		}
		if err := s.ValidateSetup(); err != nil {
			t.Fatalf("ValidateSetup() error = %v", err)
		}

		content := []byte("id,name\nf1,a.txt\n")
		if err := s.Put("export.csv", bytes.NewReader(content), int64(len(content))); err != nil {
			t.Fatalf("Put() error = %v", err)
		}

		got, err := os.ReadFile(filepath.Join(dir, "export.csv"))
		if err != nil {
			t.Fatalf("reading artifact: %v", err)
		}
		if !bytes.Equal(got, content) {
			t.Errorf("artifact content = %q, want %q", got, content)
		}
	})

	t.Run("size mismatch rejected and no partial file left", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		s, err := sink.NewFileSystemSink(dir)
		if err != nil {
			t.Fatalf("NewFileSystemSink() error = %v", err)
		}

		err = s.Put("broken.csv", strings.NewReader("short"), 100)
		if err == nil {
			t.Fatal("Put() with wrong size succeeded, want error")
		}
		if _, statErr := os.Stat(filepath.Join(dir, "broken.csv")); !os.IsNotExist(statErr) {
			t.Error("partial artifact left behind after failed Put")
		}
	})

	t.Run("creates nested root", func(t *testing.T) {
		t.Parallel()
		root := filepath.Join(t.TempDir(), "a", "b")
		if _, err := sink.NewFileSystemSink(root); err != nil {
			t.Fatalf("NewFileSystemSink() error = %v", err)
		}
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			t.Errorf("sink root not created: %v", err)
		}
	})
}

func TestMemorySink(t *testing.T) {
	t.Parallel()
	s := sink.NewMemorySink()

	content := []byte("payload")
	if err := s.Put("x", bytes.NewReader(content), int64(len(content))); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if got := s.Get("x"); !bytes.Equal(got, content) {
		t.Errorf("Get() = %q, want %q", got, content)
	}
	if got := s.Get("missing"); got != nil {
		t.Errorf("Get(missing) = %q, want nil", got)
	}
	if names := s.Names(); len(names) != 1 || names[0] != "x" {
		t.Errorf("Names() = %v", names)
	}
}
