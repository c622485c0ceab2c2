package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndRead_RoundTrip(t *testing.T) {
	s := NewLocalStore(t.TempDir())

	content := []byte("claim evidence bytes")
	if err := s.Save("doc.pdf", bytes.NewReader(content)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Read("doc.pdf")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("Read = %q, want %q", got, content)
	}
}

func TestSave_CreatesRootLazily(t *testing.T) {
	root := filepath.Join(t.TempDir(), "uploads", "nested")
	s := NewLocalStore(root)

	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("root should not exist before first save")
	}
	if err := s.Save("a.png", strings.NewReader("png")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(root); err != nil {
		t.Errorf("root not created on first save: %v", err)
	}
}

func TestRead_Missing_ErrNotFound(t *testing.T) {
	s := NewLocalStore(t.TempDir())

	_, err := s.Read("missing.pdf")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Read error = %v, want ErrNotFound", err)
	}
}

func TestStoredName_PreservesExtension(t *testing.T) {
	name := StoredName(".PDF")
	if !strings.HasSuffix(name, ".pdf") {
		t.Errorf("StoredName = %q, want .pdf suffix", name)
	}
	if strings.Contains(name, "/") || strings.Contains(name, "..") {
		t.Errorf("StoredName = %q contains path characters", name)
	}
}

func TestStoredName_Unique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		n := StoredName(".jpg")
		if seen[n] {
			t.Fatalf("StoredName produced duplicate %q", n)
		}
		seen[n] = true
	}
}
