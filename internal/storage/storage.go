package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrNotFound: the requested stored file does not exist.
var ErrNotFound = errors.New("stored file not found")

// StorageError wraps an I/O failure while writing or reading stored bytes.
type StorageError struct {
	Op   string
	Name string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Name, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Store is the byte-storage contract used by the claim workflow. Content is
// opaque; the store never interprets it.
type Store interface {
	Save(name string, content io.Reader) error
	Read(name string) ([]byte, error)
}

// LocalStore keeps files under a managed root directory, created lazily on the
// first write.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

func (s *LocalStore) Save(name string, content io.Reader) error {
	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return &StorageError{Op: "mkdir", Name: s.root, Err: err}
	}

	dst, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return &StorageError{Op: "create", Name: name, Err: err}
	}
	defer dst.Close()

	if _, err := io.Copy(dst, content); err != nil {
		return &StorageError{Op: "write", Name: name, Err: err}
	}
	return nil
}

func (s *LocalStore) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, &StorageError{Op: "read", Name: name, Err: err}
	}
	return data, nil
}

// StoredName generates a collision-resistant storage name preserving the
// extension. Names are never derived from user-controlled filenames, which
// rules out path traversal and collisions.
func StoredName(ext string) string {
	return uuid.New().String() + strings.ToLower(ext)
}
