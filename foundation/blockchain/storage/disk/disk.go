// Package disk implements the storage interface with one file per key.
package disk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/powledger/foundation/blockchain/storage"
)

// Disk represents the implementation for reading and storing values in
// their own separate files on disk. This implements the storage.Storage
// interface.
type Disk struct {
	dir string
}

// New constructs a Disk value for use, creating the directory if needed.
func New(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Disk{dir: dir}, nil
}

// Load reads the file for the key.
func (d *Disk) Load(key string) ([]byte, error) {
	path, err := d.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}

	return data, nil
}

// Save writes the key to a temporary file and renames it into place so a
// reader never sees a partially written file.
func (d *Disk) Save(key string, data []byte) error {
	path, err := d.path(key)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(d.dir, "."+key+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	return nil
}

// path returns the file location for the key.
func (d *Disk) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}

	return filepath.Join(d.dir, key), nil
}
