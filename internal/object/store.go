// Package object implements storage of named blobs of data.
package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/exp/slices"
)

// ErrNotExist is an error value which may be tested aginst to determine
// whether a method invocation from a Store instance failed due to being
// called on an object which did not exist.
var ErrNotExist = fs.ErrNotExist

// Store is an interface abstracting an object storage layer.
//
// Store instances must be safe to use concurrently from multiple goroutines.
// Callers that need read-modify-write semantics on an object must provide
// their own synchronization.
type Store interface {
	// Writes an object with the given name, replacing its previous content
	// if it already existed.
	//
	// Writes are atomic, readers observe either the previous or the new
	// content of the object, never a partial write.
	PutObject(ctx context.Context, name string, data io.Reader) error

	// Reads an existing object from the store, returning a reader exposing its
	// content.
	ReadObject(ctx context.Context, name string) (io.ReadCloser, error)

	// Lists the objects which are direct children of prefix, sorted by name.
	//
	// Objects that are being written by a call to PutObject are not visible
	// until the write completed.
	ListObjects(ctx context.Context, prefix string) ([]Info, error)

	// Deletes an object from the store.
	//
	// The deletion is idempotent, deleting an object which does not exist does
	// not cause the method to return an error.
	DeleteObject(ctx context.Context, name string) error
}

// The Info type represents the set of meta data associated with an object
// within a store.
type Info struct {
	Name      string
	Size      int64
	UpdatedAt time.Time
}

// DirStore constructs an object store from a directory entry at the given path.
//
// The function converts the directory location to an absolute path to decouple
// the store from a change of the current working directory.
//
// The directory is not created if it does not exist, it is created when the
// first object is written.
func DirStore(path string) (Store, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return dirStore(absPath), nil
}

type dirStore string

func (store dirStore) PutObject(ctx context.Context, name string, data io.Reader) error {
	filePath, err := store.joinPath(name)
	if err != nil {
		return err
	}

	dirPath := filepath.Dir(filePath)
	if err := os.MkdirAll(dirPath, 0777); err != nil {
		return err
	}

	file, err := os.CreateTemp(dirPath, "."+path.Base(name)+".*")
	if err != nil {
		return err
	}
	defer file.Close()
	tmpPath := file.Name()

	if _, err := io.Copy(file, data); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}

func (store dirStore) ReadObject(ctx context.Context, name string) (io.ReadCloser, error) {
	path, err := store.joinPath(name)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

func (store dirStore) ListObjects(ctx context.Context, prefix string) ([]Info, error) {
	prefix = strings.TrimSuffix(prefix, "/")
	if prefix == "" {
		prefix = "."
	}
	dirPath, err := store.joinPath(prefix)
	if err != nil {
		return nil, err
	}
	dirents, err := os.ReadDir(dirPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	objects := make([]Info, 0, len(dirents))
	for _, dirent := range dirents {
		name := dirent.Name()
		if dirent.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}
		info, err := dirent.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue // deleted concurrently
			}
			return nil, err
		}
		objects = append(objects, Info{
			Name:      path.Join(prefix, name),
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
	}

	slices.SortFunc(objects, func(a, b Info) bool { return a.Name < b.Name })
	return objects, nil
}

func (store dirStore) DeleteObject(ctx context.Context, name string) error {
	path, err := store.joinPath(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (store dirStore) joinPath(name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("invalid object name: %q", name)
	}
	return filepath.Join(string(store), filepath.FromSlash(name)), nil
}
