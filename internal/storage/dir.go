package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// DirSaver writes exported files into a local directory. Files appear
// atomically and never replace an existing file: a taken name gets a
// " (n)" suffix instead.
type DirSaver struct {
	dir string
}

// NewDirSaver creates dir if needed.
func NewDirSaver(dir string) (*DirSaver, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}
	return &DirSaver{dir: dir}, nil
}

// Dir returns the target directory.
func (d *DirSaver) Dir() string {
	return d.dir
}

// SaveBlob stores data inside the directory and returns the name it was
// saved under. Any directory components in filename are dropped.
// contentType is unused.
func (d *DirSaver) SaveBlob(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("invalid filename %q", filename)
	}
	tmp, err := os.CreateTemp(d.dir, "."+name+".*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	// os.Link never replaces an existing file.
	for n := 0; n < maxNameAttempts; n++ {
		candidate := numberedName(name, n)
		err := os.Link(tmp.Name(), filepath.Join(d.dir, candidate))
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("no free file name for %q in %s", name, d.dir)
}
