package storage

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	pngerrors "github.com/flaneur2020/pngpong/pngpong/errors"
	"github.com/flaneur2020/pngpong/pngpong/logger"
	"github.com/opencontainers/go-digest"
)

const defaultFileMode fs.FileMode = 0644

// LocalStorage reads and writes files on the local filesystem.
type LocalStorage struct{}

// NewLocalStorage creates a filesystem-backed storage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{}
}

// ReadFile loads the whole file into memory.
func (s *LocalStorage) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, pngerrors.NewIOError("read", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pngerrors.NewIOError("read", path, err)
	}
	logger.Debug("Read %s (%d bytes)", path, len(data))
	return data, nil
}

// WriteFile replaces path with data. The bytes go to a temporary file in the
// same directory which is then renamed over path, so readers never observe a
// partially written file. An existing file keeps its permissions.
func (s *LocalStorage) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return pngerrors.NewIOError("write", path, err)
	}

	mode := defaultFileMode
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(err, fs.ErrNotExist) {
		return pngerrors.NewIOError("stat", path, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return pngerrors.NewIOError("write", path, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return pngerrors.NewIOError("write", path, err)
	}
	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return pngerrors.NewIOError("chmod", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return pngerrors.NewIOError("write", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return pngerrors.NewIOError("rename", path, err)
	}

	logger.Debug("Wrote %s (%d bytes, %s)", path, len(data), digest.FromBytes(data))
	return nil
}
