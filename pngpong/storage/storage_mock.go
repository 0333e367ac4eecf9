package storage

import (
	"context"
	"io/fs"
	"sync"

	pngerrors "github.com/flaneur2020/pngpong/pngpong/errors"
	"github.com/opencontainers/go-digest"
)

// MockStorage is a simple in-memory Storage implementation for tests.
type MockStorage struct {
	mu      sync.RWMutex
	files   map[string][]byte
	digests map[string]digest.Digest
	writes  int
}

// NewMockStorage constructs an empty MockStorage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		files:   make(map[string][]byte),
		digests: make(map[string]digest.Digest),
	}
}

// ReadFile returns a copy of the stored file.
func (m *MockStorage) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, pngerrors.NewIOError("read", path, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.files[path]
	if !ok {
		return nil, pngerrors.NewIOError("read", path, fs.ErrNotExist)
	}
	return append([]byte(nil), data...), nil
}

// WriteFile stores a copy of data under path.
func (m *MockStorage) WriteFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return pngerrors.NewIOError("write", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.files[path] = append([]byte(nil), data...)
	m.digests[path] = digest.FromBytes(data)
	m.writes++
	return nil
}

// AddFile seeds the mock storage and returns the content digest.
func (m *MockStorage) AddFile(path string, data []byte) digest.Digest {
	m.mu.Lock()
	defer m.mu.Unlock()

	dgst := digest.FromBytes(data)
	m.files[path] = append([]byte(nil), data...)
	m.digests[path] = dgst
	return dgst
}

// Digest returns the digest of the file at path, or "" if it does not exist.
func (m *MockStorage) Digest(path string) digest.Digest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.digests[path]
}

// Writes returns how many WriteFile calls succeeded.
func (m *MockStorage) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
