package storage

import "context"

// Storage abstracts whole-file reads and writes of PNG streams. Failures are
// reported as IO_FAILED errors.
type Storage interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte) error
}
