package pngpong

import (
	"context"
	"fmt"
	"sync"

	pngerrors "github.com/flaneur2020/pngpong/pngpong/errors"
	"github.com/flaneur2020/pngpong/pngpong/logger"
	"github.com/flaneur2020/pngpong/pngpong/png"
	"github.com/flaneur2020/pngpong/pngpong/storage"
	"github.com/opencontainers/go-digest"
	"golang.org/x/sync/errgroup"
)

// DefaultJobs bounds how many files PrintAll decodes at once.
const DefaultJobs = 4

// ProgressCallback is called by PrintAll after each file is summarised
// done: files finished so far
// total: number of files requested
type ProgressCallback func(done int, total int)

// Summary describes a decoded PNG file.
type Summary struct {
	Path   string
	Digest digest.Digest
	Size   int
	Chunks int
	Text   string
}

func (s *Summary) String() string {
	return fmt.Sprintf("%s (%d bytes, %s)\n%s", s.Path, s.Size, s.Digest, s.Text)
}

// Editor runs the encode, decode, remove and print operations against files
// in a Storage. Every call reads the file, works on a fresh in-memory PNG and
// writes the result back when the operation changes it.
type Editor struct {
	storage storage.Storage
}

func NewEditor(s storage.Storage) *Editor {
	return &Editor{storage: s}
}

// Encode appends a chunk of chunkType carrying message and writes the PNG to
// outputPath, or back to path when outputPath is empty.
func (e *Editor) Encode(ctx context.Context, path string, chunkType string, message []byte, outputPath string) error {
	p, _, err := e.load(ctx, path)
	if err != nil {
		return err
	}

	ct, err := png.ParseChunkType(chunkType)
	if err != nil {
		return err
	}
	if !ct.IsValid() {
		logger.Warn("Chunk type %s has the reserved bit set; readers may reject it", ct)
	}
	if ct.IsCritical() {
		logger.Warn("Chunk type %s is critical; decoders that do not know it will refuse the image", ct)
	}

	p.AppendChunk(png.NewChunk(ct, message))
	logger.Debug("Appended %s chunk with %d byte message", ct, len(message))

	if outputPath == "" {
		outputPath = path
	}
	if err := e.storage.WriteFile(ctx, outputPath, p.Bytes()); err != nil {
		return err
	}
	logger.Info("Encoded message into %s chunk of %s", ct, outputPath)
	return nil
}

// Decode returns the payload of the first chunk of chunkType as text.
func (e *Editor) Decode(ctx context.Context, path string, chunkType string) (string, error) {
	p, _, err := e.load(ctx, path)
	if err != nil {
		return "", err
	}

	chunk := p.ChunkByType(chunkType)
	if chunk == nil {
		return "", pngerrors.NewChunkNotFoundError(chunkType)
	}
	logger.Debug("Found %s", chunk)
	return chunk.DataAsText()
}

// Remove deletes the first chunk of chunkType, writes the file back and
// returns the removed chunk.
func (e *Editor) Remove(ctx context.Context, path string, chunkType string) (*png.Chunk, error) {
	p, _, err := e.load(ctx, path)
	if err != nil {
		return nil, err
	}

	removed, err := p.RemoveFirstChunk(chunkType)
	if err != nil {
		return nil, err
	}

	if err := e.storage.WriteFile(ctx, path, p.Bytes()); err != nil {
		return nil, err
	}
	logger.Info("Removed %s from %s", removed, path)
	return removed, nil
}

// Print decodes path and returns its summary.
func (e *Editor) Print(ctx context.Context, path string) (*Summary, error) {
	p, data, err := e.load(ctx, path)
	if err != nil {
		return nil, err
	}

	return &Summary{
		Path:   path,
		Digest: digest.FromBytes(data),
		Size:   len(data),
		Chunks: len(p.Chunks()),
		Text:   p.String(),
	}, nil
}

// PrintAll summarises several files, at most jobs at a time. Summaries are
// returned in the order of paths. The first failure cancels the remaining
// files and is returned.
func (e *Editor) PrintAll(ctx context.Context, paths []string, jobs int, progress ProgressCallback) ([]*Summary, error) {
	if jobs <= 0 {
		jobs = DefaultJobs
	}

	summaries := make([]*Summary, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	var (
		mu   sync.Mutex
		done int
	)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			summary, err := e.Print(gctx, path)
			if err != nil {
				return err
			}
			summaries[i] = summary

			if progress != nil {
				mu.Lock()
				done++
				progress(done, len(paths))
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (e *Editor) load(ctx context.Context, path string) (*png.PNG, []byte, error) {
	data, err := e.storage.ReadFile(ctx, path)
	if err != nil {
		return nil, nil, err
	}

	p, err := png.Decode(data)
	if err != nil {
		logger.Info("Failed to decode %s: %v", path, err)
		return nil, nil, err
	}
	logger.Debug("Decoded %s: %d chunks", path, len(p.Chunks()))
	return p, data, nil
}
