package png

import (
	"bytes"
	"fmt"
	"strings"

	pngerrors "github.com/flaneur2020/pngpong/pngpong/errors"
)

// Signature is the fixed 8-byte header of every PNG stream.
var Signature = [8]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}

// PNG is a signature followed by an ordered list of chunks. No ordering
// rules between standard chunks are enforced and pixel data is never read.
type PNG struct {
	chunks []*Chunk
}

// New builds a PNG from chunks in the given order.
func New(chunks ...*Chunk) *PNG {
	return &PNG{chunks: append([]*Chunk(nil), chunks...)}
}

// Decode parses a complete PNG stream held in memory. Chunks are read until
// the input is exhausted; any chunk failure is wrapped in ErrBadChunk with the
// original error as its cause.
func Decode(b []byte) (*PNG, error) {
	if len(b) < len(Signature) || !bytes.Equal(b[:len(Signature)], Signature[:]) {
		n := len(b)
		if n > len(Signature) {
			n = len(Signature)
		}
		return nil, pngerrors.ErrBadSignature.WithDetail("header", fmt.Sprintf("% x", b[:n]))
	}

	p := &PNG{}
	offset := len(Signature)
	for offset < len(b) {
		chunk, err := DecodeChunk(b[offset:])
		if err != nil {
			return nil, pngerrors.NewBadChunkError(len(p.chunks), offset, err)
		}
		p.chunks = append(p.chunks, chunk)
		offset += chunk.Size()
	}

	return p, nil
}

// Header returns the signature.
func (p *PNG) Header() [8]byte {
	return Signature
}

// Chunks returns the chunk list in stream order. The slice is a copy; the
// chunks themselves are shared.
func (p *PNG) Chunks() []*Chunk {
	return append([]*Chunk(nil), p.chunks...)
}

// AppendChunk adds a chunk at the end. Duplicate types are allowed.
func (p *PNG) AppendChunk(chunk *Chunk) {
	p.chunks = append(p.chunks, chunk)
}

// ChunkByType returns the first chunk whose type equals chunkType, or nil.
func (p *PNG) ChunkByType(chunkType string) *Chunk {
	idx := p.indexOf(chunkType)
	if idx < 0 {
		return nil
	}
	return p.chunks[idx]
}

// RemoveFirstChunk removes and returns the first chunk of the given type.
// The order of the remaining chunks is kept.
func (p *PNG) RemoveFirstChunk(chunkType string) (*Chunk, error) {
	idx := p.indexOf(chunkType)
	if idx < 0 {
		return nil, pngerrors.NewChunkNotFoundError(chunkType)
	}
	removed := p.chunks[idx]
	p.chunks = append(p.chunks[:idx:idx], p.chunks[idx+1:]...)
	return removed, nil
}

// Bytes serializes the signature and every chunk in order.
func (p *PNG) Bytes() []byte {
	size := len(Signature)
	for _, c := range p.chunks {
		size += c.Size()
	}

	out := make([]byte, 0, size)
	out = append(out, Signature[:]...)
	for _, c := range p.chunks {
		out = append(out, c.Bytes()...)
	}
	return out
}

// String lists each chunk's index, type and length. The format is for display
// only.
func (p *PNG) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "PNG (%d chunks)\n", len(p.chunks))
	for i, c := range p.chunks {
		fmt.Fprintf(&sb, "  %3d: %s length=%d\n", i, c.ChunkType(), c.Length())
	}
	return sb.String()
}

func (p *PNG) indexOf(chunkType string) int {
	for i, c := range p.chunks {
		if c.chunkType.String() == chunkType {
			return i
		}
	}
	return -1
}
