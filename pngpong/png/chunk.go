package png

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"unicode/utf8"

	pngerrors "github.com/flaneur2020/pngpong/pngpong/errors"
)

const (
	lengthSize = 4
	typeSize   = 4
	crcSize    = 4

	// ChunkOverhead is the number of bytes a chunk adds around its payload.
	ChunkOverhead = lengthSize + typeSize + crcSize
)

// Chunk is a single length-prefixed, CRC-protected record of a PNG stream.
type Chunk struct {
	chunkType ChunkType
	data      []byte
	crc       uint32
}

// NewChunk builds a chunk and computes its CRC. The payload is copied.
func NewChunk(chunkType ChunkType, data []byte) *Chunk {
	owned := append([]byte(nil), data...)
	return &Chunk{
		chunkType: chunkType,
		data:      owned,
		crc:       checksum(chunkType, owned),
	}
}

// DecodeChunk decodes the chunk at the start of b. Bytes after the chunk are
// ignored; Size reports how many bytes were consumed.
func DecodeChunk(b []byte) (*Chunk, error) {
	if len(b) < lengthSize+typeSize {
		return nil, pngerrors.NewTruncatedError(ChunkOverhead, len(b))
	}

	length := binary.BigEndian.Uint32(b[0:lengthSize])
	need := uint64(length) + ChunkOverhead
	if need > uint64(len(b)) {
		return nil, pngerrors.NewTruncatedError(int(need), len(b))
	}

	var raw [4]byte
	copy(raw[:], b[lengthSize:lengthSize+typeSize])
	chunkType, err := ChunkTypeFromBytes(raw)
	if err != nil {
		return nil, pngerrors.ErrInvalidChunkType.
			WithDetail("bytes", fmt.Sprintf("%q", raw[:])).
			WithCause(err)
	}

	dataStart := lengthSize + typeSize
	dataEnd := dataStart + int(length)
	data := append([]byte(nil), b[dataStart:dataEnd]...)

	stored := binary.BigEndian.Uint32(b[dataEnd : dataEnd+crcSize])
	actual := checksum(chunkType, data)
	if stored != actual {
		return nil, pngerrors.NewChecksumError(stored, actual)
	}

	return &Chunk{
		chunkType: chunkType,
		data:      data,
		crc:       stored,
	}, nil
}

// Length is the payload length, as written in the length field.
func (c *Chunk) Length() uint32 {
	return uint32(len(c.data))
}

// Size is the number of bytes the chunk occupies when serialized.
func (c *Chunk) Size() int {
	return len(c.data) + ChunkOverhead
}

func (c *Chunk) ChunkType() ChunkType {
	return c.chunkType
}

// Data returns the payload. Callers must not modify it.
func (c *Chunk) Data() []byte {
	return c.data
}

func (c *Chunk) CRC() uint32 {
	return c.crc
}

// DataAsText returns the payload as a string if it is valid UTF-8.
func (c *Chunk) DataAsText() (string, error) {
	if !utf8.Valid(c.data) {
		return "", pngerrors.ErrInvalidText.WithDetail("chunkType", c.chunkType.String())
	}
	return string(c.data), nil
}

// Bytes serializes the chunk: length, type, payload and CRC, big-endian.
func (c *Chunk) Bytes() []byte {
	out := make([]byte, 0, c.Size())
	out = binary.BigEndian.AppendUint32(out, c.Length())
	out = append(out, c.chunkType.bytes[:]...)
	out = append(out, c.data...)
	out = binary.BigEndian.AppendUint32(out, c.crc)
	return out
}

func (c *Chunk) String() string {
	return fmt.Sprintf("%s length=%d crc=0x%08x", c.chunkType, c.Length(), c.crc)
}

// checksum is the PNG CRC-32 (the IEEE polynomial) over type and payload.
func checksum(chunkType ChunkType, data []byte) uint32 {
	crc := crc32.Update(0, crc32.IEEETable, chunkType.bytes[:])
	return crc32.Update(crc, crc32.IEEETable, data)
}
