package png

import (
	"unicode/utf8"

	pngerrors "github.com/flaneur2020/pngpong/pngpong/errors"
)

// propertyBit is bit 5 of each type byte, the ASCII case bit.
const propertyBit = 0x20

// ChunkType is the 4-byte tag that names a chunk. The case of each byte
// carries one property: ancillary, private, reserved and safe-to-copy.
type ChunkType struct {
	bytes [4]byte
}

// ChunkTypeFromBytes builds a ChunkType, rejecting bytes that are not ASCII
// letters. A type with the reserved bit set is accepted but not IsValid.
func ChunkTypeFromBytes(b [4]byte) (ChunkType, error) {
	for i, c := range b {
		if !isLetter(c) {
			return ChunkType{}, pngerrors.ErrInvalidByte.
				WithDetail("index", i).
				WithDetail("byte", c)
		}
	}
	return ChunkType{bytes: b}, nil
}

// ParseChunkType builds a ChunkType from a 4 character ASCII string.
func ParseChunkType(s string) (ChunkType, error) {
	if len(s) != 4 || !isASCII(s) {
		return ChunkType{}, pngerrors.ErrInvalidLength.
			WithDetail("chunkType", s).
			WithDetail("length", len(s))
	}
	return ChunkTypeFromBytes([4]byte{s[0], s[1], s[2], s[3]})
}

// Bytes returns a copy of the raw type bytes.
func (t ChunkType) Bytes() [4]byte {
	return t.bytes
}

func (t ChunkType) IsCritical() bool {
	return t.bytes[0]&propertyBit == 0
}

func (t ChunkType) IsPublic() bool {
	return t.bytes[1]&propertyBit == 0
}

func (t ChunkType) IsReservedBitValid() bool {
	return t.bytes[2]&propertyBit == 0
}

func (t ChunkType) IsSafeToCopy() bool {
	return t.bytes[3]&propertyBit != 0
}

// IsValid reports whether all bytes are letters and the reserved bit is clear.
func (t ChunkType) IsValid() bool {
	for _, c := range t.bytes {
		if !isLetter(c) {
			return false
		}
	}
	return t.IsReservedBitValid()
}

// Text renders the type bytes as a string, failing if they are not valid
// UTF-8. This can only happen for a ChunkType built without validation.
func (t ChunkType) Text() (string, error) {
	if !utf8.Valid(t.bytes[:]) {
		return "", pngerrors.ErrInvalidText.WithDetail("bytes", t.bytes)
	}
	return string(t.bytes[:]), nil
}

func (t ChunkType) String() string {
	return string(t.bytes[:])
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
