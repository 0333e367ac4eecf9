package png

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	pngerrors "github.com/flaneur2020/pngpong/pngpong/errors"
)

func chunkFromStrings(t *testing.T, chunkType, data string) *Chunk {
	t.Helper()
	return NewChunk(mustChunkType(t, chunkType), []byte(data))
}

func testingChunks(t *testing.T) []*Chunk {
	t.Helper()
	return []*Chunk{
		chunkFromStrings(t, "FrSt", "I am the first chunk"),
		chunkFromStrings(t, "miDl", "I am another chunk"),
		chunkFromStrings(t, "LASt", "I am the last chunk"),
	}
}

func testingPNGBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(Signature[:])
	for _, c := range testingChunks(t) {
		buf.Write(c.Bytes())
	}
	return buf.Bytes()
}

func TestNew(t *testing.T) {
	p := New(testingChunks(t)...)
	if len(p.Chunks()) != 3 {
		t.Errorf("Chunks() len = %d, want 3", len(p.Chunks()))
	}
	if p.Header() != Signature {
		t.Errorf("Header() = % x, want % x", p.Header(), Signature)
	}
}

func TestDecode(t *testing.T) {
	p, err := Decode(testingPNGBytes(t))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	wantTypes := []string{"FrSt", "miDl", "LASt"}
	chunks := p.Chunks()
	if len(chunks) != len(wantTypes) {
		t.Fatalf("Chunks() len = %d, want %d", len(chunks), len(wantTypes))
	}
	for i, want := range wantTypes {
		if chunks[i].ChunkType().String() != want {
			t.Errorf("chunk %d type = %s, want %s", i, chunks[i].ChunkType(), want)
		}
	}
}

func TestDecode_SignatureOnly(t *testing.T) {
	p, err := Decode(Signature[:])
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(p.Chunks()) != 0 {
		t.Errorf("Chunks() len = %d, want 0", len(p.Chunks()))
	}
}

func TestDecode_Errors(t *testing.T) {
	valid := testingPNGBytes(t)

	badSig := append([]byte(nil), valid...)
	badSig[1] = 'J'

	badCRC := append([]byte(nil), valid...)
	badCRC[len(badCRC)-1] ^= 0x01

	// first chunk declares more data than the whole stream holds
	oversized := append([]byte(nil), valid...)
	oversized[8], oversized[9] = 0x7f, 0xff

	badType := append([]byte(nil), valid...)
	badType[12] = '1'

	tests := []struct {
		name  string
		raw   []byte
		want  error
		cause error
	}{
		{"empty", nil, pngerrors.ErrBadSignature, nil},
		{"short signature", Signature[:5], pngerrors.ErrBadSignature, nil},
		{"wrong signature", badSig, pngerrors.ErrBadSignature, nil},
		{"truncated last chunk", valid[:len(valid)-3], pngerrors.ErrBadChunk, pngerrors.ErrTruncatedInput},
		{"declared length exceeds buffer", oversized, pngerrors.ErrBadChunk, pngerrors.ErrTruncatedInput},
		{"trailing garbage", append(append([]byte(nil), valid...), 0x01, 0x02), pngerrors.ErrBadChunk, pngerrors.ErrTruncatedInput},
		{"checksum mismatch", badCRC, pngerrors.ErrBadChunk, pngerrors.ErrInvalidChecksum},
		{"invalid type byte", badType, pngerrors.ErrBadChunk, pngerrors.ErrInvalidChunkType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(tt.raw)
			if p != nil {
				t.Errorf("Decode() = %v, want nil", p)
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("Decode() error = %v, want %v", err, tt.want)
			}
			if tt.cause != nil {
				var pngErr *pngerrors.PngError
				if !errors.As(err, &pngErr) {
					t.Fatalf("Decode() error %T is not a PngError", err)
				}
				if !errors.Is(pngErr.Cause, tt.cause) {
					t.Errorf("cause = %v, want %v", pngErr.Cause, tt.cause)
				}
			}
		})
	}
}

func TestDecode_BadChunkPosition(t *testing.T) {
	valid := testingPNGBytes(t)
	corrupt := append([]byte(nil), valid...)
	corrupt[len(corrupt)-1] ^= 0x01

	_, err := Decode(corrupt)
	var pngErr *pngerrors.PngError
	if !errors.As(err, &pngErr) {
		t.Fatalf("Decode() error = %v, want PngError", err)
	}

	chunks := testingChunks(t)
	wantOffset := len(Signature) + chunks[0].Size() + chunks[1].Size()
	if pngErr.Details["index"] != 2 {
		t.Errorf("index detail = %v, want 2", pngErr.Details["index"])
	}
	if pngErr.Details["offset"] != wantOffset {
		t.Errorf("offset detail = %v, want %d", pngErr.Details["offset"], wantOffset)
	}
}

func TestPNG_RoundTrip(t *testing.T) {
	raw := testingPNGBytes(t)
	p, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(p.Bytes(), raw) {
		t.Error("Bytes() differs from decoded input")
	}

	again, err := Decode(p.Bytes())
	if err != nil {
		t.Fatalf("Decode(Bytes()) error = %v", err)
	}
	if len(again.Chunks()) != len(p.Chunks()) {
		t.Fatalf("Chunks() len = %d, want %d", len(again.Chunks()), len(p.Chunks()))
	}
	for i, c := range again.Chunks() {
		if !bytes.Equal(c.Bytes(), p.Chunks()[i].Bytes()) {
			t.Errorf("chunk %d differs after round trip", i)
		}
	}
}

func TestPNG_AppendChunk(t *testing.T) {
	p := New(testingChunks(t)...)
	p.AppendChunk(chunkFromStrings(t, "TeSt", "Message"))

	chunks := p.Chunks()
	if len(chunks) != 4 {
		t.Fatalf("Chunks() len = %d, want 4", len(chunks))
	}
	last := chunks[3]
	if last.ChunkType().String() != "TeSt" {
		t.Errorf("last chunk type = %s, want TeSt", last.ChunkType())
	}
	if string(last.Data()) != "Message" {
		t.Errorf("last chunk data = %q, want Message", last.Data())
	}
}

func TestPNG_AppendThenFind(t *testing.T) {
	p := New(testingChunks(t)...)
	message := "this is where your secret message will be!"
	p.AppendChunk(chunkFromStrings(t, "ruSt", message))

	found := p.ChunkByType("ruSt")
	if found == nil {
		t.Fatal("ChunkByType() = nil, want chunk")
	}
	text, err := found.DataAsText()
	if err != nil {
		t.Fatalf("DataAsText() error = %v", err)
	}
	if text != message {
		t.Errorf("DataAsText() = %q, want %q", text, message)
	}
	if found.CRC() != 0x74774cbb {
		t.Errorf("CRC() = 0x%08x, want 0x74774cbb", found.CRC())
	}
}

func TestPNG_ChunkByType(t *testing.T) {
	p := New(testingChunks(t)...)

	chunk := p.ChunkByType("FrSt")
	if chunk == nil {
		t.Fatal("ChunkByType(FrSt) = nil")
	}
	if string(chunk.Data()) != "I am the first chunk" {
		t.Errorf("Data() = %q, want %q", chunk.Data(), "I am the first chunk")
	}

	if got := p.ChunkByType("nOpe"); got != nil {
		t.Errorf("ChunkByType(nOpe) = %v, want nil", got)
	}
	if got := p.ChunkByType("not a type"); got != nil {
		t.Errorf("ChunkByType(not a type) = %v, want nil", got)
	}
}

func TestPNG_DuplicateTypes(t *testing.T) {
	p := New()
	p.AppendChunk(chunkFromStrings(t, "ruSt", "one"))
	p.AppendChunk(chunkFromStrings(t, "ruSt", "two"))

	if got := string(p.ChunkByType("ruSt").Data()); got != "one" {
		t.Errorf("ChunkByType() data = %q, want one", got)
	}

	removed, err := p.RemoveFirstChunk("ruSt")
	if err != nil {
		t.Fatalf("RemoveFirstChunk() error = %v", err)
	}
	if string(removed.Data()) != "one" {
		t.Errorf("removed data = %q, want one", removed.Data())
	}
	if got := string(p.ChunkByType("ruSt").Data()); got != "two" {
		t.Errorf("ChunkByType() data = %q after remove, want two", got)
	}
}

func TestPNG_RemoveFirstChunk(t *testing.T) {
	p := New(testingChunks(t)...)
	p.AppendChunk(chunkFromStrings(t, "ruSt", "secret"))

	if _, err := p.RemoveFirstChunk("ruSt"); err != nil {
		t.Fatalf("RemoveFirstChunk() error = %v", err)
	}
	if got := p.ChunkByType("ruSt"); got != nil {
		t.Errorf("ChunkByType() = %v after remove, want nil", got)
	}

	_, err := p.RemoveFirstChunk("ruSt")
	if !errors.Is(err, pngerrors.ErrChunkNotFound) {
		t.Errorf("RemoveFirstChunk() error = %v, want %v", err, pngerrors.ErrChunkNotFound)
	}
	if pngerrors.KindOf(err) != pngerrors.KindLookup {
		t.Errorf("KindOf() = %q, want %q", pngerrors.KindOf(err), pngerrors.KindLookup)
	}
}

func TestPNG_RemovePreservesOrder(t *testing.T) {
	p := New(testingChunks(t)...)
	view := p.Chunks()

	if _, err := p.RemoveFirstChunk("miDl"); err != nil {
		t.Fatalf("RemoveFirstChunk() error = %v", err)
	}

	chunks := p.Chunks()
	if len(chunks) != 2 {
		t.Fatalf("Chunks() len = %d, want 2", len(chunks))
	}
	if chunks[0].ChunkType().String() != "FrSt" || chunks[1].ChunkType().String() != "LASt" {
		t.Errorf("Chunks() = [%s %s], want [FrSt LASt]", chunks[0].ChunkType(), chunks[1].ChunkType())
	}
	if view[1].ChunkType().String() != "miDl" {
		t.Errorf("earlier Chunks() view changed to %s", view[1].ChunkType())
	}
}

func TestPNG_String(t *testing.T) {
	p := New(testingChunks(t)...)
	out := p.String()

	for _, want := range []string{"PNG (3 chunks)", "FrSt length=20", "miDl length=18", "LASt length=19"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() = %q, want to contain %q", out, want)
		}
	}
}
