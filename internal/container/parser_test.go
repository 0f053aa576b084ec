package container

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

var formTEST = FourCC('T', 'E', 'S', 'T')

func TestParseRIFFHeader_Valid(t *testing.T) {
	data := make([]byte, 20)
	binary.LittleEndian.PutUint32(data[0:4], FourCCRIFF)
	binary.LittleEndian.PutUint32(data[4:8], 100) // file size
	binary.LittleEndian.PutUint32(data[8:12], formTEST)

	hdr, n, err := ParseRIFFHeader(data, formTEST)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != RIFFHeaderSize {
		t.Fatalf("consumed %d bytes, want %d", n, RIFFHeaderSize)
	}
	if hdr.FileSize != 100 || hdr.Form != formTEST {
		t.Fatalf("header = %+v", hdr)
	}
}

func TestParseRIFFHeader_TooShort(t *testing.T) {
	_, _, err := ParseRIFFHeader([]byte{0, 1, 2}, formTEST)
	if err != ErrTruncated {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestParseRIFFHeader_BadRIFF(t *testing.T) {
	data := make([]byte, 12)
	copy(data[0:4], "JUNK")
	_, _, err := ParseRIFFHeader(data, formTEST)
	if err != ErrInvalidRIFF {
		t.Fatalf("expected ErrInvalidRIFF, got %v", err)
	}
}

func TestParseRIFFHeader_WrongForm(t *testing.T) {
	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], FourCCRIFF)
	binary.LittleEndian.PutUint32(data[4:8], 100)
	copy(data[8:12], "JUNK")
	_, _, err := ParseRIFFHeader(data, formTEST)
	if !errors.Is(err, ErrWrongForm) {
		t.Fatalf("expected ErrWrongForm, got %v", err)
	}
}

func TestReadChunkHeader(t *testing.T) {
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:4], FourCC('H', 'E', 'A', 'D'))
	binary.LittleEndian.PutUint32(data[4:8], 42)

	fourcc, size, err := ReadChunkHeader(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fourcc != FourCC('H', 'E', 'A', 'D') {
		t.Fatalf("fourcc = 0x%08x, want HEAD", fourcc)
	}
	if size != 42 {
		t.Fatalf("size = %d, want 42", size)
	}
}

func TestPaddedSize(t *testing.T) {
	tests := []struct {
		in, want uint32
	}{
		{0, 0},
		{1, 2},
		{2, 2},
		{3, 4},
		{100, 100},
		{101, 102},
	}
	for _, tt := range tests {
		got := PaddedSize(tt.in)
		if got != tt.want {
			t.Errorf("PaddedSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFourCCString(t *testing.T) {
	if s := FourCCString(FourCCRIFF); s != "RIFF" {
		t.Fatalf("FourCCString(RIFF) = %q, want %q", s, "RIFF")
	}
	if s := FourCCString(FourCC('a', 'b', 'c', ' ')); s != "abc " {
		t.Fatalf("FourCCString = %q, want %q", s, "abc ")
	}
}

func TestParseChunks(t *testing.T) {
	a := FourCC('A', 'A', 'A', 'A')
	b := FourCC('B', 'B', 'B', 'B')
	data := wrapRIFF(formTEST, concat(
		makeChunk(a, []byte{1, 2, 3}),
		makeChunk(b, []byte{4, 5}),
		makeChunk(a, nil),
	))
	f, err := Parse(data, formTEST)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Chunks) != 3 {
		t.Fatalf("got %d chunks, want 3", len(f.Chunks))
	}
	if p, ok := f.First(b); !ok || !bytes.Equal(p, []byte{4, 5}) {
		t.Errorf("First(B) = %v, %v", p, ok)
	}
	if got := f.Find(a); len(got) != 2 || !bytes.Equal(got[0], []byte{1, 2, 3}) || len(got[1]) != 0 {
		t.Errorf("Find(A) = %v", got)
	}
	if _, ok := f.First(FourCC('Z', 'Z', 'Z', 'Z')); ok {
		t.Error("First found a missing chunk")
	}
}

func TestParseTruncated(t *testing.T) {
	data := wrapRIFF(formTEST, makeChunk(FourCC('A', 'A', 'A', 'A'), make([]byte, 40)))
	if _, err := Parse(data[:len(data)-10], formTEST); !errors.Is(err, ErrTruncated) {
		t.Errorf("short form: err = %v, want ErrTruncated", err)
	}

	// A chunk claiming more than the form holds.
	bad := wrapRIFF(formTEST, makeChunk(FourCC('A', 'A', 'A', 'A'), make([]byte, 4)))
	binary.LittleEndian.PutUint32(bad[RIFFHeaderSize+4:], 64)
	if _, err := Parse(bad, formTEST); !errors.Is(err, ErrTruncated) {
		t.Errorf("oversized chunk: err = %v, want ErrTruncated", err)
	}
}

func TestWriterRoundTrip(t *testing.T) {
	w := NewWriter(formTEST)
	payloads := [][]byte{{9}, {1, 2, 3, 4}, make([]byte, 1001)}
	for i, p := range payloads {
		if err := w.AddChunk(FourCC('C', 'K', '0', byte('0'+i)), p); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := w.Assemble(&buf); err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if buf.Len()%2 != 0 {
		t.Errorf("form length %d is odd", buf.Len())
	}
	if got := binary.LittleEndian.Uint32(buf.Bytes()[4:8]); int(got) != buf.Len()-ChunkHeaderSize {
		t.Errorf("declared size %d, written %d", got, buf.Len()-ChunkHeaderSize)
	}

	f, err := Parse(buf.Bytes(), formTEST)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for i, p := range payloads {
		got, ok := f.First(FourCC('C', 'K', '0', byte('0'+i)))
		if !ok || !bytes.Equal(got, p) {
			t.Errorf("chunk %d: got %d bytes", i, len(got))
		}
	}
}

func TestWriterEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(formTEST).Assemble(&buf); err != ErrNoChunks {
		t.Errorf("err = %v, want ErrNoChunks", err)
	}
}

func TestLE32(t *testing.T) {
	b := make([]byte, 4)
	PutLE32(b, 0x01020304)
	if b[0] != 4 || ReadLE32(b) != 0x01020304 {
		t.Errorf("LE32 round trip: % x", b)
	}
}

// -- test helpers --

func makeChunk(fourcc uint32, payload []byte) []byte {
	size := uint32(len(payload))
	padded := PaddedSize(size)
	out := make([]byte, ChunkHeaderSize+padded)
	binary.LittleEndian.PutUint32(out[0:4], fourcc)
	binary.LittleEndian.PutUint32(out[4:8], size)
	copy(out[ChunkHeaderSize:], payload)
	return out
}

func wrapRIFF(form uint32, chunks []byte) []byte {
	riffPayload := 4 + uint32(len(chunks)) // form type + chunks
	out := make([]byte, RIFFHeaderSize+len(chunks))
	binary.LittleEndian.PutUint32(out[0:4], FourCCRIFF)
	binary.LittleEndian.PutUint32(out[4:8], riffPayload)
	binary.LittleEndian.PutUint32(out[8:12], form)
	copy(out[RIFFHeaderSize:], chunks)
	return out
}

func concat(slices ...[]byte) []byte {
	total := 0
	for _, s := range slices {
		total += len(s)
	}
	out := make([]byte, 0, total)
	for _, s := range slices {
		out = append(out, s...)
	}
	return out
}
