package container

import "fmt"

// Form is a parsed RIFF form: its type and chunks in file order. Payloads
// are sub-slices of the parsed data.
type Form struct {
	Type   uint32
	Chunks []Chunk
}

// Parse splits data into the chunks of a RIFF form of type form. Parsing
// stops at the size declared in the RIFF header; trailing bytes are ignored.
func Parse(data []byte, form uint32) (*Form, error) {
	hdr, consumed, err := ParseRIFFHeader(data, form)
	if err != nil {
		return nil, err
	}

	// Limit parsing to the declared RIFF size.
	riffEnd := int(hdr.FileSize) + ChunkHeaderSize
	if riffEnd > len(data) {
		return nil, fmt.Errorf("%w: form declares %d bytes, have %d", ErrTruncated, riffEnd, len(data))
	}
	buf := data[consumed:riffEnd]

	f := &Form{Type: hdr.Form}
	for len(buf) > 0 {
		fourcc, size, err := ReadChunkHeader(buf)
		if err != nil {
			return nil, err
		}
		payloadEnd := ChunkHeaderSize + int(size)
		if payloadEnd > len(buf) {
			return nil, fmt.Errorf("%w: chunk %s needs %d bytes, have %d",
				ErrTruncated, FourCCString(fourcc), payloadEnd, len(buf))
		}
		f.Chunks = append(f.Chunks, Chunk{FourCC: fourcc, Payload: buf[ChunkHeaderSize:payloadEnd]})

		// Chunks are padded to even byte boundaries.
		next := ChunkHeaderSize + int(PaddedSize(size))
		if next > len(buf) {
			next = len(buf)
		}
		buf = buf[next:]
	}
	return f, nil
}

// Find returns the payloads of every chunk tagged fourcc, in file order.
func (f *Form) Find(fourcc uint32) [][]byte {
	var out [][]byte
	for _, c := range f.Chunks {
		if c.FourCC == fourcc {
			out = append(out, c.Payload)
		}
	}
	return out
}

// First returns the payload of the first chunk tagged fourcc.
func (f *Form) First(fourcc uint32) ([]byte, bool) {
	for _, c := range f.Chunks {
		if c.FourCC == fourcc {
			return c.Payload, true
		}
	}
	return nil, false
}
