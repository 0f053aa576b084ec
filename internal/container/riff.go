package container

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrInvalidRIFF = errors.New("container: invalid RIFF header")
	ErrWrongForm   = errors.New("container: unexpected form type")
	ErrTruncated   = errors.New("container: truncated data")
	ErrTooLarge    = errors.New("container: chunk too large")
)

// Chunk represents a single RIFF chunk with its FourCC tag and payload.
type Chunk struct {
	FourCC  uint32
	Payload []byte
}

// RIFFHeader holds the parsed RIFF container header.
type RIFFHeader struct {
	FileSize uint32 // total RIFF file size (excluding 8-byte RIFF header)
	Form     uint32
}

// ParseRIFFHeader validates and parses the 12-byte RIFF header from data and
// checks that it names form. Returns the header and the number of bytes
// consumed.
func ParseRIFFHeader(data []byte, form uint32) (RIFFHeader, int, error) {
	if len(data) < RIFFHeaderSize {
		return RIFFHeader{}, 0, ErrTruncated
	}

	riffTag := binary.LittleEndian.Uint32(data[0:4])
	if riffTag != FourCCRIFF {
		return RIFFHeader{}, 0, ErrInvalidRIFF
	}

	fileSize := binary.LittleEndian.Uint32(data[4:8])
	if fileSize < TagSize {
		return RIFFHeader{}, 0, ErrInvalidRIFF
	}
	if fileSize > MaxChunkPayload {
		return RIFFHeader{}, 0, ErrTooLarge
	}

	formTag := binary.LittleEndian.Uint32(data[8:12])
	if formTag != form {
		return RIFFHeader{}, 0, fmt.Errorf("%w: %s, want %s", ErrWrongForm, FourCCString(formTag), FourCCString(form))
	}

	return RIFFHeader{FileSize: fileSize, Form: formTag}, RIFFHeaderSize, nil
}

// ReadChunkHeader reads a chunk's FourCC tag and payload size from data.
func ReadChunkHeader(data []byte) (fourcc uint32, payloadSize uint32, err error) {
	if len(data) < ChunkHeaderSize {
		return 0, 0, ErrTruncated
	}
	fourcc = binary.LittleEndian.Uint32(data[0:4])
	payloadSize = binary.LittleEndian.Uint32(data[4:8])
	if payloadSize > MaxChunkPayload {
		return 0, 0, ErrTooLarge
	}
	return fourcc, payloadSize, nil
}

// PaddedSize returns the payload size padded to an even number of bytes,
// as required by the RIFF format.
func PaddedSize(size uint32) uint32 {
	return size + (size & 1)
}

// FourCCString returns a human-readable string for a FourCC value.
func FourCCString(fourcc uint32) string {
	b := [4]byte{
		byte(fourcc),
		byte(fourcc >> 8),
		byte(fourcc >> 16),
		byte(fourcc >> 24),
	}
	return string(b[:])
}
