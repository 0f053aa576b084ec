// Package container reads and writes RIFF forms: a 12-byte "RIFF" header
// naming the form type, followed by tagged chunks padded to even sizes.
package container

import "encoding/binary"

// FourCC creates a FourCC value from four bytes (little-endian).
func FourCC(a, b, c, d byte) uint32 {
	return uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24
}

// FourCCRIFF opens every form.
var FourCCRIFF = FourCC('R', 'I', 'F', 'F')

// Container structure sizes.
const (
	TagSize         = 4  // Size of a chunk tag
	ChunkHeaderSize = 8  // Size of a chunk header
	RIFFHeaderSize  = 12 // Size of the RIFF header ("RIFFnnnnTYPE")
)

// MaxChunkPayload is the largest payload a chunk header can describe once
// the form header is accounted for.
const MaxChunkPayload = ^uint32(0) - ChunkHeaderSize - 1

// ReadLE32 reads a little-endian uint32 from data.
func ReadLE32(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data)
}

// PutLE32 writes a little-endian uint32 to data.
func PutLE32(data []byte, v uint32) {
	binary.LittleEndian.PutUint32(data, v)
}
