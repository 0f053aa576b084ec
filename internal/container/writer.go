package container

import (
	"encoding/binary"
	"errors"
	"io"
)

// ErrNoChunks is returned when assembling a form without chunks.
var ErrNoChunks = errors.New("container: no chunks to assemble")

// Writer assembles a RIFF form from chunks added in order.
type Writer struct {
	form   uint32
	chunks []Chunk
}

// NewWriter returns a writer for a form of type form.
func NewWriter(form uint32) *Writer {
	return &Writer{form: form}
}

// AddChunk appends a chunk. data is retained until Assemble returns.
func (w *Writer) AddChunk(fourcc uint32, data []byte) error {
	if uint64(len(data)) > uint64(MaxChunkPayload) {
		return ErrTooLarge
	}
	w.chunks = append(w.chunks, Chunk{FourCC: fourcc, Payload: data})
	return nil
}

// chunkTotalSize returns the on-disk size of a chunk: header plus padded
// payload.
func chunkTotalSize(size uint32) uint64 {
	return ChunkHeaderSize + uint64(PaddedSize(size))
}

// Assemble writes the complete form to out.
func (w *Writer) Assemble(out io.Writer) error {
	if len(w.chunks) == 0 {
		return ErrNoChunks
	}
	riffPayload := uint64(TagSize)
	for _, c := range w.chunks {
		riffPayload += chunkTotalSize(uint32(len(c.Payload)))
	}
	if riffPayload > uint64(MaxChunkPayload) {
		return ErrTooLarge
	}

	header := make([]byte, RIFFHeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], FourCCRIFF)
	binary.LittleEndian.PutUint32(header[4:8], uint32(riffPayload))
	binary.LittleEndian.PutUint32(header[8:12], w.form)
	if _, err := out.Write(header); err != nil {
		return err
	}

	var hdr [ChunkHeaderSize]byte
	for _, c := range w.chunks {
		size := uint32(len(c.Payload))
		writeChunkHeader(hdr[:], c.FourCC, size)
		if _, err := out.Write(hdr[:]); err != nil {
			return err
		}
		if _, err := out.Write(c.Payload); err != nil {
			return err
		}
		if size%2 != 0 {
			if _, err := out.Write([]byte{0}); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeChunkHeader writes a chunk header (FourCC + size) into buf.
func writeChunkHeader(buf []byte, fourcc, size uint32) {
	binary.LittleEndian.PutUint32(buf[0:4], fourcc)
	binary.LittleEndian.PutUint32(buf[4:8], size)
}
