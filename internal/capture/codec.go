package capture

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/deepteams/deblock/internal/container"
	"github.com/deepteams/deblock/internal/lf"
)

// headChunk is the fixed part of the HEAD chunk. Tile column starts and then
// tile row starts follow it as uint32 values.
type headChunk struct {
	Version     uint16
	BitDepth    uint8
	Layout      uint8
	SB128       uint8
	LevelU      uint8
	LevelV      uint8
	Sharpness   uint8
	Width       uint32
	Height      uint32
	TileCols    uint16
	TileRows    uint16
	LevelStride uint32
	LevelRows   uint32
	MaskCols    uint32
	MaskRows    uint32
}

// HasExpected reports whether an output has been recorded.
func (s *Snapshot) HasExpected() bool {
	return s.Expected[0].Width != 0
}

func (s *Snapshot) overrideArrays() []any {
	o := s.Overrides
	var out []any
	for k := range o.ColLuma {
		out = append(out, o.ColLuma[k], o.ColChroma[k])
	}
	return append(out, o.RowLuma, o.RowChroma)
}

// Write encodes s to w.
func Write(w io.Writer, s *Snapshot) error {
	h := &s.Header
	head := headChunk{
		Version:     Version,
		BitDepth:    uint8(s.BitDepth),
		Layout:      uint8(h.Layout),
		LevelU:      h.LevelU,
		LevelV:      h.LevelV,
		Sharpness:   uint8(h.Sharpness),
		Width:       uint32(h.Width),
		Height:      uint32(h.Height),
		TileCols:    uint16(len(h.TileColStartSB)),
		TileRows:    uint16(len(h.TileRowStartSB)),
		LevelStride: uint32(s.LevelStride),
		LevelRows:   uint32(s.LevelRows),
		MaskCols:    uint32(s.MaskCols),
		MaskRows:    uint32(s.MaskRows),
	}
	if h.SB128 {
		head.SB128 = 1
	}
	var buf bytes.Buffer
	if err := encode(&buf, head, toUint32(h.TileColStartSB), toUint32(h.TileRowStartSB)); err != nil {
		return err
	}

	cw := container.NewWriter(formLFSN)
	if err := cw.AddChunk(tagHead, buf.Bytes()); err != nil {
		return err
	}
	add := func(tag uint32, data ...any) error {
		var body bytes.Buffer
		if err := encode(&body, data...); err != nil {
			return fmt.Errorf("capture: encoding %s: %w", container.FourCCString(tag), err)
		}
		return cw.AddChunk(tag, compress(body.Bytes()))
	}
	if err := add(tagLevels, s.Levels); err != nil {
		return err
	}
	if err := add(tagMasks, s.Masks); err != nil {
		return err
	}
	if err := add(tagOverrides, s.overrideArrays()...); err != nil {
		return err
	}
	for _, pd := range s.Input {
		if err := add(tagInput, planeHead(pd), pd.Samples); err != nil {
			return err
		}
	}
	for _, pd := range s.Expected {
		if err := add(tagExpected, planeHead(pd), pd.Samples); err != nil {
			return err
		}
	}
	return cw.Assemble(w)
}

func encode(w io.Writer, data ...any) error {
	for _, d := range data {
		if err := binary.Write(w, binary.LittleEndian, d); err != nil {
			return err
		}
	}
	return nil
}

func toUint32(v []int) []uint32 {
	out := make([]uint32, len(v))
	for i, x := range v {
		out[i] = uint32(x)
	}
	return out
}

func toInt(v []uint32) []int {
	if len(v) == 0 {
		return nil
	}
	out := make([]int, len(v))
	for i, x := range v {
		out[i] = int(x)
	}
	return out
}

// Read decodes a snapshot written by Write.
func Read(r io.Reader) (*Snapshot, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("capture: reading snapshot: %w", err)
	}
	form, err := container.Parse(data, formLFSN)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	headData, ok := form.First(tagHead)
	if !ok {
		return nil, fmt.Errorf("%w: missing HEAD chunk", ErrFormat)
	}
	rd := bytes.NewReader(headData)
	var head headChunk
	if err := binary.Read(rd, binary.LittleEndian, &head); err != nil {
		return nil, fmt.Errorf("%w: HEAD: %w", ErrFormat, err)
	}
	if head.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, head.Version)
	}
	cols := make([]uint32, head.TileCols)
	rows := make([]uint32, head.TileRows)
	if err := decode(rd, cols, rows); err != nil {
		return nil, fmt.Errorf("%w: HEAD: %w", ErrFormat, err)
	}

	s := &Snapshot{
		Header: lf.Header{
			Width:          int(head.Width),
			Height:         int(head.Height),
			Layout:         lf.Layout(head.Layout),
			SB128:          head.SB128 != 0,
			LevelU:         head.LevelU,
			LevelV:         head.LevelV,
			Sharpness:      int(head.Sharpness),
			TileColStartSB: toInt(cols),
			TileRowStartSB: toInt(rows),
		},
		BitDepth:    int(head.BitDepth),
		LevelStride: int(head.LevelStride),
		LevelRows:   int(head.LevelRows),
		MaskCols:    int(head.MaskCols),
		MaskRows:    int(head.MaskRows),
	}
	if err := s.Header.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	if s.BitDepth != 8 && s.BitDepth != 10 && s.BitDepth != 12 {
		return nil, fmt.Errorf("%w: bit depth %d", ErrFormat, s.BitDepth)
	}
	levelBytes := 4 * uint64(head.LevelStride) * uint64(head.LevelRows)
	maskUnits := uint64(head.MaskCols) * uint64(head.MaskRows)
	if levelBytes > maxChunkBytes || maskUnits*uint64(binary.Size(lf.SBMask{})) > maxChunkBytes {
		return nil, fmt.Errorf("%w: arrays too large", ErrFormat)
	}

	s.Levels = make([]uint8, levelBytes)
	if err := readChunk(form, tagLevels, s.Levels); err != nil {
		return nil, err
	}
	s.Masks = make([]lf.SBMask, maskUnits)
	if err := readChunk(form, tagMasks, s.Masks); err != nil {
		return nil, err
	}
	s.Overrides = lf.NewTileOverrides(&s.Header)
	if err := readChunk(form, tagOverrides, s.overrideArrays()...); err != nil {
		return nil, err
	}
	in := s.inputs()
	err = in.Check(&s.Header)
	in.Release()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}

	if s.Input, err = readPlanes(form, tagInput); err != nil {
		return nil, err
	}
	if s.Expected, err = readPlanes(form, tagExpected); err != nil {
		return nil, err
	}
	return s, nil
}

// readAll makes a single allocation when r knows its length, as
// *bytes.Reader does.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		if n := lr.Len(); n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

func decode(r io.Reader, data ...any) error {
	for _, d := range data {
		if err := binary.Read(r, binary.LittleEndian, d); err != nil {
			return err
		}
	}
	return nil
}

// readChunk decompresses the first chunk tagged tag into dst, which must
// account for every byte of it.
func readChunk(form *container.Form, tag uint32, dst ...any) error {
	payload, ok := form.First(tag)
	if !ok {
		return fmt.Errorf("%w: missing %s chunk", ErrFormat, container.FourCCString(tag))
	}
	return decodeBody(tag, payload, dst...)
}

func decodeBody(tag uint32, payload []byte, dst ...any) error {
	raw, err := decompress(payload)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFormat, container.FourCCString(tag), err)
	}
	rd := bytes.NewReader(raw)
	if err := decode(rd, dst...); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFormat, container.FourCCString(tag), err)
	}
	if rd.Len() != 0 {
		return fmt.Errorf("%w: %s: %d trailing bytes", ErrFormat, container.FourCCString(tag), rd.Len())
	}
	return nil
}

// Plane chunks start with the visible and stored dimensions.
const planeHeadSize = 16

func planeHead(pd PlaneData) []byte {
	b := make([]byte, planeHeadSize)
	for i, v := range [4]int{pd.Width, pd.Height, pd.Cols, pd.Rows} {
		container.PutLE32(b[4*i:], uint32(v))
	}
	return b
}

func readPlanes(form *container.Form, tag uint32) ([3]PlaneData, error) {
	var out [3]PlaneData
	payloads := form.Find(tag)
	if len(payloads) != len(out) {
		return out, fmt.Errorf("%w: %d %s chunks, want 3", ErrFormat, len(payloads), container.FourCCString(tag))
	}
	for i, payload := range payloads {
		raw, err := decompress(payload)
		if err != nil {
			return out, fmt.Errorf("%w: %s: %w", ErrFormat, container.FourCCString(tag), err)
		}
		if len(raw) < planeHeadSize {
			return out, fmt.Errorf("%w: %s: short plane header", ErrFormat, container.FourCCString(tag))
		}
		var ph [4]uint32
		for j := range ph {
			ph[j] = container.ReadLE32(raw[4*j:])
		}
		n := uint64(ph[2]) * uint64(ph[3])
		if uint64(len(raw)-planeHeadSize) != 2*n {
			return out, fmt.Errorf("%w: %s: plane %d is %dx%d with %d bytes", ErrFormat, container.FourCCString(tag), i, ph[2], ph[3], len(raw)-planeHeadSize)
		}
		pd := PlaneData{
			Width:   int(ph[0]),
			Height:  int(ph[1]),
			Cols:    int(ph[2]),
			Rows:    int(ph[3]),
			Samples: make([]uint16, n),
		}
		if pd.Cols < pd.Width || pd.Rows < pd.Height {
			return out, fmt.Errorf("%w: %s: plane %d stores less than its visible area", ErrFormat, container.FourCCString(tag), i)
		}
		if err := decode(bytes.NewReader(raw[planeHeadSize:]), pd.Samples); err != nil {
			return out, fmt.Errorf("%w: %s: %w", ErrFormat, container.FourCCString(tag), err)
		}
		out[i] = pd
	}
	return out, nil
}
