// Package deblock implements the in-loop deblocking stage of a block-based
// video decoder in pure Go.
//
// After a frame's blocks are reconstructed, the decoder knows for every 4×4
// block its filter levels and, for every block edge, how strong a filter the
// transform sizes on either side allow. This package takes those inputs and
// smooths the edges, one superblock row at a time, in place on the frame's
// planes.
//
// The package supports:
//   - 4:2:0, 4:2:2 and 4:4:4 chroma layouts
//   - 64×64 and 128×128 superblocks
//   - 8-bit samples in uint8 planes, 10- and 12-bit samples in uint16 planes
//   - Per-frame sharpness (0..7)
//   - Strength caps at tile boundaries
//   - Row-pipelined operation alongside reconstruction
//   - Capture of a frame's inputs and output for bit-exact replay
//
// Basic usage:
//
//	f, err := deblock.New(hdr, planes, nil)
//	// fill f.Levels(), f.Masks() and f.Overrides() while reconstructing
//	for sby := 0; sby < f.SBRows(); sby++ {
//		f.FilterRow(sby)
//	}
//	f.Release()
package deblock
