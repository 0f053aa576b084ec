package capture

import (
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Snapshot chunks are compressed one at a time, so encoders and decoders run
// single-threaded and are pooled across chunks.

func mustNewEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
		zstd.WithDecoderMaxMemory(maxChunkBytes),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

var encPool = sync.Pool{
	New: func() any {
		return mustNewEncoder()
	},
}

var decPool = sync.Pool{
	New: func() any {
		return mustNewDecoder()
	},
}

func compress(data []byte) []byte {
	if len(data) == 0 {
		return nil
	}
	enc := encPool.Get().(*zstd.Encoder)
	out := enc.EncodeAll(data, nil)
	encPool.Put(enc)
	return out
}

func decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dec := decPool.Get().(*zstd.Decoder)
	out, err := dec.DecodeAll(data, nil)
	decPool.Put(dec)
	return out, err
}
