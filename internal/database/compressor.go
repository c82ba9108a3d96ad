package database

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Compressor is a reusable zstd encoder/decoder pair. Safe for concurrent use.
type Compressor struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewCompressor() (*Compressor, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	return &Compressor{encoder: encoder, decoder: decoder}, nil
}

func (c *Compressor) Compress(val []byte) []byte {
	return c.encoder.EncodeAll(val, make([]byte, 0, len(val)/2))
}

func (c *Compressor) Decompress(val []byte) ([]byte, error) {
	return c.decoder.DecodeAll(val, nil)
}
