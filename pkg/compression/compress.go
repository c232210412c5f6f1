// Package compression block compressors for wire frames
package compression

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/rasky/go-lzo"

	"github.com/forest33/arena/business/entity"
)

type Compressor struct {
	cfg         *Config
	zstdEncoder map[entity.CompressionLevel]*zstd.Encoder
	zstdDecoder *zstd.Decoder
}

type Config struct {
	MaxFrameSize int
}

var (
	once     sync.Once
	instance *Compressor
)

// Shared returns a process wide compressor, zstd encoders are expensive to create
func Shared(cfg *Config) *Compressor {
	once.Do(func() {
		instance = New(cfg)
	})
	return instance
}

func New(cfg *Config) *Compressor {
	zstdEncoder := make(map[entity.CompressionLevel]*zstd.Encoder, 4)
	zstdDecoder, _ := zstd.NewReader(nil, zstd.WithDecoderMaxMemory(uint64(cfg.MaxFrameSize)*4))

	for l := zstd.SpeedFastest; l <= zstd.SpeedBestCompression; l++ {
		enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(l))
		zstdEncoder[entity.CompressionLevel(l)] = enc
	}

	return &Compressor{
		cfg:         cfg,
		zstdEncoder: zstdEncoder,
		zstdDecoder: zstdDecoder,
	}
}

// Compress returns the compressed data and true, or in and false when
// compression does not make the frame smaller
func (c *Compressor) Compress(in []byte, t entity.CompressionType, level entity.CompressionLevel) ([]byte, bool) {
	switch t {
	case entity.CompressionLZ4:
		return c.CompressLZ4(in)
	case entity.CompressionLZO:
		return c.CompressLZO(in)
	case entity.CompressionZSTD:
		return c.CompressZSTD(in, level)
	}
	return in, false
}

func (c *Compressor) Decompress(in []byte, t entity.CompressionType) ([]byte, error) {
	switch t {
	case entity.CompressionLZ4:
		return c.DecompressLZ4(in)
	case entity.CompressionLZO:
		return c.DecompressLZO(in)
	case entity.CompressionZSTD:
		return c.DecompressZSTD(in)
	case entity.CompressionNone:
		return in, nil
	}
	return nil, entity.ErrUnknownCompression
}

func (c *Compressor) CompressLZ4(in []byte) ([]byte, bool) {
	buf := make([]byte, lz4.CompressBlockBound(len(in)))

	n, err := lz4.CompressBlock(in, buf, nil)
	if err != nil || n == 0 || n >= len(in) {
		return in, false
	}

	return buf[:n], true
}

func (c *Compressor) DecompressLZ4(in []byte) ([]byte, error) {
	out := make([]byte, c.cfg.MaxFrameSize)

	n, err := lz4.UncompressBlock(in, out)
	if err != nil {
		return nil, err
	}

	return out[:n], nil
}

func (c *Compressor) CompressLZO(in []byte) ([]byte, bool) {
	out := lzo.Compress1X(in)
	if len(out) >= len(in) {
		return in, false
	}
	return out, true
}

func (c *Compressor) DecompressLZO(in []byte) ([]byte, error) {
	return lzo.Decompress1X(bytes.NewBuffer(in), len(in), c.cfg.MaxFrameSize)
}

func (c *Compressor) CompressZSTD(in []byte, level entity.CompressionLevel) ([]byte, bool) {
	if level < 1 || level > 4 {
		level = 2
	}
	out := c.zstdEncoder[level].EncodeAll(in, make([]byte, 0, len(in)))
	if len(out) >= len(in) {
		return in, false
	}
	return out, true
}

func (c *Compressor) DecompressZSTD(in []byte) ([]byte, error) {
	return c.zstdDecoder.DecodeAll(in, make([]byte, 0, c.cfg.MaxFrameSize))
}
