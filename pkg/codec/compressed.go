package codec

import (
	"github.com/forest33/arena/business/entity"
	"github.com/forest33/arena/pkg/compression"
)

// Compressed wraps a codec into frames prefixed with one byte naming the
// compression applied to the rest of the frame. Frames that do not shrink
// are sent with CompressionNone.
type Compressed struct {
	codec      Codec
	compressor *compression.Compressor
	typ        entity.CompressionType
	level      entity.CompressionLevel
}

func NewCompressed(c Codec, compressor *compression.Compressor, t entity.CompressionType, level entity.CompressionLevel) *Compressed {
	return &Compressed{
		codec:      c,
		compressor: compressor,
		typ:        t,
		level:      level,
	}
}

func (c *Compressed) Marshal(m *entity.Message) ([]byte, error) {
	data, err := c.codec.Marshal(m)
	if err != nil {
		return nil, err
	}

	out, ok := c.compressor.Compress(data, c.typ, c.level)
	if !ok {
		return append([]byte{byte(entity.CompressionNone)}, data...), nil
	}

	return append([]byte{byte(c.typ)}, out...), nil
}

func (c *Compressed) Unmarshal(data []byte) (*entity.Message, error) {
	if len(data) < 2 {
		return nil, entity.ErrEmptyMessage
	}

	payload, err := c.compressor.Decompress(data[1:], entity.CompressionType(data[0]))
	if err != nil {
		return nil, entity.ErrWrongMessagePayload
	}

	return c.codec.Unmarshal(payload)
}

func (*Compressed) IsBinary() bool {
	return true
}

func (c *Compressed) Name() string {
	return c.codec.Name() + "+" + c.typ.String()
}
