// Package codec frame encodings of the client protocol. Every frame is a flat
// object whose "type" key names the message, the other keys are its fields.
package codec

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/forest33/arena/business/entity"
	"github.com/forest33/arena/pkg/compression"
)

type Decoder interface {
	Unmarshal(data []byte) (*entity.Message, error)
}

type Encoder interface {
	Marshal(m *entity.Message) ([]byte, error)
}

type Codec interface {
	Decoder
	Encoder
	IsBinary() bool
	Name() string
}

type Config struct {
	Codec            string
	Compression      string
	CompressionLevel int
	MaxFrameSize     int
}

// New creates the codec described by cfg
func New(cfg *Config) (Codec, error) {
	var c Codec
	switch cfg.Codec {
	case entity.CodecNameJSON, "":
		c = NewJSON()
	case entity.CodecNameMsgpack:
		c = NewMsgpack()
	default:
		return nil, errors.Wrap(entity.ErrUnknownCodec, cfg.Codec)
	}

	ct, err := entity.GetCompressionType(cfg.Compression)
	if err != nil {
		return nil, errors.Wrap(err, cfg.Compression)
	}
	if ct == entity.CompressionNone {
		return c, nil
	}

	return NewCompressed(c, compression.Shared(&compression.Config{MaxFrameSize: cfg.MaxFrameSize}), ct, entity.CompressionLevel(cfg.CompressionLevel)), nil
}

// messageToFields flattens the payload struct into the frame object
func messageToFields(m *entity.Message) (map[string]interface{}, error) {
	fields := make(map[string]interface{}, 8)

	if m.Payload != nil {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName: "json",
			Result:  &fields,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(m.Payload); err != nil {
			return nil, errors.Wrapf(err, "failed to flatten %s payload", m.Type)
		}
	}

	fields[entity.MessageTypeKey] = m.Type.String()

	return fields, nil
}

func fieldsToMessage(fields map[string]interface{}) (*entity.Message, error) {
	if len(fields) == 0 {
		return nil, entity.ErrEmptyMessage
	}

	t, ok := fields[entity.MessageTypeKey].(string)
	if !ok || t == "" {
		return nil, entity.ErrWrongMessagePayload
	}
	delete(fields, entity.MessageTypeKey)

	return &entity.Message{
		Type:    entity.MessageType(t),
		Payload: fields,
	}, nil
}
