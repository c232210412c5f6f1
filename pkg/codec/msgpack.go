package codec

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/forest33/arena/business/entity"
)

// Msgpack binary encoding sharing field names with JSON
type Msgpack struct{}

func NewMsgpack() *Msgpack {
	return &Msgpack{}
}

func (*Msgpack) Marshal(m *entity.Message) ([]byte, error) {
	fields, err := messageToFields(m)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	enc := msgpack.NewEncoder(buf)
	enc.SetCustomStructTag("json")
	enc.SetSortMapKeys(true)
	if err := enc.Encode(fields); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (*Msgpack) Unmarshal(data []byte) (*entity.Message, error) {
	if len(data) == 0 {
		return nil, entity.ErrEmptyMessage
	}

	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")

	fields, err := dec.DecodeMap()
	if err != nil {
		return nil, errors.Wrap(entity.ErrWrongMessagePayload, err.Error())
	}

	return fieldsToMessage(fields)
}

func (*Msgpack) IsBinary() bool {
	return true
}

func (*Msgpack) Name() string {
	return entity.CodecNameMsgpack
}
