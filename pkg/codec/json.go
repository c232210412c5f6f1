package codec

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/forest33/arena/business/entity"
)

type JSON struct{}

func NewJSON() *JSON {
	return &JSON{}
}

func (*JSON) Marshal(m *entity.Message) ([]byte, error) {
	fields, err := messageToFields(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fields)
}

func (*JSON) Unmarshal(data []byte) (*entity.Message, error) {
	if len(data) == 0 {
		return nil, entity.ErrEmptyMessage
	}

	fields := make(map[string]interface{})
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, errors.Wrap(entity.ErrWrongMessagePayload, err.Error())
	}

	return fieldsToMessage(fields)
}

func (*JSON) IsBinary() bool {
	return false
}

func (*JSON) Name() string {
	return entity.CodecNameJSON
}
