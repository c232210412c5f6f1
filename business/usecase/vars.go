package usecase

import (
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"

	"github.com/forest33/arena/business/entity"
)

type configHandler interface {
	GetPath() string
	AddObserver(func(interface{})) error
}

type validatable interface {
	Validate() error
}

// decodeRequest builds the typed request of an inbound message from its frame fields.
// Messages without a payload decode to nil.
func decodeRequest(msg *entity.Message) (interface{}, error) {
	if !msg.Type.IsInbound() {
		return nil, entity.ErrUnknownCommand
	}

	m, ok := entity.MessageTypePayload[msg.Type]
	if !ok {
		return nil, nil
	}
	req := m()

	if msg.Payload != nil {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           req,
		})
		if err != nil {
			return nil, errors.Wrap(entity.ErrInternalError, err.Error())
		}
		if err := dec.Decode(msg.Payload); err != nil {
			return nil, errors.Wrap(entity.ErrWrongMessagePayload, err.Error())
		}
	}

	if v, ok := req.(validatable); ok {
		if err := v.Validate(); err != nil {
			return nil, errors.Wrap(entity.ErrValidation, err.Error())
		}
	}

	return req, nil
}
