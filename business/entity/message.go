package entity

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	MessageTypeJoinQueue     MessageType = "join_queue"
	MessageTypeJoinAI        MessageType = "join_ai"
	MessageTypeLeaveQueue    MessageType = "leave_queue"
	MessageTypeCreatePrivate MessageType = "create_private"
	MessageTypeInput         MessageType = "input"
	MessageTypeForfeit       MessageType = "forfeit"

	MessageTypeWelcome    MessageType = "welcome"
	MessageTypeMatchStart MessageType = "match_start"
	MessageTypeState      MessageType = "state"
	MessageTypeMatchEnd   MessageType = "match_end"
	MessageTypeInputAck   MessageType = "input_ack"
	MessageTypeError      MessageType = "error"

	MessageTypeKey = "type"
)

var (
	// MessageTypePayload request constructors of inbound types carrying a payload
	MessageTypePayload = map[MessageType]func() interface{}{
		MessageTypeJoinQueue:     func() interface{} { return &JoinQueueRequest{} },
		MessageTypeCreatePrivate: func() interface{} { return &CreatePrivateRequest{} },
		MessageTypeInput:         func() interface{} { return &InputRequest{} },
		MessageTypeForfeit:       func() interface{} { return &ForfeitRequest{} },
	}
)

// Message a frame exchanged with a client. Inbound payloads are the decoded
// frame fields, outbound payloads are one of the response structs.
type Message struct {
	Type    MessageType
	Payload interface{}
}

type MessageType string

func (m MessageType) String() string {
	return string(m)
}

func (m MessageType) IsInbound() bool {
	switch m {
	case MessageTypeJoinQueue, MessageTypeJoinAI, MessageTypeLeaveQueue, MessageTypeCreatePrivate, MessageTypeInput, MessageTypeForfeit:
		return true
	}
	return false
}

type JoinQueueRequest struct {
	Address   string   `json:"address"`
	Signature string   `json:"signature"`
	Name      string   `json:"name"`
	Equipped  []string `json:"equipped"`
	StakeID   string   `json:"stakeId"`
}

type CreatePrivateRequest struct {
	OpponentID string `json:"opponentId"`
}

type InputRequest struct {
	MatchID string `json:"matchId"`
	Tick    uint64 `json:"tick"`
	Inputs  Input  `json:"inputs"`
}

type ForfeitRequest struct {
	MatchID string `json:"matchId"`
}

type WelcomeResponse struct {
	ID string `json:"id"`
}

type MatchStartResponse struct {
	MatchID  string         `json:"matchId"`
	PlayerID string         `json:"playerId"`
	Players  []*PlayerInfo  `json:"players"`
	Arena    Arena          `json:"arena"`
	State    *StateSnapshot `json:"state"`
}

type StateResponse struct {
	MatchID string         `json:"matchId"`
	Tick    uint64         `json:"tick"`
	State   *StateSnapshot `json:"state"`
}

type MatchEndResponse struct {
	MatchID string         `json:"matchId"`
	Winner  string         `json:"winner"`
	Reason  EndReason      `json:"reason"`
	Rewards map[string]int `json:"rewards"`
}

type InputAckResponse struct {
	Tick uint64 `json:"tick"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func (r *JoinQueueRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Length(0, 32)),
		validation.Field(&r.Address, validation.Length(0, 128)),
		validation.Field(&r.StakeID, validation.Length(0, 128)),
		validation.Field(&r.Equipped, validation.Length(0, 16), validation.Each(validation.Required, validation.Length(1, 64))),
	)
}

func (r *CreatePrivateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.OpponentID, validation.Required, is.UUIDv4),
	)
}

func (r *InputRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.MatchID, validation.Required),
	)
}

func (r *ForfeitRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.MatchID, validation.Required),
	)
}

func (r *JoinQueueRequest) Profile() *Profile {
	if r.Address == "" && r.Name == "" && len(r.Equipped) == 0 {
		return nil
	}
	return &Profile{
		Address:   r.Address,
		Name:      r.Name,
		Signature: r.Signature,
		Equipped:  r.Equipped,
	}
}

func NewErrorMessage(text string) *Message {
	return &Message{Type: MessageTypeError, Payload: &ErrorResponse{Message: text}}
}
