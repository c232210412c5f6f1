package entity

import (
	"errors"
	"io"
	"net"
)

var (
	ErrInternalError         = errors.New("internal error")
	ErrConnectionNotExists   = errors.New("connection not exists")
	ErrSessionNotExists      = errors.New("session not exists")
	ErrNotParticipant        = errors.New("connection is not a participant of the session")
	ErrNotIdle               = errors.New("connection is not idle")
	ErrOpponentNotExists     = errors.New("opponent not exists")
	ErrOpponentNotIdle       = errors.New("opponent is not available")
	ErrSelfMatch             = errors.New("cannot create a match against yourself")
	ErrUnknownCommand        = errors.New("unknown command")
	ErrWrongMessagePayload   = errors.New("wrong message payload")
	ErrEmptyMessage          = errors.New("empty message")
	ErrMessageTooLarge       = errors.New("message too large")
	ErrUnknownCodec          = errors.New("unknown codec")
	ErrUnknownCompression    = errors.New("unknown compression")
	ErrSendQueueFull         = errors.New("send queue is full")
	ErrConnectionClosed      = errors.New("connection closed")
	ErrIdleTimeoutExceeded   = errors.New("idle timeout exceeded")
	ErrLedgerUnavailable     = errors.New("ledger is unavailable")
	ErrRecorderQueueFull     = errors.New("recorder queue is full")
	ErrReceiverHandlerNotSet = errors.New("receiver handler is not set")
	ErrValidation            = errors.New("validation error")
)

// errors answered with an error message, everything else is logged and dropped
var protocolErrorMessages = map[error]string{
	ErrUnknownCommand:      "unknown message type",
	ErrWrongMessagePayload: "malformed message",
	ErrEmptyMessage:        "malformed message",
	ErrMessageTooLarge:     "message too large",
	ErrValidation:          "invalid message",
	ErrNotIdle:             "already in a match",
	ErrOpponentNotExists:   "opponent not found",
	ErrOpponentNotIdle:     "opponent is not available",
	ErrSelfMatch:           "cannot play against yourself",
	ErrInternalError:       "internal error",
}

// GetMessageError returns the client-visible text of a protocol error
func GetMessageError(err error) (string, bool) {
	for e, msg := range protocolErrorMessages {
		if errors.Is(err, e) {
			return msg, true
		}
	}
	return "", false
}

// IsReferentialError reports errors caused by input addressed to a missing or foreign match
func IsReferentialError(err error) bool {
	return errors.Is(err, ErrSessionNotExists) || errors.Is(err, ErrNotParticipant) || errors.Is(err, ErrConnectionNotExists)
}

func IsErrorInterruptingNetwork(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Timeout() || errors.Is(opErr, net.ErrClosed)
	}
	return errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) || errors.Is(err, ErrConnectionClosed)
}
