package entity

import (
	"context"
)

const (
	CompressionNone CompressionType = iota
	CompressionLZ4
	CompressionLZO
	CompressionZSTD
)

type CompressionType uint8
type CompressionLevel uint8

// Peer outbound side of a human connection. Send must not block.
type Peer interface {
	Send(msg *Message) error
	Close() error
	RemoteAddr() string
}

type (
	ConnectHandler    func(p Peer) string
	ReceiverHandler   func(connID string, msg *Message)
	DisconnectHandler func(connID string, err error)
)

// Transport delivers client connections and their messages to the engine
type Transport interface {
	SetConnectHandler(f ConnectHandler)
	SetReceiverHandler(f ReceiverHandler)
	SetDisconnectHandler(f DisconnectHandler)
	Shutdown(ctx context.Context) error
}

// NetworkServer a transport owning its listener
type NetworkServer interface {
	Transport
	Run(host string, port int) error
}

var compressionTypes = map[string]CompressionType{
	CompressionNameNone: CompressionNone,
	CompressionNameLZ4:  CompressionLZ4,
	CompressionNameLZO:  CompressionLZO,
	CompressionNameZSTD: CompressionZSTD,
}

func GetCompressionType(name string) (CompressionType, error) {
	if name == "" {
		return CompressionNone, nil
	}
	if t, ok := compressionTypes[name]; ok {
		return t, nil
	}
	return CompressionNone, ErrUnknownCompression
}

func (t CompressionType) String() string {
	for name, v := range compressionTypes {
		if v == t {
			return name
		}
	}
	return "unknown"
}
