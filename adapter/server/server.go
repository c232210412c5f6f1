// Package server client transports: WebSocket and length-prefixed TCP
package server

import (
	"sync"
	"time"

	"github.com/forest33/arena/business/entity"
	"github.com/forest33/arena/pkg/codec"
	"github.com/forest33/arena/pkg/logger"
)

type Config struct {
	Codec           *codec.Config
	ReadBufferSize  int
	WriteBufferSize int
	MaxMessageSize  int
	SendQueueSize   int
	WriteTimeout    time.Duration
	PingInterval    time.Duration
	CheckOrigin     bool
	Tracing         bool
}

// GetConfig builds the transport settings from the server configuration
func GetConfig(cfg *entity.ServerConfig) *Config {
	c := &Config{
		Codec: &codec.Config{
			Codec:            cfg.Network.Codec,
			Compression:      cfg.Network.Compression,
			CompressionLevel: cfg.Network.CompressionLevel,
			MaxFrameSize:     cfg.Network.MaxMessageSize,
		},
		ReadBufferSize:  cfg.Network.ReadBufferSize,
		WriteBufferSize: cfg.Network.WriteBufferSize,
		MaxMessageSize:  cfg.Network.MaxMessageSize,
		SendQueueSize:   cfg.Network.SendQueueSize,
		WriteTimeout:    time.Duration(cfg.Network.WriteTimeout) * time.Second,
		PingInterval:    time.Duration(cfg.Network.PingInterval) * time.Second,
		CheckOrigin:     cfg.Network.CheckOrigin != nil && *cfg.Network.CheckOrigin,
	}
	if cfg.Tracing != nil {
		c.Tracing = cfg.Tracing.Network
	}
	return c
}

type handlers struct {
	connect    entity.ConnectHandler
	receiver   entity.ReceiverHandler
	disconnect entity.DisconnectHandler
}

func (h *handlers) SetConnectHandler(f entity.ConnectHandler) {
	h.connect = f
}

func (h *handlers) SetReceiverHandler(f entity.ReceiverHandler) {
	h.receiver = f
}

func (h *handlers) SetDisconnectHandler(f entity.DisconnectHandler) {
	h.disconnect = f
}

func (h *handlers) ready() error {
	if h.connect == nil || h.receiver == nil || h.disconnect == nil {
		return entity.ErrReceiverHandlerNotSet
	}
	return nil
}

// peer outbound half of a client connection. Send encodes on the caller's
// goroutine and hands the frame to the transport writer through a bounded
// queue, Close only signals and never reports the disconnect itself.
type peer struct {
	log      *logger.Logger
	codec    codec.Codec
	addr     string
	queue    chan []byte
	closed   chan struct{}
	once     sync.Once
	close    func() error
	closeErr error
	tracing  bool
}

func newPeer(log *logger.Logger, c codec.Codec, addr string, queueSize int, tracing bool, closeFn func() error) *peer {
	return &peer{
		log:     log,
		codec:   c,
		addr:    addr,
		queue:   make(chan []byte, queueSize),
		closed:  make(chan struct{}),
		close:   closeFn,
		tracing: tracing,
	}
}

func (p *peer) Send(msg *entity.Message) error {
	select {
	case <-p.closed:
		return entity.ErrConnectionClosed
	default:
	}

	data, err := p.codec.Marshal(msg)
	if err != nil {
		return err
	}

	select {
	case p.queue <- data:
		if p.tracing {
			p.log.Debug().
				Str("addr", p.addr).
				Str("type", msg.Type.String()).
				Int("size", len(data)).
				Msg("message queued")
		}
		return nil
	default:
		_ = p.Close()
		return entity.ErrSendQueueFull
	}
}

func (p *peer) Close() error {
	p.once.Do(func() {
		close(p.closed)
		if p.close != nil {
			p.closeErr = p.close()
		}
	})
	return p.closeErr
}

// drain writes the frames queued before the peer was closed
func (p *peer) drain(write func(data []byte) error) {
	for {
		select {
		case data := <-p.queue:
			if err := write(data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (p *peer) RemoteAddr() string {
	return p.addr
}

func (p *peer) isClosed() bool {
	select {
	case <-p.closed:
		return true
	default:
		return false
	}
}

// dispatch decodes one inbound frame. Frames that cannot be decoded are
// answered on the spot, the connection stays open.
func (h *handlers) dispatch(log *logger.Logger, p *peer, connID string, data []byte) {
	msg, err := p.codec.Unmarshal(data)
	if err != nil {
		log.Debug().Err(err).
			Str("connection_id", connID).
			Int("size", len(data)).
			Msg("failed to decode frame")
		if text, ok := entity.GetMessageError(err); ok {
			_ = p.Send(entity.NewErrorMessage(text))
		}
		return
	}

	if p.tracing {
		log.Debug().
			Str("connection_id", connID).
			Str("type", msg.Type.String()).
			Int("size", len(data)).
			Msg("message received")
	}

	h.receiver(connID, msg)
}
