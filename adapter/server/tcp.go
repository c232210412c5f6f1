package server

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/panjf2000/gnet/v2"

	"github.com/forest33/arena/business/entity"
	"github.com/forest33/arena/pkg/codec"
	"github.com/forest33/arena/pkg/logger"
	"github.com/forest33/arena/pkg/structs"
)

// frameHeaderSize every TCP frame is prefixed with its length, big endian
const frameHeaderSize = 4

// TCP length-prefixed client transport for non-browser clients
type TCP struct {
	handlers
	log    *logger.Logger
	cfg    *Config
	codec  codec.Codec
	engine gnet.Engine
	booted chan struct{}
	wg     sync.WaitGroup
}

type tcpConn struct {
	id   string
	peer *peer
}

func NewTCP(log *logger.Logger, cfg *Config) (*TCP, error) {
	c, err := codec.New(cfg.Codec)
	if err != nil {
		return nil, err
	}

	return &TCP{
		log:    log.Layer("tcp"),
		cfg:    cfg,
		codec:  c,
		booted: make(chan struct{}),
	}, nil
}

// Run starts the event loops in the background
func (s *TCP) Run(host string, port int) error {
	if err := s.ready(); err != nil {
		return err
	}

	addr := fmt.Sprintf("tcp://%s:%d", structs.If(host != "", host, "0.0.0.0"), port)

	go func() {
		err := gnet.Run(s, addr,
			gnet.WithMulticore(true),
			gnet.WithReuseAddr(true),
			gnet.WithReusePort(true),
			gnet.WithReadBufferCap(s.cfg.ReadBufferSize),
			gnet.WithWriteBufferCap(s.cfg.WriteBufferSize))
		if err != nil {
			s.log.Fatalf("failed to start server: %v", err)
		}
	}()

	s.log.Info().Str("addr", addr).Msg("tcp server started")

	return nil
}

func (s *TCP) OnBoot(eng gnet.Engine) (action gnet.Action) {
	s.engine = eng
	close(s.booted)
	return gnet.None
}

func (s *TCP) OnShutdown(gnet.Engine) {
	s.log.Info().Msg("tcp server stopped")
}

func (s *TCP) OnOpen(c gnet.Conn) (out []byte, action gnet.Action) {
	p := newPeer(s.log, s.codec, c.RemoteAddr().String(), s.cfg.SendQueueSize, s.cfg.Tracing, nil)
	tc := &tcpConn{peer: p}
	c.SetContext(tc)

	tc.id = s.connect(p)

	s.log.Info().
		Str("addr", p.addr).
		Str("connection_id", tc.id).
		Msg("connection accepted")

	s.wg.Add(1)
	go s.writer(c, p)

	return nil, gnet.None
}

func (s *TCP) OnClose(c gnet.Conn, err error) (action gnet.Action) {
	tc, ok := c.Context().(*tcpConn)
	if !ok {
		return gnet.None
	}
	c.SetContext(nil)

	_ = tc.peer.Close()
	s.disconnect(tc.id, err)

	return gnet.None
}

func (s *TCP) OnTraffic(c gnet.Conn) (action gnet.Action) {
	tc, ok := c.Context().(*tcpConn)
	if !ok {
		return gnet.Close
	}

	for {
		header, err := c.Peek(frameHeaderSize)
		if errors.Is(err, io.ErrShortBuffer) {
			break
		} else if err != nil {
			if entity.IsErrorInterruptingNetwork(err) {
				return gnet.Close
			}
			s.log.Error().Err(err).Msg("failed to read frame header")
			break
		} else if len(header) < frameHeaderSize {
			break
		}

		size := int(binary.BigEndian.Uint32(header))
		if size > s.cfg.MaxMessageSize {
			s.log.Warn().
				Err(entity.ErrMessageTooLarge).
				Str("connection_id", tc.id).
				Int("size", size).
				Msg("closing connection")
			return gnet.Close
		}

		frameSize := frameHeaderSize + size
		if c.InboundBuffered() < frameSize {
			break
		}

		buf, err := c.Peek(frameSize)
		if errors.Is(err, io.ErrShortBuffer) {
			break
		} else if err != nil {
			s.log.Error().Err(err).Msg("failed to read frame")
			break
		}

		data := make([]byte, size)
		copy(data, buf[frameHeaderSize:])

		if _, err := c.Discard(frameSize); err != nil {
			s.log.Error().Err(err).Msg("failed to discard buffer")
		}

		s.dispatch(s.log, tc.peer, tc.id, data)
	}

	return gnet.None
}

func (s *TCP) OnTick() (delay time.Duration, action gnet.Action) {
	return
}

// writer moves queued frames of one connection to its event loop
func (s *TCP) writer(c gnet.Conn, p *peer) {
	defer s.wg.Done()

	write := func(data []byte) error {
		frame := make([]byte, frameHeaderSize+len(data))
		binary.BigEndian.PutUint32(frame, uint32(len(data)))
		copy(frame[frameHeaderSize:], data)
		return c.AsyncWrite(frame, nil)
	}

	for {
		select {
		case data := <-p.queue:
			if err := write(data); err != nil {
				s.log.Debug().Err(err).Str("addr", p.addr).Msg("failed to write frame")
				_ = p.Close()
			}
		case <-p.closed:
			p.drain(write)
			_ = c.CloseWithCallback(nil)
			return
		}
	}
}

// Shutdown stops the event loops, OnClose reports every open connection
func (s *TCP) Shutdown(ctx context.Context) error {
	select {
	case <-s.booted:
	default:
		return nil
	}

	if err := s.engine.Stop(ctx); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ entity.NetworkServer = (*TCP)(nil)
