package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/forest33/arena/business/entity"
	"github.com/forest33/arena/pkg/codec"
	"github.com/forest33/arena/pkg/logger"
)

const (
	queryCodec       = "codec"
	queryCompression = "compression"

	closeGracePeriod = time.Second
)

// WebSocket client transport mounted on the HTTP server
type WebSocket struct {
	handlers
	log      *logger.Logger
	cfg      *Config
	upgrader websocket.Upgrader
	peers    map[*peer]struct{}
	mux      sync.Mutex
	wg       sync.WaitGroup
	stopped  bool
}

func NewWebSocket(log *logger.Logger, cfg *Config) (*WebSocket, error) {
	if _, err := codec.New(cfg.Codec); err != nil {
		return nil, err
	}

	ws := &WebSocket{
		log:   log.Layer("ws"),
		cfg:   cfg,
		peers: make(map[*peer]struct{}),
	}

	ws.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.ReadBufferSize,
		WriteBufferSize: cfg.WriteBufferSize,
	}
	if !cfg.CheckOrigin {
		ws.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}

	return ws, nil
}

// ServeHTTP upgrades the request. The frame encoding may be chosen per
// connection with the codec and compression query parameters.
func (ws *WebSocket) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := ws.ready(); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	c, err := ws.codecFor(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.log.Debug().Err(err).Str("addr", r.RemoteAddr).Msg("failed to upgrade connection")
		return
	}
	conn.SetReadLimit(int64(ws.cfg.MaxMessageSize))

	p := newPeer(ws.log, c, conn.RemoteAddr().String(), ws.cfg.SendQueueSize, ws.cfg.Tracing, nil)

	ws.mux.Lock()
	if ws.stopped {
		ws.mux.Unlock()
		_ = conn.Close()
		return
	}
	ws.peers[p] = struct{}{}
	ws.wg.Add(2)
	ws.mux.Unlock()

	connID := ws.connect(p)

	ws.log.Info().
		Str("addr", p.addr).
		Str("connection_id", connID).
		Str("codec", c.Name()).
		Msg("connection accepted")

	go ws.writePump(conn, p)
	go ws.readPump(conn, p, connID)
}

func (ws *WebSocket) codecFor(r *http.Request) (codec.Codec, error) {
	cfg := *ws.cfg.Codec
	q := r.URL.Query()
	if v := q.Get(queryCodec); v != "" {
		cfg.Codec = v
	}
	if v := q.Get(queryCompression); v != "" {
		cfg.Compression = v
	}
	return codec.New(&cfg)
}

func (ws *WebSocket) readPump(conn *websocket.Conn, p *peer, connID string) {
	var err error

	defer func() {
		ws.mux.Lock()
		delete(ws.peers, p)
		ws.mux.Unlock()

		_ = p.Close()
		ws.disconnect(connID, err)
		ws.wg.Done()
	}()

	readTimeout := ws.readTimeout()
	if readTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(readTimeout))
		})
	}

	for {
		var data []byte
		_, data, err = conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				err = nil
			} else if websocket.IsUnexpectedCloseError(err) {
				ws.log.Debug().Err(err).Str("connection_id", connID).Msg("unexpected close")
			}
			return
		}
		if readTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
		}

		ws.dispatch(ws.log, p, connID, data)
	}
}

func (ws *WebSocket) writePump(conn *websocket.Conn, p *peer) {
	var ping <-chan time.Time
	if ws.cfg.PingInterval > 0 {
		ticker := time.NewTicker(ws.cfg.PingInterval)
		defer ticker.Stop()
		ping = ticker.C
	}

	frameType := websocket.TextMessage
	if p.codec.IsBinary() {
		frameType = websocket.BinaryMessage
	}

	defer func() {
		_ = conn.Close()
		ws.wg.Done()
	}()

	for {
		select {
		case data := <-p.queue:
			_ = conn.SetWriteDeadline(ws.writeDeadline())
			if err := conn.WriteMessage(frameType, data); err != nil {
				ws.log.Debug().Err(err).Str("addr", p.addr).Msg("failed to write frame")
				_ = p.Close()
				return
			}
		case <-ping:
			_ = conn.SetWriteDeadline(ws.writeDeadline())
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = p.Close()
				return
			}
		case <-p.closed:
			p.drain(func(data []byte) error {
				_ = conn.SetWriteDeadline(time.Now().Add(closeGracePeriod))
				return conn.WriteMessage(frameType, data)
			})
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(closeGracePeriod))
			return
		}
	}
}

func (ws *WebSocket) writeDeadline() time.Time {
	if ws.cfg.WriteTimeout <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ws.cfg.WriteTimeout)
}

func (ws *WebSocket) readTimeout() time.Duration {
	if ws.cfg.PingInterval <= 0 {
		return 0
	}
	return ws.cfg.PingInterval * 2
}

// Shutdown closes every connection and waits for their pumps to exit
func (ws *WebSocket) Shutdown(ctx context.Context) error {
	ws.mux.Lock()
	ws.stopped = true
	peers := make([]*peer, 0, len(ws.peers))
	for p := range ws.peers {
		peers = append(peers, p)
	}
	ws.mux.Unlock()

	for _, p := range peers {
		_ = p.Close()
	}

	done := make(chan struct{})
	go func() {
		ws.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ entity.Transport = (*WebSocket)(nil)
