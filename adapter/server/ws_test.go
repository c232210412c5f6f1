package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/forest33/arena/business/entity"
	"github.com/forest33/arena/pkg/codec"
	"github.com/forest33/arena/pkg/logger"
)

var zlog = logger.New(logger.Config{Level: "disabled"})

type recorder struct {
	peers       chan entity.Peer
	messages    chan *entity.Message
	disconnects chan string
}

func newRecorder() *recorder {
	return &recorder{
		peers:       make(chan entity.Peer, 4),
		messages:    make(chan *entity.Message, 16),
		disconnects: make(chan string, 4),
	}
}

func (r *recorder) bind(t entity.Transport) {
	t.SetConnectHandler(func(p entity.Peer) string {
		r.peers <- p
		return "c1"
	})
	t.SetReceiverHandler(func(connID string, msg *entity.Message) {
		r.messages <- msg
	})
	t.SetDisconnectHandler(func(connID string, err error) {
		r.disconnects <- connID
	})
}

func getTestConfig() *Config {
	return &Config{
		Codec:          &codec.Config{Codec: entity.CodecNameJSON, Compression: entity.CompressionNameNone, MaxFrameSize: 4096},
		MaxMessageSize: 4096,
		SendQueueSize:  8,
		WriteTimeout:   time.Second,
		PingInterval:   time.Second,
	}
}

func wait[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timeout")
	}
	var zero T
	return zero
}

func dial(t *testing.T, ws *WebSocket, query string) (*websocket.Conn, *httptest.Server) {
	srv := httptest.NewServer(ws)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("failed to dial: %v", err)
	}
	return conn, srv
}

func TestWebSocketExchange(t *testing.T) {
	rec := newRecorder()
	ws, err := NewWebSocket(zlog, getTestConfig())
	if err != nil {
		t.Fatal(err)
	}
	rec.bind(ws)

	conn, srv := dial(t, ws, "")
	defer srv.Close()
	defer conn.Close()

	p := wait(t, rec.peers)
	if err := p.Send(&entity.Message{Type: entity.MessageTypeWelcome, Payload: &entity.WelcomeResponse{ID: "c1"}}); err != nil {
		t.Fatalf("failed to send: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	mt, data, err := conn.ReadMessage()
	if err != nil || mt != websocket.TextMessage {
		t.Fatalf("failed to read welcome: %v", err)
	}
	fields := map[string]interface{}{}
	if err := json.Unmarshal(data, &fields); err != nil || fields["type"] != "welcome" || fields["id"] != "c1" {
		t.Fatalf("unexpected welcome %s", data)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"forfeit","matchId":"m1"}`)); err != nil {
		t.Fatal(err)
	}
	msg := wait(t, rec.messages)
	if msg.Type != entity.MessageTypeForfeit || msg.Payload.(map[string]interface{})["matchId"] != "m1" {
		t.Fatalf("unexpected message %+v", msg)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{not json`)); err != nil {
		t.Fatal(err)
	}
	_, data, err = conn.ReadMessage()
	if err != nil || !strings.Contains(string(data), "malformed message") {
		t.Fatalf("expected an error frame, got %s (%v)", data, err)
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	if id := wait(t, rec.disconnects); id != "c1" {
		t.Fatalf("disconnect of %q", id)
	}
	if err := p.Send(entity.NewErrorMessage("late")); err != entity.ErrConnectionClosed {
		t.Fatalf("send after close: %v", err)
	}
}

func TestWebSocketCodecQuery(t *testing.T) {
	rec := newRecorder()
	ws, err := NewWebSocket(zlog, getTestConfig())
	if err != nil {
		t.Fatal(err)
	}
	rec.bind(ws)

	conn, srv := dial(t, ws, "?codec=msgpack&compression=lz4")
	defer srv.Close()
	defer conn.Close()

	p := wait(t, rec.peers)
	if err := p.Send(entity.NewErrorMessage("x")); err != nil {
		t.Fatal(err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	mt, data, err := conn.ReadMessage()
	if err != nil || mt != websocket.BinaryMessage {
		t.Fatalf("expected a binary frame: %v", err)
	}

	c, _ := codec.New(&codec.Config{Codec: entity.CodecNameMsgpack, Compression: entity.CompressionNameLZ4, MaxFrameSize: 4096})
	msg, err := c.Unmarshal(data)
	if err != nil || msg.Type != entity.MessageTypeError {
		t.Fatalf("failed to decode frame: %v", err)
	}
}

func TestWebSocketRejects(t *testing.T) {
	tests := map[string]struct {
		bind   bool
		query  string
		status int
	}{
		"unknown codec":       {bind: true, query: "?codec=xml", status: http.StatusBadRequest},
		"unknown compression": {bind: true, query: "?compression=gzip", status: http.StatusBadRequest},
		"handlers not set":    {status: http.StatusServiceUnavailable},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			ws, err := NewWebSocket(zlog, getTestConfig())
			if err != nil {
				t.Fatal(err)
			}
			if tc.bind {
				newRecorder().bind(ws)
			}

			srv := httptest.NewServer(ws)
			defer srv.Close()

			url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + tc.query
			_, resp, err := websocket.DefaultDialer.Dial(url, nil)
			if err == nil || resp == nil || resp.StatusCode != tc.status {
				t.Fatalf("expected status %d, got %v", tc.status, err)
			}
		})
	}
}

func TestWebSocketShutdown(t *testing.T) {
	rec := newRecorder()
	ws, err := NewWebSocket(zlog, getTestConfig())
	if err != nil {
		t.Fatal(err)
	}
	rec.bind(ws)

	conn, srv := dial(t, ws, "")
	defer srv.Close()
	defer conn.Close()
	wait(t, rec.peers)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := ws.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if id := wait(t, rec.disconnects); id != "c1" {
		t.Fatalf("disconnect of %q", id)
	}
}
