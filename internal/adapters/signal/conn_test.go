package signal

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/corvan/Beam/internal/core"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

// newConnPair upgrades one real connection and returns its server side
// wrapped as wsConn, plus the client end.
func newConnPair(t *testing.T) (*wsConn, *websocket.Conn) {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	serverSide := make(chan *websocket.Conn, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		serverSide <- ws
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return &wsConn{id: "t1", conn: <-serverSide, send: make(chan core.Frame, 2)}, client
}

func TestTrySendBackpressure(t *testing.T) {
	c, _ := newConnPair(t)

	// No writePump draining: the buffer fills, then frames drop.
	if err := c.TrySend(core.Frame(`{}`)); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := c.TrySend(core.Frame(`{}`)); err != nil {
		t.Fatalf("second send: %v", err)
	}
	if err := c.TrySend(core.Frame(`{}`)); !errors.Is(err, ErrBackpressure) {
		t.Fatalf("expected ErrBackpressure, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c, _ := newConnPair(t)

	if !c.Connected() {
		t.Fatalf("fresh conn not connected")
	}
	c.Close()
	c.Close()
	if c.Connected() {
		t.Fatalf("closed conn reports connected")
	}
	if err := c.TrySend(core.Frame(`{}`)); err == nil {
		t.Fatalf("send after close must fail")
	}
}

func TestTrySendRejectsNilFrame(t *testing.T) {
	c, _ := newConnPair(t)
	if err := c.TrySend(nil); err == nil {
		t.Fatalf("nil frame accepted")
	}
}
