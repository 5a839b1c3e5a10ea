package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/corvan/Beam/internal/app"
	"github.com/corvan/Beam/internal/config"
	"github.com/corvan/Beam/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the WebSocket leg of the signaling surface: it
// upgrades connections, runs the read/write pumps with keepalive, and
// feeds decoded events into the core.
type Controller struct {
	Coord *app.Coordinator

	readLimit   int64
	pingPeriod  time.Duration
	pongTimeout time.Duration

	upgrader websocket.Upgrader
}

func NewController(cfg *config.Config, coord *app.Coordinator) *Controller {
	allowed := cfg.AllowedOrigin
	readLimit := cfg.ReadLimit
	if readLimit <= 0 {
		readLimit = 32768
	}
	pingPeriod := cfg.PingPeriod
	if pingPeriod <= 0 {
		pingPeriod = 54 * time.Second
	}
	pongTimeout := cfg.PongTimeout
	if pongTimeout <= 0 {
		pongTimeout = 6 * time.Second
	}
	return &Controller{
		Coord:       coord,
		readLimit:   readLimit,
		pingPeriod:  pingPeriod,
		pongTimeout: pongTimeout,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowed == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowed
			},
		},
	}
}

// wsConn adapts one gorilla connection to core.Conn. Writes go through
// a buffered channel drained by writePump; a full channel drops the
// frame instead of blocking the caller.
type wsConn struct {
	id   string
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) ID() string { return c.id }

func (c *wsConn) TrySend(f core.Frame) error {
	if f == nil {
		return errors.New("nil frame")
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.closed
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// HandleSignal upgrades the request and starts the connection's pumps.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	conn := &wsConn{
		id:   uuid.NewString(),
		conn: ws,
		send: make(chan core.Frame, 32),
	}
	log.Info().Str("module", "signal").Str("conn", conn.id).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, cancel, conn)
	go ctl.readPump(ctx, cancel, conn)
}
