package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/teslashibe/go-dreamer/internal/log"
	"github.com/teslashibe/go-dreamer/pkg/player"
	"github.com/teslashibe/go-dreamer/pkg/protocol"
)

const wsWriteTimeout = 100 * time.Millisecond

// WSController streams commands over a WebSocket. The controller pushes
// status messages, which a reader goroutine caches.
type WSController struct {
	url    string
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex
	status  atomic.Int32
	closed  atomic.Bool
	done    chan struct{}
}

// DialWS connects to a controller WebSocket endpoint (ws://host:8090/ws/command).
func DialWS(ctx context.Context, url string) (*WSController, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &WSController{
		url:    url,
		conn:   conn,
		logger: log.For("controller").With("transport", "ws"),
		done:   make(chan struct{}),
	}
	c.status.Store(int32(player.StatusNotReady))
	go c.readLoop()
	return c, nil
}

// Send writes one command message.
func (c *WSController) Send(ctx context.Context, f player.Frame) error {
	if c.closed.Load() {
		return ErrClosed
	}
	msg, err := protocol.NewCommandMessage(CommandFromFrame(f))
	if err != nil {
		return err
	}
	data, err := msg.Bytes()
	if err != nil {
		return err
	}
	return c.write(ctx, data)
}

// Status returns the last status pushed by the controller.
func (c *WSController) Status() player.ControllerStatus {
	return player.ControllerStatus(c.status.Load())
}

// Done is closed when the connection is lost or closed.
func (c *WSController) Done() <-chan struct{} { return c.done }

// Close ends the session.
func (c *WSController) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(wsWriteTimeout))
	c.writeMu.Unlock()
	err := c.conn.Close()
	<-c.done
	return err
}

func (c *WSController) write(ctx context.Context, data []byte) error {
	deadline := time.Now().Add(wsWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(deadline)
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		c.set(player.StatusNotReady, "write failed")
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}

func (c *WSController) readLoop() {
	defer close(c.done)
	defer c.set(player.StatusNotReady, "connection lost")

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !c.closed.Load() {
				c.logger.Warn("controller connection lost", "url", c.url, "error", err)
			}
			return
		}

		msg, err := protocol.ParseMessage(data)
		if err != nil {
			c.logger.Debug("ignoring malformed message", "error", err)
			continue
		}

		switch msg.Type {
		case protocol.TypeStatus:
			st, err := msg.GetStatusData()
			if err != nil {
				continue
			}
			c.set(player.ParseControllerStatus(st.State), st.Detail)
		case protocol.TypePing:
			ping, err := msg.GetPingData()
			if err != nil {
				continue
			}
			pong, err := protocol.NewPongMessage(ping.ID, ping.Timestamp)
			if err != nil {
				continue
			}
			if b, err := pong.Bytes(); err == nil {
				c.write(context.Background(), b)
			}
		}
	}
}

func (c *WSController) set(s player.ControllerStatus, detail string) {
	prev := player.ControllerStatus(c.status.Swap(int32(s)))
	if prev != s {
		c.logger.Info("controller status changed", "from", prev, "to", s, "detail", detail)
	}
}
