package controller

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/teslashibe/go-dreamer/internal/httpc"
	"github.com/teslashibe/go-dreamer/internal/log"
	"github.com/teslashibe/go-dreamer/pkg/player"
	"github.com/teslashibe/go-dreamer/pkg/protocol"
)

// HTTPController sends commands over the controller's HTTP API.
// Status is cached; Monitor keeps it fresh.
type HTTPController struct {
	BaseURL string

	client *http.Client
	logger *slog.Logger
	status atomic.Int32
}

// NewHTTPController creates an HTTP controller for baseURL (e.g. http://host:8090).
// It reports not ready until the first successful poll.
func NewHTTPController(baseURL string) *HTTPController {
	c := &HTTPController{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  httpc.Client,
		logger:  log.For("controller").With("transport", "http"),
	}
	c.status.Store(int32(player.StatusNotReady))
	return c
}

// Send POSTs one command frame to /api/command.
func (c *HTTPController) Send(ctx context.Context, f player.Frame) error {
	return httpc.PostJSON(ctx, c.client, c.BaseURL+"/api/command", CommandFromFrame(f))
}

// Status returns the last polled controller status.
func (c *HTTPController) Status() player.ControllerStatus {
	return player.ControllerStatus(c.status.Load())
}

// Poll fetches /api/status once and updates the cached status.
// An unreachable controller is reported as not ready.
func (c *HTTPController) Poll(ctx context.Context) (player.ControllerStatus, error) {
	var st protocol.StatusData
	if err := httpc.GetJSON(ctx, c.client, c.BaseURL+"/api/status", &st); err != nil {
		c.set(player.StatusNotReady, err.Error())
		return player.StatusNotReady, err
	}
	s := player.ParseControllerStatus(st.State)
	c.set(s, st.Detail)
	return s, nil
}

// Monitor polls the controller every interval until ctx is done.
func (c *HTTPController) Monitor(ctx context.Context, every time.Duration) {
	c.Poll(ctx)

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Poll(ctx)
		}
	}
}

// Close is a no-op; the shared HTTP client is not owned.
func (c *HTTPController) Close() error { return nil }

func (c *HTTPController) set(s player.ControllerStatus, detail string) {
	prev := player.ControllerStatus(c.status.Swap(int32(s)))
	if prev != s {
		c.logger.Info("controller status changed", "from", prev, "to", s, "detail", detail)
	}
}
