package pushsvc

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/prajyots60/myskill-agenda/core"
	"github.com/prajyots60/myskill-agenda/core/timeline"
)

const (
	dialTimeout      = 10 * time.Second
	initialBackoff   = time.Second
	maxBackoff       = 30 * time.Second
	messageQueueSize = 16

	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
)

// WebsocketChannel subscribes to the platform's status-change socket and
// re-delivers frames as timeline.StatusChange messages. The connection is
// re-dialed with exponential backoff until the subscription context ends.
type WebsocketChannel struct {
	url    string
	logger core.Logger
	dialer *websocket.Dialer
}

var _ timeline.PushChannel = (*WebsocketChannel)(nil)

func NewWebsocketChannel(conf *core.Config, logger core.Logger) *WebsocketChannel {
	return &WebsocketChannel{
		url:    conf.Push.URL,
		logger: logger,
		dialer: &websocket.Dialer{HandshakeTimeout: dialTimeout},
	}
}

func (c *WebsocketChannel) Subscribe(ctx context.Context) (<-chan timeline.StatusChange, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "dialing push socket")
	}

	msgs := make(chan timeline.StatusChange, messageQueueSize)
	go c.consume(ctx, conn, msgs)
	return msgs, nil
}

func (c *WebsocketChannel) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	return conn, err
}

func (c *WebsocketChannel) consume(ctx context.Context, conn *websocket.Conn, msgs chan<- timeline.StatusChange) {
	defer close(msgs)

	backoff := initialBackoff
	for {
		// unblock reads when the subscription ends
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-done:
			}
		}()

		err := c.readLoop(ctx, conn, msgs)
		close(done)
		_ = conn.Close()
		if ctx.Err() != nil {
			return
		}
		c.logger.Warn("agenda: push socket dropped; reconnecting", err)

		for {
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			conn, err = c.dial(ctx)
			if err == nil {
				backoff = initialBackoff
				break
			}
			c.logger.Warn("agenda: push socket redial failed", err)
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

func (c *WebsocketChannel) readLoop(ctx context.Context, conn *websocket.Conn, msgs chan<- timeline.StatusChange) error {
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	pings := time.NewTicker(pingInterval)
	stopPings := make(chan struct{})
	defer func() {
		pings.Stop()
		close(stopPings)
	}()
	go func() {
		for {
			select {
			case <-stopPings:
				return
			case <-pings.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(dialTimeout)); err != nil {
					return
				}
			}
		}
	}()

	for {
		var msg timeline.StatusChange
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}
		if msg.EntryID == "" || !msg.Status.Valid() {
			c.logger.Warn("agenda: dropping malformed push frame", map[string]interface{}{
				"entry_id": msg.EntryID, "status": string(msg.Status),
			})
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msgs <- msg:
		}
	}
}
