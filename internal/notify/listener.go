// Package notify subscribes to the library service's push channel and
// republishes its events on the in-process bus. The cart engine itself never
// sees the websocket; it only reacts to bus topics.
package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/library-fullstack/borrowcart/internal/bus"
	"github.com/library-fullstack/borrowcart/pkg/logger"
)

const reconnectDelay = 5 * time.Second

// Event is one push frame from the server.
type Event struct {
	Topic   string          `json:"topic"`
	Payload json.RawMessage `json:"payload"`
}

// Listener maintains a websocket connection to the server's event stream and
// forwards every frame to the bus.
type Listener struct {
	url    string
	token  string
	bus    bus.Bus
	cancel context.CancelFunc
	done   chan struct{}
}

// NewListener builds a listener for the given websocket URL. token is sent as
// a bearer header on dial; pass "" for unauthenticated streams.
func NewListener(url, token string, b bus.Bus) *Listener {
	return &Listener{url: url, token: token, bus: b}
}

// Start begins the connect/read loop in the background. Connection loss is
// retried until Stop is called or ctx is done.
func (l *Listener) Start(ctx context.Context) {
	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})

	go l.run(ctx)
}

// Stop terminates the loop and waits for it to exit.
func (l *Listener) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
}

func (l *Listener) run(ctx context.Context) {
	defer close(l.done)

	for {
		if err := l.connectAndRead(ctx); err != nil {
			logger.Warn("Event stream disconnected", map[string]interface{}{
				"url":   l.url,
				"error": err.Error(),
			})
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (l *Listener) connectAndRead(ctx context.Context) error {
	header := http.Header{}
	if l.token != "" {
		header.Set("Authorization", "Bearer "+l.token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	logger.Info("Connected to event stream", map[string]interface{}{"url": l.url})

	// Close the connection when ctx ends so ReadJSON unblocks.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			return err
		}
		if ev.Topic == "" {
			logger.Debug("Dropping event frame without topic", nil)
			continue
		}
		l.bus.Publish(ev.Topic, ev.Payload)
	}
}
