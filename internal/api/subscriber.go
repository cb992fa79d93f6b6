package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/tylerwhitlock50/month-end-close-manager-sub001/internal/feed"
)

// EventHandler is called for every event received from the tracker feed.
type EventHandler func(ev feed.Event)

// Subscriber manages a websocket subscription to the tracker event feed.
type Subscriber struct {
	url      string
	handlers []EventHandler
	conn     *websocket.Conn
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
}

// NewSubscriber prepares a subscription against the tracker at baseURL.
// An empty types list subscribes to every event.
func NewSubscriber(baseURL string, types []feed.EventType) (*Subscriber, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws/events"
	if len(types) > 0 {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		u.RawQuery = url.Values{"types": {strings.Join(names, ",")}}.Encode()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Subscriber{
		url:    u.String(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}, nil
}

// OnEvent registers an event handler. Register before Connect.
func (s *Subscriber) OnEvent(h EventHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, h)
}

// Connect establishes the websocket connection and starts delivering events.
func (s *Subscriber) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(s.ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, s.url, nil)
	if err != nil {
		return fmt.Errorf("dial websocket: %w", err)
	}

	s.conn = conn
	go s.readLoop()
	return nil
}

// Done closes when the read loop stops, either after Close or after the
// tracker drops the connection.
func (s *Subscriber) Done() <-chan struct{} { return s.done }

// Close closes the websocket connection.
func (s *Subscriber) Close() error {
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return s.conn.Close(websocket.StatusNormalClosure, "closing")
	}
	return nil
}

func (s *Subscriber) readLoop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()

		if conn == nil {
			return
		}

		_, message, err := conn.Read(s.ctx)
		if err != nil {
			// Connection closed or error
			return
		}

		var ev feed.Event
		if err := json.Unmarshal(message, &ev); err != nil {
			continue // Skip malformed events
		}

		s.mu.Lock()
		handlers := make([]EventHandler, len(s.handlers))
		copy(handlers, s.handlers)
		s.mu.Unlock()

		for _, h := range handlers {
			h(ev)
		}
	}
}
