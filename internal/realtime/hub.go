// Package realtime fans event-log entries out to connected dashboard
// clients over WebSocket.
package realtime

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sentrywaf/waf/internal/logger"
	"github.com/sentrywaf/waf/internal/metrics"
)

const (
	writeTimeout  = 10 * time.Second
	pongWait      = 60 * time.Second
	pingInterval  = (pongWait * 9) / 10
	outboundQueue = 32
)

// Hub tracks connected subscribers and fans broadcast messages out to all
// of them without letting a slow reader block the writer.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscriber]struct{})}
}

// Subscriber wraps one WebSocket connection with a buffered outbound queue
// and its own writer goroutine, so a slow or stalled client cannot block
// Broadcast for everyone else.
type Subscriber struct {
	conn    *websocket.Conn
	outbox  chan []byte
	closeMu sync.Mutex
	closed  bool
}

// Attach registers conn with the hub and starts its reader/writer
// goroutines. It blocks until the connection is closed.
func (h *Hub) Attach(conn *websocket.Conn) {
	sub := &Subscriber{conn: conn, outbox: make(chan []byte, outboundQueue)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	metrics.SetSubscriberCount(len(h.subs))
	h.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sub.writeLoop()
	}()

	sub.readLoop() // blocks until the client disconnects

	h.Detach(sub)
	sub.close()
	wg.Wait()
}

// Detach removes sub from the subscriber set. Safe to call more than once.
func (h *Hub) Detach(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, sub)
	metrics.SetSubscriberCount(len(h.subs))
}

// Count reports the current number of attached subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Broadcast sends payload to every attached subscriber. Slow subscribers
// whose outbox is full are dropped rather than blocking the broadcaster;
// this call never blocks on network I/O.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	targets := make([]*Subscriber, 0, len(h.subs))
	for sub := range h.subs {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	var dead []*Subscriber
	for _, sub := range targets {
		select {
		case sub.outbox <- payload:
		default:
			logger.Log().Warn("realtime: dropping slow subscriber")
			dead = append(dead, sub)
		}
	}

	for _, sub := range dead {
		h.Detach(sub)
		sub.close()
	}
}

func (s *Subscriber) writeLoop() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-s.outbox:
			if !ok {
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop only drains and discards inbound frames; dashboard clients are
// not expected to send application data, only pong control frames.
func (s *Subscriber) readLoop() {
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		s.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Subscriber) close() {
	s.closeMu.Lock()
	defer s.closeMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.outbox)
	_ = s.conn.Close()
}
