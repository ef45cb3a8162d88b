package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/group-stage/internal/domain/subscription"
	"github.com/riskibarqy/group-stage/internal/platform/logging"
)

var ErrHubClosed = errors.New("realtime hub is closed")

const (
	MessageSnapshot = "snapshot"
	MessageUpdate   = "update"
)

// Message is the frame written to every subscriber.
type Message struct {
	Type    string `json:"type"`
	Topic   string `json:"topic"`
	Payload any    `json:"payload"`
}

type Options struct {
	SendBuffer     int
	WriteWait      time.Duration
	PongWait       time.Duration
	MaxMessageSize int64
	CheckOrigin    func(r *http.Request) bool
}

func DefaultOptions() Options {
	return Options{
		SendBuffer:     16,
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		MaxMessageSize: 512,
	}
}

type client struct {
	conn  *websocket.Conn
	topic subscription.Topic
	send  chan []byte
}

// Hub fans published payloads out to websocket subscribers grouped by topic.
type Hub struct {
	mu       sync.RWMutex
	topics   map[subscription.Topic]map[*client]struct{}
	closed   bool
	opts     Options
	upgrader websocket.Upgrader
	logger   *logging.Logger
}

func NewHub(opts Options, logger *logging.Logger) *Hub {
	defaults := DefaultOptions()
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaults.SendBuffer
	}
	if opts.WriteWait <= 0 {
		opts.WriteWait = defaults.WriteWait
	}
	if opts.PongWait <= 0 {
		opts.PongWait = defaults.PongWait
	}
	if opts.MaxMessageSize <= 0 {
		opts.MaxMessageSize = defaults.MaxMessageSize
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &Hub{
		topics: make(map[subscription.Topic]map[*client]struct{}),
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		logger: logger,
	}
}

// Publish queues payload for every subscriber of topic. Subscribers whose
// buffer is full are disconnected instead of blocking the publisher.
func (h *Hub) Publish(ctx context.Context, topic subscription.Topic, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	frame, err := encodeFrame(Message{Type: MessageUpdate, Topic: topic.String(), Payload: payload})
	if err != nil {
		return err
	}

	var slow []*client
	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return ErrHubClosed
	}
	for c := range h.topics[topic] {
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.WarnContext(ctx, "drop slow websocket subscriber", "topic", topic.String())
		h.unregister(c)
	}
	return nil
}

// Serve upgrades the request and subscribes the connection to topic. A
// non-nil snapshot is delivered before any update.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, topic subscription.Topic, snapshot any) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("upgrade websocket: %w", err)
	}

	c := &client{
		conn:  conn,
		topic: topic,
		send:  make(chan []byte, h.opts.SendBuffer),
	}
	if snapshot != nil {
		frame, err := encodeFrame(Message{Type: MessageSnapshot, Topic: topic.String(), Payload: snapshot})
		if err != nil {
			_ = conn.Close()
			return err
		}
		c.send <- frame
	}

	if err := h.register(c); err != nil {
		_ = conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(h.opts.WriteWait),
		)
		_ = conn.Close()
		return err
	}

	go h.writePump(c)
	go h.readPump(c)
	return nil
}

// Subscribers reports how many connections currently follow topic.
func (h *Hub) Subscribers(topic subscription.Topic) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Close disconnects every subscriber; later Serve and Publish calls fail
// with ErrHubClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for topic, clients := range h.topics {
		for c := range clients {
			close(c.send)
		}
		delete(h.topics, topic)
	}
}

func (h *Hub) register(c *client) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrHubClosed
	}
	clients, ok := h.topics[c.topic]
	if !ok {
		clients = make(map[*client]struct{})
		h.topics[c.topic] = clients
	}
	clients[c] = struct{}{}
	h.logger.Debug("websocket subscribed", "topic", c.topic.String(), "subscribers", len(clients))
	return nil
}

// unregister closes c.send exactly once; the channel is only closed while
// holding the write lock and after removal from the topic set.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.topics[c.topic]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.topics, c.topic)
	}
	h.logger.Debug("websocket unsubscribed", "topic", c.topic.String(), "subscribers", len(clients))
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(h.opts.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.opts.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read failed", "topic", c.topic.String(), "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(h.opts.PongWait * 9 / 10)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func encodeFrame(msg Message) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(msg); err != nil {
		return nil, fmt.Errorf("encode %s frame: %w", msg.Type, err)
	}
	return append([]byte(nil), buf.B...), nil
}
