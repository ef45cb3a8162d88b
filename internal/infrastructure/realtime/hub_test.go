package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/riskibarqy/group-stage/internal/domain/subscription"
	"github.com/riskibarqy/group-stage/internal/platform/logging"
)

type testFrame struct {
	Type    string         `json:"type"`
	Topic   string         `json:"topic"`
	Payload map[string]any `json:"payload"`
}

func newTestServer(t *testing.T, hub *Hub, topic subscription.Topic, snapshot any) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, topic, snapshot)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) testFrame {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	var out testFrame
	if err := sonic.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
	return out
}

func waitForSubscribers(t *testing.T, hub *Hub, topic subscription.Topic, want int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers(topic) != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers on %s, got %d", want, topic, hub.Subscribers(topic))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_SnapshotThenUpdates(t *testing.T) {
	t.Parallel()

	hub := NewHub(DefaultOptions(), logging.NewNop())
	defer hub.Close()
	topic := subscription.StandingsTopic(1, 2)
	srv := newTestServer(t, hub, topic, map[string]any{"version": 0})

	conn := dial(t, srv)
	snapshot := readFrame(t, conn)
	if snapshot.Type != MessageSnapshot || snapshot.Topic != topic.String() {
		t.Fatalf("unexpected snapshot frame: %+v", snapshot)
	}
	waitForSubscribers(t, hub, topic, 1)

	if err := hub.Publish(context.Background(), topic, map[string]any{"version": 1}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	update := readFrame(t, conn)
	if update.Type != MessageUpdate {
		t.Fatalf("expected update frame, got %+v", update)
	}
	if got, _ := update.Payload["version"].(float64); got != 1 {
		t.Fatalf("unexpected update payload: %+v", update.Payload)
	}
}

func TestHub_PublishOnlyReachesTopic(t *testing.T) {
	t.Parallel()

	hub := NewHub(DefaultOptions(), logging.NewNop())
	defer hub.Close()
	groupOne := subscription.StandingsTopic(1, 1)
	groupTwo := subscription.StandingsTopic(1, 2)

	connOne := dial(t, newTestServer(t, hub, groupOne, nil))
	connTwo := dial(t, newTestServer(t, hub, groupTwo, nil))
	waitForSubscribers(t, hub, groupOne, 1)
	waitForSubscribers(t, hub, groupTwo, 1)

	if err := hub.Publish(context.Background(), groupTwo, map[string]any{"group": 2}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got := readFrame(t, connTwo); got.Topic != groupTwo.String() {
		t.Fatalf("unexpected frame on group two: %+v", got)
	}

	_ = connOne.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := connOne.ReadMessage(); err == nil {
		t.Fatalf("expected no frame for group one subscriber")
	}
}

func TestHub_ClientDisconnectUnsubscribes(t *testing.T) {
	t.Parallel()

	hub := NewHub(DefaultOptions(), logging.NewNop())
	defer hub.Close()
	topic := subscription.TeamsTopic()
	conn := dial(t, newTestServer(t, hub, topic, nil))
	waitForSubscribers(t, hub, topic, 1)

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
	waitForSubscribers(t, hub, topic, 0)
}

func TestHub_DropsSlowSubscriber(t *testing.T) {
	t.Parallel()

	hub := NewHub(Options{SendBuffer: 1}, logging.NewNop())
	topic := subscription.StandingsTopic(2, 1)
	slow := &client{topic: topic, send: make(chan []byte, 1)}
	if err := hub.register(slow); err != nil {
		t.Fatalf("register: %v", err)
	}

	ctx := context.Background()
	if err := hub.Publish(ctx, topic, "first"); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	if err := hub.Publish(ctx, topic, "second"); err != nil {
		t.Fatalf("second publish: %v", err)
	}

	if got := hub.Subscribers(topic); got != 0 {
		t.Fatalf("expected slow subscriber to be removed, got %d", got)
	}
	<-slow.send
	if _, ok := <-slow.send; ok {
		t.Fatalf("expected send channel to be closed")
	}
}

func TestHub_CloseDisconnectsSubscribers(t *testing.T) {
	t.Parallel()

	hub := NewHub(DefaultOptions(), logging.NewNop())
	topic := subscription.TeamsTopic()
	srv := newTestServer(t, hub, topic, nil)
	conn := dial(t, srv)
	waitForSubscribers(t, hub, topic, 1)

	hub.Close()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := conn.ReadMessage()
	if !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("expected going-away close, got %v", err)
	}
	if err := hub.Publish(context.Background(), topic, "late"); !errors.Is(err, ErrHubClosed) {
		t.Fatalf("expected ErrHubClosed from publish, got %v", err)
	}
}

func TestHub_PublishHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	hub := NewHub(DefaultOptions(), logging.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := hub.Publish(ctx, subscription.TeamsTopic(), "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
