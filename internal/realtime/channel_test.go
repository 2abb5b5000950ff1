package realtime

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// starts a websocket test server; handler receives each accepted connection
func newWSServer(t *testing.T, handler func(*websocket.Conn)) (*httptest.Server, string) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/ws/") {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handler(conn)
	}))
	t.Cleanup(server.Close)
	return server, "ws" + strings.TrimPrefix(server.URL, "http")
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestChannelDeliversTypedAndWildcardMessages(t *testing.T) {
	_, url := newWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(
			`{"type":"status","project_id":"p1","status":"translating","progress":5,"message":"working"}`,
		))
		conn.WriteMessage(websocket.TextMessage, []byte(
			`{"type":"heartbeat","project_id":"p1"}`,
		))
		select {}
	})

	ch := NewChannel(Options{URL: url})
	defer ch.Disconnect()

	var statusSeen, wildcardSeen int32
	ch.On(TypeStatus, func(m Message) {
		if m.Status == "translating" && m.Progress != nil && *m.Progress == 5 {
			atomic.AddInt32(&statusSeen, 1)
		}
	})
	ch.On(Wildcard, func(m Message) { atomic.AddInt32(&wildcardSeen, 1) })

	if err := ch.Connect(context.Background(), "p1"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if ch.State() != StateConnected {
		t.Fatalf("state = %v, want connected", ch.State())
	}

	waitFor(t, time.Second, func() bool {
		return atomic.LoadInt32(&statusSeen) == 1 && atomic.LoadInt32(&wildcardSeen) == 2
	})

	// heartbeat carries liveness only
	if ch.State() != StateConnected {
		t.Error("heartbeat must not change connection state")
	}
}

func TestChannelDiscardsWrongProjectMessages(t *testing.T) {
	_, url := newWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(
			`{"type":"subtitles","project_id":"A","data":[{"start_time":1,"end_time":2,"text":"stale"}]}`,
		))
		conn.WriteMessage(websocket.TextMessage, []byte(
			`{"type":"subtitles","project_id":"B","data":[{"start_time":1,"end_time":2,"text":"fresh"}]}`,
		))
		select {}
	})

	ch := NewChannel(Options{URL: url})
	defer ch.Disconnect()

	var got []Message
	done := make(chan struct{})
	ch.On(TypeSubtitles, func(m Message) {
		got = append(got, m)
		close(done)
	})

	if err := ch.Connect(context.Background(), "B"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
	}

	if len(got) != 1 || got[0].ProjectID != "B" {
		t.Fatalf("message for project A must be discarded, got %+v", got)
	}
}

func TestChannelReconnectsAfterDrop(t *testing.T) {
	var accepted int32
	_, url := newWSServer(t, func(conn *websocket.Conn) {
		n := atomic.AddInt32(&accepted, 1)
		if n == 1 {
			conn.Close() // drop the first connection immediately
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(
			`{"type":"status","project_id":"p1","status":"translating"}`,
		))
		select {}
	})

	ch := NewChannel(Options{
		URL:                  url,
		ReconnectInterval:    10 * time.Millisecond,
		MaxReconnectAttempts: 5,
	})
	defer ch.Disconnect()

	var seen int32
	ch.On(TypeStatus, func(Message) { atomic.AddInt32(&seen, 1) })

	if err := ch.Connect(context.Background(), "p1"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	waitFor(t, 2*time.Second, func() bool { return atomic.LoadInt32(&seen) == 1 })

	if ch.Degraded() {
		t.Error("successful reconnect must not signal degraded mode")
	}
	if ch.State() != StateConnected {
		t.Errorf("state = %v, want connected after reconnect", ch.State())
	}
}

func TestChannelReconnectBound(t *testing.T) {
	server, url := newWSServer(t, func(conn *websocket.Conn) {
		conn.Close()
	})

	ch := NewChannel(Options{
		URL:                  url,
		ReconnectInterval:    10 * time.Millisecond,
		MaxReconnectAttempts: 3,
	})
	defer ch.Disconnect()

	var degraded int32
	ch.OnDegraded = func() { atomic.AddInt32(&degraded, 1) }

	if err := ch.Connect(context.Background(), "p1"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	// kill the server so every reconnect attempt fails
	server.Close()

	waitFor(t, 3*time.Second, func() bool { return atomic.LoadInt32(&degraded) == 1 })

	if ch.State() != StateDisconnected {
		t.Errorf("state = %v, want permanently disconnected", ch.State())
	}
	if !ch.Degraded() {
		t.Error("degraded flag must be set after exhausting attempts")
	}

	// no further attempts fire after exhaustion
	time.Sleep(100 * time.Millisecond)
	if n := atomic.LoadInt32(&degraded); n != 1 {
		t.Errorf("degraded signalled %d times, want exactly once", n)
	}
}

func TestChannelDisconnectIsTerminal(t *testing.T) {
	_, url := newWSServer(t, func(conn *websocket.Conn) { select {} })

	ch := NewChannel(Options{URL: url})
	if err := ch.Connect(context.Background(), "p1"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}

	ch.Disconnect()

	if ch.State() != StateDisconnected {
		t.Error("disconnect should leave the channel disconnected")
	}
	if err := ch.Connect(context.Background(), "p2"); err == nil {
		t.Error("a released channel must not reconnect; a new one is created per project")
	}
}

func TestChannelRejectsDoubleConnect(t *testing.T) {
	_, url := newWSServer(t, func(conn *websocket.Conn) { select {} })

	ch := NewChannel(Options{URL: url})
	defer ch.Disconnect()

	if err := ch.Connect(context.Background(), "p1"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if err := ch.Connect(context.Background(), "p1"); err == nil {
		t.Error("second connect on a live channel must fail")
	}
}

func TestCheckConnectionHealth(t *testing.T) {
	_, url := newWSServer(t, func(conn *websocket.Conn) {
		// keep reading so ping frames are processed
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ch := NewChannel(Options{URL: url})
	defer ch.Disconnect()

	if ch.CheckConnectionHealth() {
		t.Error("health check must fail before connect")
	}

	if err := ch.Connect(context.Background(), "p1"); err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	if !ch.CheckConnectionHealth() {
		t.Error("health check should pass on a live connection")
	}

	if err := ch.ForceReconnect(context.Background()); err != nil {
		t.Fatalf("force reconnect failed: %v", err)
	}
	if ch.State() != StateConnected {
		t.Errorf("state = %v, want connected after forced reconnect", ch.State())
	}
}
