package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/hestia/internal/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockClient creates a Client with a send channel but no real connection.
func mockClient(hub *Hub, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   nil,
		userID: userID,
		send:   make(chan []byte, sendBufferSize),
	}
}

func TestRegisterUnregister(t *testing.T) {
	hub := NewHub(testLogger())

	c1 := mockClient(hub, 1)
	c2 := mockClient(hub, 2)

	hub.Register(c1)
	hub.Register(c2)

	if got := hub.ClientCount(); got != 2 {
		t.Fatalf("expected 2 clients, got %d", got)
	}

	hub.Unregister(c1)

	if got := hub.ClientCount(); got != 1 {
		t.Fatalf("expected 1 client after unregister, got %d", got)
	}

	hub.Unregister(c2)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestDoubleUnregister(t *testing.T) {
	hub := NewHub(testLogger())
	c := mockClient(hub, 1)
	hub.Register(c)
	hub.Unregister(c)
	// Should not panic
	hub.Unregister(c)

	if got := hub.ClientCount(); got != 0 {
		t.Fatalf("expected 0 clients, got %d", got)
	}
}

func TestBroadcastReachesOnlyOwner(t *testing.T) {
	hub := NewHub(testLogger())

	alice1 := mockClient(hub, 1)
	alice2 := mockClient(hub, 1)
	bob := mockClient(hub, 2)
	hub.Register(alice1)
	hub.Register(alice2)
	hub.Register(bob)

	hub.Broadcast(1, NewMessage(EntityItem, ActionCreated, 42, map[string]any{"list_id": float64(7)}))

	for _, c := range []*Client{alice1, alice2} {
		select {
		case data := <-c.send:
			var got Message
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Type != "item_created" {
				t.Errorf("expected type item_created, got %s", got.Type)
			}
			if got.ID != 42 {
				t.Errorf("expected id 42, got %d", got.ID)
			}
			if got.Extra["list_id"] != float64(7) {
				t.Errorf("expected list_id 7, got %v", got.Extra["list_id"])
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatal("timeout waiting for message")
		}
	}

	select {
	case <-bob.send:
		t.Error("another user's client received the message")
	default:
	}
}

func TestBroadcastEmptyHub(t *testing.T) {
	hub := NewHub(testLogger())
	// Should not panic
	hub.Broadcast(1, NewMessage(EntityList, ActionDeleted, 1, nil))
}

func TestBroadcastFullBuffer(t *testing.T) {
	hub := NewHub(testLogger())

	c := mockClient(hub, 1)
	hub.Register(c)

	for i := 0; i < sendBufferSize; i++ {
		hub.Broadcast(1, NewMessage("test", "fill", int64(i), nil))
	}

	// This should drop the message, not panic or block
	hub.Broadcast(1, NewMessage("test", "dropped", 999, nil))

	count := 0
	for {
		select {
		case <-c.send:
			count++
		default:
			goto done
		}
	}
done:
	if count != sendBufferSize {
		t.Errorf("expected %d messages, got %d", sendBufferSize, count)
	}

	hub.Unregister(c)
}

func TestNewMessage(t *testing.T) {
	msg := NewMessage(EntityList, ActionUpdated, 5, nil)
	if msg.Type != "shopping_list_updated" {
		t.Errorf("expected type shopping_list_updated, got %s", msg.Type)
	}
	if msg.Entity != EntityList || msg.Action != ActionUpdated || msg.ID != 5 {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestConcurrentAccess(t *testing.T) {
	hub := NewHub(testLogger())
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(user int64) {
			defer wg.Done()
			c := mockClient(hub, user)
			hub.Register(c)
			hub.Broadcast(user, NewMessage("test", "concurrent", 0, nil))
			for {
				select {
				case <-c.send:
				default:
					hub.Unregister(c)
					return
				}
			}
		}(int64(i % 3))
	}

	wg.Wait()

	if got := hub.ClientCount(); got != 0 {
		t.Errorf("expected 0 clients after concurrent test, got %d", got)
	}
}

func TestHandleWebSocketRequiresUser(t *testing.T) {
	hub := NewHub(testLogger())
	rec := httptest.NewRecorder()
	HandleWebSocket(hub, nil, testLogger())(rec, httptest.NewRequest("GET", "/ws", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestHandleWebSocketDelivers(t *testing.T) {
	hub := NewHub(testLogger())
	handler := HandleWebSocket(hub, nil, testLogger())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler(w, r.WithContext(auth.WithUser(r.Context(), 9)))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := ws.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ClientCount() != 1 {
		t.Fatalf("expected 1 registered client, got %d", hub.ClientCount())
	}

	hub.Broadcast(9, NewMessage(EntityItem, ActionToggled, 3, nil))

	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Type != "item_toggled" || got.ID != 3 {
		t.Errorf("got %+v", got)
	}
}
