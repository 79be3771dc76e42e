package eventbus

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWSServer_PublishFrameRepublishesOnTopic(t *testing.T) {
	topic := New()
	server := httptest.NewServer(NewWSServer(topic))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	ch, cancel := topic.Subscribe()
	defer cancel()

	if err := conn.WriteJSON(wsMessage{Type: "publish", Payload: "stop"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	select {
	case msg := <-ch:
		if msg != "stop" {
			t.Errorf("republished message = %q, want %q", msg, "stop")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("publish frame was not republished onto the topic within 2s")
	}
}

func TestWSServer_UnknownFrameTypeIgnored(t *testing.T) {
	topic := New()
	server := httptest.NewServer(NewWSServer(topic))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	ch, cancel := topic.Subscribe()
	defer cancel()

	if err := conn.WriteJSON(wsMessage{Type: "ping", Payload: "irrelevant"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if err := conn.WriteJSON(wsMessage{Type: "publish", Payload: "after-ping"}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	select {
	case msg := <-ch:
		if msg != "after-ping" {
			t.Errorf("received %q, want %q (the unknown frame should have been ignored)", msg, "after-ping")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected publish frame was never republished")
	}
}
