package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vrsandeep/manga-sync/internal/models"
)

func TestHub(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// Mock client
	client := &Client{
		hub:  hub,
		send: make(chan []byte, 1),
	}

	// Test registration
	hub.register <- client
	if n := hub.ClientCount(); n != 1 {
		t.Fatalf("Expected 1 client after registration, got %d", n)
	}

	// Test broadcast
	hub.BroadcastJSON(map[string]string{"message": "hello"})

	select {
	case received := <-client.send:
		if string(received) != `{"message":"hello"}` {
			t.Errorf("Client received wrong message: got %s", received)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("Client did not receive broadcast message in time")
	}

	// Test unregistration
	hub.unregister <- client
	if n := hub.ClientCount(); n != 0 {
		t.Fatalf("Expected 0 clients after unregistration, got %d", n)
	}
}

func TestHubDropsSlowClient(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	client := &Client{hub: hub, send: make(chan []byte)} // unbuffered, never read
	hub.register <- client
	hub.BroadcastJSON("x")

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Expected slow client to be dropped")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if _, ok := <-client.send; ok {
		t.Error("Expected the dropped client's send channel to be closed")
	}
}

func TestServeWs(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWs))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("Client was not registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.BroadcastJSON(models.ProgressUpdate{JobID: "unread-sync", Message: "done", Progress: 100, Done: true})

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	var update models.ProgressUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		t.Fatalf("Failed to decode update: %v", err)
	}
	if !update.Done || update.JobID != "unread-sync" {
		t.Errorf("Unexpected update: %+v", update)
	}
}
