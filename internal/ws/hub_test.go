package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialTestConn registers one live connection on the hub and returns
// both ends of it.
func dialTestConn(t *testing.T, hub *Hub, sessionID uint) (*websocket.Conn, *websocket.Conn) {
	t.Helper()
	serverConns := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.AddConnection(sessionID, conn)
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case conn := <-serverConns:
		return conn, client
	case <-time.After(time.Second):
		t.Fatal("server connection never registered")
		return nil, nil
	}
}

func TestBroadcast_DeliversToSessionClients(t *testing.T) {
	hub := NewHub()
	_, client := dialTestConn(t, hub, 7)

	hub.Broadcast(7, WSMessage{Type: "inject_delivered", Data: map[string]int{"count": 1}})

	client.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := client.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "inject_delivered") {
		t.Errorf("payload = %s", data)
	}
}

func TestBroadcast_ConcurrentlyPrunesDeadConnections(t *testing.T) {
	hub := NewHub()
	server, _ := dialTestConn(t, hub, 9)
	server.Close()

	// Concurrent broadcasts hitting the dead connection must not race
	// on the shared map while pruning it.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hub.Broadcast(9, WSMessage{Type: "session_status"})
		}()
	}
	wg.Wait()

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	if len(hub.sessions[9]) != 0 {
		t.Error("dead connection still registered after broadcast")
	}
}
