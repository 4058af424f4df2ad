package http

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"
)

// wsMessage is sent from client to adjust its event feed.
type wsMessage struct {
	Action   string `json:"action"`   // "filter" | "clear"
	Category string `json:"category"` // category filter ("" = all)
}

// WebSocketHandler returns a handler that upgrades to WebSocket
// and relays route-computed NATS events to connected clients.
// Clients send JSON: {"action":"filter","category":"Healthcare"} to narrow
// the feed to one category, or {"action":"clear"} to receive everything.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		if nc == nil {
			_ = c.WriteMessage(websocket.TextMessage, []byte(`{"error":"event stream unavailable"}`))
			return
		}

		remoteAddr := c.RemoteAddr().String()
		log.Printf("ws client connected: %s", remoteAddr)

		var mu sync.Mutex
		var category string // current filter, guarded by mu

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		sub, err := nc.Subscribe("guide.routes.>", func(msg *nats.Msg) {
			mu.Lock()
			filter := category
			mu.Unlock()

			if filter != "" {
				var event struct {
					Category string `json:"category"`
				}
				if err := json.Unmarshal(msg.Data, &event); err != nil || event.Category != filter {
					return
				}
			}
			_ = writeJSON(json.RawMessage(msg.Data))
		})
		if err != nil {
			log.Printf("ws subscribe error: %v", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		// Read client messages for filter changes
		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}

			switch m.Action {
			case "filter":
				if m.Category == "" {
					_ = writeJSON(map[string]string{"error": "category is required for filter"})
					continue
				}
				mu.Lock()
				category = m.Category
				mu.Unlock()
				_ = writeJSON(map[string]string{"status": "filtered", "category": m.Category})

			case "clear":
				mu.Lock()
				category = ""
				mu.Unlock()
				_ = writeJSON(map[string]string{"status": "unfiltered"})

			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		close(done)
		log.Printf("ws client disconnected: %s", remoteAddr)
	}
}
