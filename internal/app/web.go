package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/enviro-link/lora_telemetry/internal/config"
	"github.com/enviro-link/lora_telemetry/internal/telemetry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// readingHub fans the latest reading out to the JSON endpoint and to any
// connected websocket clients.
type readingHub struct {
	mu          sync.RWMutex
	lastReading telemetry.Reading
	haveReading bool
	clients     map[*websocket.Conn]bool
}

func newReadingHub() *readingHub {
	return &readingHub{clients: make(map[*websocket.Conn]bool)}
}

func (h *readingHub) update(r telemetry.Reading, body []byte) {
	h.mu.Lock()
	h.lastReading = r
	h.haveReading = true
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, body); err != nil {
			h.drop(c)
		}
	}
}

func (h *readingHub) add(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *readingHub) drop(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.Close()
}

func (h *readingHub) latest() (telemetry.Reading, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastReading, h.haveReading
}

// RunWeb subscribes to the readings topic and serves the latest reading as
// JSON plus a live websocket stream.
func RunWeb(cfg *config.Config) error {
	hub := newReadingHub()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	token := client.Subscribe(cfg.TopicReadings, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r telemetry.Reading
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("web: reading unmarshal error: %v", err)
			return
		}
		hub.update(r, msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.TopicReadings)

	http.HandleFunc("/api/reading", func(w http.ResponseWriter, r *http.Request) {
		reading, ok := hub.latest()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(reading); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		// Push the latest reading before the connection joins the
		// broadcast set, so new clients are not left waiting for the
		// next cycle and the two writes cannot interleave.
		if reading, ok := hub.latest(); ok {
			if body, err := json.Marshal(reading); err == nil {
				if err := conn.WriteMessage(websocket.TextMessage, body); err != nil {
					conn.Close()
					return
				}
			}
		}
		hub.add(conn)

		// Drain (and discard) client frames to notice disconnects.
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					hub.drop(conn)
					return
				}
			}
		}()
	})

	addr := fmt.Sprintf(":%d", cfg.WebServerPort)
	log.Printf("web server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
