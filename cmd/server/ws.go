package main

import (
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"ktcompanion/internal/app"
	"ktcompanion/internal/text"
)

// ========================= State Push =========================
// Connected UIs get a full snapshot after every mutation; the browser
// never polls. This is a local UI transport, not multiplayer.

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// WsMsg is the websocket envelope.
type WsMsg struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type client struct {
	conn *websocket.Conn
	lang string
	mu   sync.Mutex // serializes writes
}

func (c *client) send(msg WsMsg) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

type hub struct {
	app         *app.App
	defaultLang string

	mu      sync.Mutex
	clients map[*client]struct{}
}

func newHub(a *app.App, defaultLang string) *hub {
	return &hub{
		app:         a,
		defaultLang: defaultLang,
		clients:     map[*client]struct{}{},
	}
}

func (h *hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade: %v", err)
		return
	}
	c := &client{conn: conn, lang: text.MatchLang(r, h.defaultLang)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	// Initial state so the UI can render immediately.
	if err := c.send(WsMsg{Type: "state", Data: h.app.Snapshot(c.lang)}); err != nil {
		h.drop(c)
		return
	}

	// Reads are only used to detect disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				h.drop(c)
				return
			}
		}
	}()
}

func (h *hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.conn.Close()
}

// broadcast pushes a fresh snapshot to every client in its own
// language. Installed as the controller's onChange hook.
func (h *hub) broadcast() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		if err := c.send(WsMsg{Type: "state", Data: h.app.Snapshot(c.lang)}); err != nil {
			h.drop(c)
		}
	}
}
