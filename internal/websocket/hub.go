package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"sync"
)

// Event is pushed to the browser to tell it that its page is stale
type Event struct {
	Type    string `json:"type"`
	Section string `json:"section,omitempty"`
}

// RefreshEvent asks the page to reload the given section
func RefreshEvent(section string) Event {
	return Event{Type: "refresh", Section: section}
}

// Hub maintains the sockets of every browser session
type Hub struct {
	// Registered clients: session id -> set of sockets
	clients map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run processes registrations until ctx is cancelled, then closes every socket
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for sessionID, set := range h.clients {
				for c := range set {
					close(c.send)
				}
				delete(h.clients, sessionID)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.clients[client.SessionID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.SessionID] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()
			log.Printf("DEBUG: websocket connected for session %s", client.SessionID)

		case client := <-h.unregister:
			h.mu.Lock()
			if set, ok := h.clients[client.SessionID]; ok {
				if _, ok := set[client]; ok {
					delete(set, client)
					close(client.send)
				}
				if len(set) == 0 {
					delete(h.clients, client.SessionID)
				}
			}
			h.mu.Unlock()
			log.Printf("DEBUG: websocket disconnected for session %s", client.SessionID)
		}
	}
}

// Notify pushes an event to every socket of the session and returns how many
// sockets accepted it.
func (h *Hub) Notify(sessionID string, event Event) int {
	msg, err := json.Marshal(event)
	if err != nil {
		log.Printf("ERROR: failed to marshal websocket event: %v", err)
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := 0
	for client := range h.clients[sessionID] {
		select {
		case client.send <- msg:
			sent++
		default:
			// Buffer full or client dead
			log.Printf("WARN: dropping websocket event for session %s", sessionID)
		}
	}
	return sent
}

// Sessions lists the sessions that currently have at least one live socket
func (h *Hub) Sessions() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, 0, len(h.clients))
	for sessionID := range h.clients {
		out = append(out, sessionID)
	}
	sort.Strings(out)
	return out
}

// Connected reports whether the session has a live socket
func (h *Hub) Connected(sessionID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID]) > 0
}
