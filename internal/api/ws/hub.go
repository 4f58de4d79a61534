package ws

import (
	"fmt"
	"sync"
)

// Hub tracks which clients are in which rooms. Rooms are chat ids plus one
// personal room per connected user. Membership lives only in memory; after a
// restart clients rejoin on reconnect.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Client]bool
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]bool),
	}
}

// PersonalRoom is the room a client joins on setup, used for events targeted
// at one user rather than one chat.
func PersonalRoom(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][c] = true
	c.rooms[room] = true
}

func (h *Hub) Leave(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(room, c)
}

// Unregister drops the client from every room it joined.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room := range c.rooms {
		h.leaveLocked(room, c)
	}
}

func (h *Hub) leaveLocked(room string, c *Client) {
	if clients, ok := h.rooms[room]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(c.rooms, room)
}

// Broadcast sends the payload to every client in the room except the sender.
// The sender already holds the data from the synchronous API response.
func (h *Hub) Broadcast(room string, payload []byte, sender *Client) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if c == sender {
			continue
		}
		select {
		case c.Send <- payload:
		default:
			// Slow consumer; drop rather than block the relay.
		}
	}
}
