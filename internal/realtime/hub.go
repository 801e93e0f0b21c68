package realtime

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// Hub groups live clients into tenant-scoped broadcast rooms. It holds no
// ambient global state; the coordinator owns the single instance.
type Hub struct {
	mu    sync.RWMutex
	rooms map[uuid.UUID]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[uuid.UUID]map[*Client]struct{})}
}

// Join subscribes a client to its tenant's room.
func (h *Hub) Join(tenantID uuid.UUID, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[tenantID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[tenantID] = room
	}
	room[client] = struct{}{}
}

// Leave removes a client from its room, dropping the room when empty.
// Safe to call for clients that never joined.
func (h *Hub) Leave(client *Client) {
	tenant := client.Tenant()
	if tenant == nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[tenant.ID]
	if !ok {
		return
	}
	delete(room, client)
	if len(room) == 0 {
		delete(h.rooms, tenant.ID)
	}
}

// Broadcast fans a message out to every member of the tenant room except
// the sender. Delivery is best-effort: a member with a full send buffer is
// skipped rather than blocking the room.
func (h *Hub) Broadcast(tenantID uuid.UUID, sender *Client, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[tenantID] {
		if client == sender {
			continue
		}
		if !client.enqueue(message) {
			log.Printf("Dropping broadcast for slow connection %s", client.ConnectionID())
		}
	}
}

// RoomSize returns the current number of members in a tenant room.
func (h *Hub) RoomSize(tenantID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[tenantID])
}
