// Package live pushes attendance and result updates to websocket
// subscribers. Clients join a per-match room and receive events as the
// ledger and statistics change.
package live

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"
)

// Event types broadcast to match rooms.
const (
	EventAttendanceUpdated = "attendance.updated"
	EventPlayerPromoted    = "player.promoted"
	EventMatchFinalized    = "match.finalized"
)

type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
	RoomID  string      `json:"room_id,omitempty"`
}

// Publisher is the side of the hub services talk to. Broadcasts are
// fire-and-forget: a slow or absent subscriber never fails a request.
type Publisher interface {
	PublishMatchEvent(matchID int, eventType string, payload interface{})
}

type Hub struct {
	Register   chan *Client
	Unregister chan *Client
	rooms      map[string]map[*Client]bool
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

func MatchRoom(matchID int) string {
	return "match_" + strconv.Itoa(matchID)
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.rooms[client.Room]; !ok {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if roomClients, ok := h.rooms[client.Room]; ok {
				if _, okClient := roomClients[client]; okClient {
					client.Mu.Lock()
					if !client.IsClosed {
						close(client.Send)
						client.IsClosed = true
					}
					client.Mu.Unlock()
					delete(roomClients, client)
					if len(roomClients) == 0 {
						delete(h.rooms, client.Room)
					}
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) PublishMatchEvent(matchID int, eventType string, payload interface{}) {
	h.BroadcastToRoom(MatchRoom(matchID), Message{
		Type:    eventType,
		Payload: payload,
		RoomID:  MatchRoom(matchID),
	})
}

// BroadcastToRoom sends a message to all clients in the given room.
func (h *Hub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshalling message for room %s: %v", roomID, err)
		return
	}

	for client := range roomClients {
		client.Mu.Lock()
		if client.IsClosed {
			client.Mu.Unlock()
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			// Client's send buffer is full; drop rather than block the hub.
		}
		client.Mu.Unlock()
	}
}
