package ws

import (
	"encoding/json"
	"log"
)

// Message is the WebSocket envelope format.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Connection represents one WebSocket client.
type Connection struct {
	ID   string
	Send chan []byte

	roomID string // owned by the hub loop
}

// Hub manages connections and room membership. All map access happens on
// the single run loop, fed through one command channel, so membership
// changes and broadcasts are applied in submission order: a JoinRoom
// enqueued before a BroadcastToRoom is visible to that broadcast.
type Hub struct {
	conns    map[string]*Connection            // connID -> conn
	rooms    map[string]map[string]*Connection // roomID -> connID -> conn
	commands chan func()
}

// NewHub creates a hub and starts its run loop.
func NewHub() *Hub {
	h := &Hub{
		conns:    make(map[string]*Connection),
		rooms:    make(map[string]map[string]*Connection),
		commands: make(chan func(), 256),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for cmd := range h.commands {
		cmd()
	}
}

// Register adds a connection.
func (h *Hub) Register(conn *Connection) {
	h.commands <- func() {
		h.conns[conn.ID] = conn
	}
}

// Unregister removes a connection and closes its send channel.
func (h *Hub) Unregister(conn *Connection) {
	h.commands <- func() {
		existing, ok := h.conns[conn.ID]
		if !ok || existing != conn {
			return
		}
		delete(h.conns, conn.ID)
		h.leaveRoom(conn)
		close(conn.Send)
	}
}

// JoinRoom subscribes the connection to a room's broadcasts (implements
// service.Broadcaster).
func (h *Hub) JoinRoom(connID, roomID string) {
	h.commands <- func() {
		conn, ok := h.conns[connID]
		if !ok {
			return
		}
		h.leaveRoom(conn)
		conn.roomID = roomID
		if h.rooms[roomID] == nil {
			h.rooms[roomID] = make(map[string]*Connection)
		}
		h.rooms[roomID][connID] = conn
	}
}

// BroadcastToRoom sends an event to every connection in the room
// (implements service.Broadcaster).
func (h *Hub) BroadcastToRoom(roomID string, msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		log.Printf("[ws] failed to encode %s: %v", msgType, err)
		return
	}
	h.commands <- func() {
		for _, conn := range h.rooms[roomID] {
			h.send(conn, data)
		}
	}
}

// SendToConnection sends an event to a single connection (implements
// service.Broadcaster).
func (h *Hub) SendToConnection(connID string, msgType string, payload interface{}) {
	data, err := encode(msgType, payload)
	if err != nil {
		log.Printf("[ws] failed to encode %s: %v", msgType, err)
		return
	}
	h.commands <- func() {
		if conn, ok := h.conns[connID]; ok {
			h.send(conn, data)
		}
	}
}

// leaveRoom drops the connection from its current room. Run-loop only.
func (h *Hub) leaveRoom(conn *Connection) {
	if conn.roomID == "" {
		return
	}
	if members, ok := h.rooms[conn.roomID]; ok {
		delete(members, conn.ID)
		if len(members) == 0 {
			delete(h.rooms, conn.roomID)
		}
	}
	conn.roomID = ""
}

func (h *Hub) send(conn *Connection, data []byte) {
	select {
	case conn.Send <- data:
	default:
		// Drop the message if the client's buffer is full.
	}
}

func encode(msgType string, payload interface{}) ([]byte, error) {
	msg := Message{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		msg.Payload = data
	}
	return json.Marshal(msg)
}
