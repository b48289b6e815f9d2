package game

import "sync"

// ConnectionRegistry tracks live transport connections and which room each
// one joined. Registration is deduplicated: a connection id that is already
// registered is refused, and the transport drops the second connection.
type ConnectionRegistry struct {
	mu    sync.Mutex
	rooms map[string]string // connID -> roomID, "" until the conn joins one
}

// NewConnectionRegistry creates an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{rooms: make(map[string]string)}
}

// Register records a new connection. It returns false if the id is already
// registered.
func (r *ConnectionRegistry) Register(connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[connID]; ok {
		return false
	}
	r.rooms[connID] = ""
	return true
}

// Bind records which room the connection joined.
func (r *ConnectionRegistry) Bind(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[connID]; ok {
		r.rooms[connID] = roomID
	}
}

// Unregister removes the connection and returns the room it was bound to,
// if any.
func (r *ConnectionRegistry) Unregister(connID string) (roomID string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	roomID, ok = r.rooms[connID]
	delete(r.rooms, connID)
	return roomID, ok && roomID != ""
}

// RoomConnections counts the connections currently bound to the room.
func (r *ConnectionRegistry) RoomConnections(roomID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, room := range r.rooms {
		if room == roomID {
			n++
		}
	}
	return n
}
