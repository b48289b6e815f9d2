package service

// Broadcaster is the outbound side of the transport (avoids an import
// cycle with the websocket hub). JoinRoom must take effect before a
// subsequent BroadcastToRoom so a joiner sees its own join notification.
type Broadcaster interface {
	JoinRoom(connID, roomID string)
	BroadcastToRoom(roomID string, msgType string, payload interface{})
	SendToConnection(connID string, msgType string, payload interface{})
}
