package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"triviarooms/internal/game"
	"triviarooms/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced on the HTTP surface
	},
}

// Handler upgrades HTTP requests to WebSocket connections and dispatches
// inbound socket events to the game service.
type Handler struct {
	hub  *Hub
	game *service.GameService
}

// NewHandler creates a new WebSocket handler.
func NewHandler(hub *Hub, gameSvc *service.GameService) *Handler {
	return &Handler{hub: hub, game: gameSvc}
}

// Serve handles GET /ws.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade error: %v", err)
		return
	}

	connID := uuid.NewString()
	if !h.game.Connect(connID) {
		// Duplicate registration of the same id; drop the connection.
		log.Printf("[ws] duplicate connection id %s, dropping", connID)
		wsConn.Close()
		return
	}

	conn := &Connection{ID: connID, Send: make(chan []byte, 256)}
	h.hub.Register(conn)
	log.Printf("[ws] connected: %s", connID)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.game.Disconnect(conn.ID)
		h.hub.Unregister(conn)
		wsConn.Close()
		log.Printf("[ws] disconnected: %s", conn.ID)
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] read error on %s: %v", conn.ID, err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.sendInvalid(conn.ID)
			continue
		}
		h.dispatch(conn.ID, msg)
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wsConn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

type joinPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type startPayload struct {
	RoomID string `json:"roomId"`
}

type answerPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	Points     int    `json:"points"`
	AnswerTime int    `json:"answerTime"` // ms
}

type chatPayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
	User    string `json:"user"`
}

type reconnectPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	Token      string `json:"token,omitempty"`
}

func (h *Handler) dispatch(connID string, msg Message) {
	ctx := context.Background()

	switch msg.Type {
	case "hostJoin":
		var p joinPayload
		if !h.decode(connID, msg.Payload, &p) {
			return
		}
		h.game.HostJoin(ctx, connID, p.RoomID, p.PlayerName)

	case "joinRoom":
		var p joinPayload
		if !h.decode(connID, msg.Payload, &p) {
			return
		}
		h.game.PlayerJoin(ctx, connID, p.RoomID, p.PlayerName)

	case "startGame":
		var p startPayload
		if !h.decode(connID, msg.Payload, &p) {
			return
		}
		h.game.StartGame(ctx, connID, p.RoomID)

	case "submitAnswer":
		var p answerPayload
		if !h.decode(connID, msg.Payload, &p) {
			return
		}
		h.game.SubmitAnswer(ctx, connID, p.RoomID, p.PlayerName, p.Points, p.AnswerTime)

	case "sendMessage":
		var p chatPayload
		if !h.decode(connID, msg.Payload, &p) {
			return
		}
		h.game.Chat(ctx, connID, p.RoomID, p.User, p.Message)

	case "reconnect":
		var p reconnectPayload
		if !h.decode(connID, msg.Payload, &p) {
			return
		}
		h.game.Reconnect(ctx, connID, p.RoomID, p.PlayerName, p.Token)

	default:
		log.Printf("[ws] unknown event %q from %s", msg.Type, connID)
	}
}

func (h *Handler) decode(connID string, payload json.RawMessage, v interface{}) bool {
	if err := json.Unmarshal(payload, v); err != nil {
		h.sendInvalid(connID)
		return false
	}
	return true
}

func (h *Handler) sendInvalid(connID string) {
	h.hub.SendToConnection(connID, game.EvtError, game.ErrorPayload{
		Message: "Invalid event payload",
		Code:    "INVALID_INPUT",
	})
}
