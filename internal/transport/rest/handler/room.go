package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"triviarooms/internal/cache"
	"triviarooms/internal/game"
	"triviarooms/internal/model"
	"triviarooms/internal/service"
)

// RoomHandler handles the room HTTP endpoints.
type RoomHandler struct {
	game *service.GameService
}

// NewRoomHandler creates a new room handler.
func NewRoomHandler(gameSvc *service.GameService) *RoomHandler {
	return &RoomHandler{game: gameSvc}
}

// HealthCheck handles GET /healthCheck.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// CreateRoomRequest is the request body for creating a room.
type CreateRoomRequest struct {
	PlayerName   string           `json:"playerName"`
	NumQuestions int              `json:"numQuestions"`
	CategoryID   int              `json:"categoryId"`
	Difficulty   model.Difficulty `json:"difficulty"`
	TimeLimit    int              `json:"timeLimit"` // seconds
}

// Create handles POST /createRoom.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Need to specify a playerName", http.StatusBadRequest)
		return
	}

	room, token, err := h.game.CreateRoom(r.Context(), req.PlayerName, req.NumQuestions, req.CategoryID, req.Difficulty, req.TimeLimit)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			http.Error(w, "Need to specify a playerName", http.StatusBadRequest)
			return
		}
		http.Error(w, "Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"roomId":     room.ID,
		"playerName": req.PlayerName,
		"token":      token,
	})
}

// JoinRoomRequest is the request body for the join pre-check.
type JoinRoomRequest struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// Join handles POST /joinRoom. It validates the join; the seat itself is
// taken over the socket.
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req JoinRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Need to specify a roomId and playerName", http.StatusBadRequest)
		return
	}
	req.RoomID = strings.ToUpper(req.RoomID)

	token, err := h.game.JoinCheck(r.Context(), req.RoomID, req.PlayerName)
	if err != nil {
		switch {
		case errors.Is(err, cache.ErrRoomNotFound):
			http.Error(w, "Room not found", http.StatusBadRequest)
		case errors.Is(err, game.ErrNameTaken):
			http.Error(w, "Player name taken", http.StatusBadRequest)
		case errors.Is(err, game.ErrRoomFull):
			http.Error(w, "Room full", http.StatusLocked)
		case errors.Is(err, service.ErrInvalidInput):
			http.Error(w, "Need to specify a roomId and playerName", http.StatusBadRequest)
		default:
			http.Error(w, "Server Error", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"roomId":     req.RoomID,
		"playerName": req.PlayerName,
		"token":      token,
	})
}

// Get handles GET /rooms/{roomId}.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	room, err := h.game.RoomSnapshot(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, cache.ErrRoomNotFound) {
			writeError(w, http.StatusNotFound, "Room not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to fetch room data")
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// GameOver handles GET /game-over/{roomId}.
func (h *RoomHandler) GameOver(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	room, err := h.game.FinishedRoom(r.Context(), roomID)
	if err != nil {
		if errors.Is(err, cache.ErrRoomNotFound) {
			http.Error(w, "Room not found", http.StatusBadRequest)
			return
		}
		http.Error(w, "Server Error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, room)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
