package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"triviarooms/internal/service"
	"triviarooms/internal/transport/rest/handler"
	"triviarooms/internal/transport/ws"
)

// Container holds the router's dependencies.
type Container struct {
	Game          *service.GameService
	WSHandler     *ws.Handler
	AllowedOrigin string
}

// NewRouter creates the HTTP router with all endpoints.
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	roomHandler := handler.NewRoomHandler(c.Game)

	r.Use(corsMiddleware(c.AllowedOrigin))

	r.HandleFunc("/healthCheck", handler.HealthCheck).Methods("GET")
	r.HandleFunc("/createRoom", roomHandler.Create).Methods("POST", "OPTIONS")
	r.HandleFunc("/joinRoom", roomHandler.Join).Methods("POST", "OPTIONS")
	r.HandleFunc("/rooms/{roomId}", roomHandler.Get).Methods("GET")
	r.HandleFunc("/game-over/{roomId}", roomHandler.GameOver).Methods("GET")

	r.HandleFunc("/ws", c.WSHandler.Serve).Methods("GET")

	return r
}

func corsMiddleware(origin string) mux.MiddlewareFunc {
	if origin == "" {
		origin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
