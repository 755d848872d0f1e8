package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	// Same-origin deployments sit behind the app itself; tighten this when
	// serving the frontend from another host.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Server struct {
	hub *Hub
	rdb *redis.Client
}

func NewServer(hub *Hub, rdb *redis.Client) *Server {
	return &Server{hub: hub, rdb: rdb}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/ws", s.HandleWS)

	return r
}

// RunRedisSubscriber pumps the shared "broadcast" channel into the hub
// until ctx is cancelled.
func (s *Server) RunRedisSubscriber(ctx context.Context) {
	sub := s.rdb.Subscribe(ctx, "broadcast")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.hub.broadcast <- []byte(msg.Payload)
		}
	}
}

// HandleWS upgrades the request and hands the connection to the hub. It is
// exported so the main router can place it at /ws directly.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade failed")
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.hub.register <- client

	welcome := map[string]any{
		"type": "welcome",
		"now":  time.Now().UTC().Format(time.RFC3339Nano),
	}
	if b, err := json.Marshal(welcome); err == nil {
		client.send <- b
	}

	go client.writePump()
	go client.readPump()
}
