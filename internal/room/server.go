package room

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/NoahFrank/pollify/internal/owner"
	"github.com/NoahFrank/pollify/internal/session"
)

// OwnerDirectory resolves the owner credentials behind a browser session.
type OwnerDirectory interface {
	GetBySession(ctx context.Context, sessionID string) (*owner.Owner, error)
}

// Server wires the room core to HTTP. Routing, cookies and JSON shaping
// live here; all queue semantics stay in the Room methods.
type Server struct {
	store    Store
	rdb      *redis.Client
	sessions *session.Manager
	owners   OwnerDirectory
	gateway  GatewayFactory
	locks    *Locker
}

func NewServer(store Store, rdb *redis.Client, sessions *session.Manager, owners OwnerDirectory, gateway GatewayFactory) *Server {
	return &Server{
		store:    store,
		rdb:      rdb,
		sessions: sessions,
		owners:   owners,
		gateway:  gateway,
		locks:    NewLocker(),
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Post("/rooms", s.handleCreateRoom)

	r.Route("/room/{roomId}", func(r chi.Router) {
		r.Get("/", s.handleGetRoom)
		r.Post("/leave", s.handleLeaveRoom)

		r.Post("/vote", s.handleTrackVote)
		r.Post("/unvote", s.handleTrackUnvote)

		r.Post("/skip/vote", s.handleSkipVote)
		r.Post("/skip/unvote", s.handleSkipUnvote)

		r.Post("/pause", s.handlePause)
		r.Post("/play", s.handlePlay)
		r.Post("/skip", s.handleSkip)

		r.Get("/add/{trackId}", s.handleTrackAdd)
		r.Post("/remove/{trackId}", s.handleTrackRemove)
		r.Post("/remove/{trackId}/vote", s.handleTrackRemoveVote)
		r.Post("/remove/{trackId}/unvote", s.handleTrackRemoveUnvote)

		r.Post("/search", s.handleSearch)
		r.Post("/getArtistTopTracks/{artistId}", s.handleArtistTopTracks)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "pollify",
	})
}

// roomRequest is the shared prologue for every room-scoped handler: a
// voter identity (minting a session cookie on first contact), the room
// lock held for the whole operation, and the loaded snapshot.
type roomRequest struct {
	room   *Room
	gw     Gateway
	voter  string
	unlock func()
}

func (s *Server) openRoom(w http.ResponseWriter, r *http.Request) (*roomRequest, bool) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		writeError(w, http.StatusBadRequest, "missing room id")
		return nil, false
	}

	voter, err := s.sessions.Ensure(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to establish session")
		return nil, false
	}

	unlock := s.locks.Lock(roomID)

	rm, err := Get(r.Context(), s.store, roomID)
	if err != nil {
		unlock()
		if NotFound(err) {
			writeError(w, http.StatusNotFound, "room not found")
		} else {
			writeError(w, http.StatusInternalServerError, "storage error")
		}
		return nil, false
	}

	return &roomRequest{
		room:   rm,
		gw:     s.gateway(&rm.Owner),
		voter:  voter,
		unlock: unlock,
	}, true
}
