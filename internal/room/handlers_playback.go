package room

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// Transport controls are the owner's alone; guests steer playback through
// votes.

// POST /room/{roomId}/pause
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.ownerPlaybackAction(w, r, "pause", func(req *roomRequest) error {
		return req.gw.Pause(r.Context())
	})
}

// POST /room/{roomId}/play
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.ownerPlaybackAction(w, r, "play", func(req *roomRequest) error {
		return req.gw.Play(r.Context())
	})
}

// POST /room/{roomId}/skip
func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	s.ownerPlaybackAction(w, r, "skip", func(req *roomRequest) error {
		if err := req.gw.SkipToNext(r.Context()); err != nil {
			return err
		}
		// An owner skip settles the question the votes were asking.
		req.room.VotesToSkipCurrentSong.Clear()
		return nil
	})
}

func (s *Server) ownerPlaybackAction(w http.ResponseWriter, r *http.Request, action string, fn func(*roomRequest) error) {
	req, ok := s.openRoom(w, r)
	if !ok {
		return
	}
	defer req.unlock()
	ctx := r.Context()

	if !req.room.IsOwner(req.voter) {
		writeError(w, http.StatusForbidden, "only the room owner can control playback")
		return
	}

	if err := fn(req); err != nil {
		log.Error().Err(err).Str("room", req.room.Name).Str("action", action).Msg("playback control failed")
		writeError(w, http.StatusInternalServerError, "playback control failed")
		return
	}

	if err := req.room.Save(ctx, s.store, req.gw); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save room")
		return
	}

	s.publishEvent(ctx, "playback."+action, map[string]any{"roomName": req.room.Name})
	w.WriteHeader(http.StatusNoContent)
}
