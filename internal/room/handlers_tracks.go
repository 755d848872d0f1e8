package room

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/NoahFrank/pollify/internal/spotify"
)

// handleTrackAdd hydrates a track from the catalogue and queues it.
// Duplicates are acknowledged without touching the remote playlist.
// GET /room/{roomId}/add/{trackId}
func (s *Server) handleTrackAdd(w http.ResponseWriter, r *http.Request) {
	req, ok := s.openRoom(w, r)
	if !ok {
		return
	}
	defer req.unlock()
	ctx := r.Context()

	trackID := chi.URLParam(r, "trackId")
	if trackID == "" {
		writeError(w, http.StatusBadRequest, "missing track id")
		return
	}

	t := NewTrack(req.voter)
	if err := t.PopulateFromRemote(ctx, req.gw, trackID); err != nil {
		if errors.Is(err, spotify.ErrNotFound) {
			writeError(w, http.StatusNotFound, "track not found")
			return
		}
		log.Error().Err(err).Str("trackId", trackID).Msg("track hydration failed")
		writeError(w, http.StatusInternalServerError, "failed to look up track")
		return
	}

	if !req.room.AddTrackToTrackList(t) {
		writeJSON(w, http.StatusOK, map[string]any{"duplicate": true, "songId": t.ID})
		return
	}

	if err := req.gw.AddTracksToPlaylist(ctx, req.room.PlaylistID, []string{t.ResolvedURI()}); err != nil {
		// Queue membership is already decided; the playlist catches up on
		// the next reconcile.
		log.Error().Err(err).Str("room", req.room.Name).Str("trackId", t.ID).Msg("remote playlist add failed")
	}

	if err := req.room.Save(ctx, s.store, req.gw); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save room")
		return
	}

	s.publishEvent(ctx, "track.added", map[string]any{
		"roomName": req.room.Name,
		"songId":   t.ID,
		"name":     t.Name,
	})
	writeJSON(w, http.StatusOK, BuildTrackView(t, req.voter))
}

// handleTrackRemove is the owner's veto: the track goes immediately, no
// vote needed.
// POST /room/{roomId}/remove/{trackId}
func (s *Server) handleTrackRemove(w http.ResponseWriter, r *http.Request) {
	req, ok := s.openRoom(w, r)
	if !ok {
		return
	}
	defer req.unlock()
	ctx := r.Context()

	if !req.room.IsOwner(req.voter) {
		writeError(w, http.StatusForbidden, "only the room owner can remove tracks directly")
		return
	}

	trackID := chi.URLParam(r, "trackId")
	if err := req.room.RemoveTrack(ctx, req.gw, trackID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove track")
		return
	}

	if err := req.room.Save(ctx, s.store, req.gw); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save room")
		return
	}

	s.publishEvent(ctx, "track.removed", map[string]any{
		"roomName": req.room.Name,
		"songId":   trackID,
	})
	w.WriteHeader(http.StatusNoContent)
}

// handleTrackRemoveVote casts a removal vote; a majority evicts the track.
// POST /room/{roomId}/remove/{trackId}/vote
func (s *Server) handleTrackRemoveVote(w http.ResponseWriter, r *http.Request) {
	req, ok := s.openRoom(w, r)
	if !ok {
		return
	}
	defer req.unlock()
	ctx := r.Context()

	trackID := chi.URLParam(r, "trackId")
	t := req.room.FindTrack(trackID)
	if t == nil {
		writeError(w, http.StatusNotFound, ErrTrackNotFound.Error())
		return
	}

	removed, err := req.room.VoteToRemoveTrack(ctx, req.gw, req.voter, t)
	if errors.Is(err, ErrAlreadyVoted) {
		writeJSON(w, http.StatusOK, map[string]any{
			"alreadyVoted": true,
			"votes":        t.VotedToRemoveUsers.Size(),
		})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to register removal vote")
		return
	}

	if err := req.room.Save(ctx, s.store, req.gw); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save room")
		return
	}

	if removed {
		s.publishEvent(ctx, "track.removed", map[string]any{
			"roomName": req.room.Name,
			"songId":   trackID,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"removed": removed,
		"votes":   t.VotedToRemoveUsers.Size(),
	})
}

// handleTrackRemoveUnvote withdraws a removal vote.
// POST /room/{roomId}/remove/{trackId}/unvote
func (s *Server) handleTrackRemoveUnvote(w http.ResponseWriter, r *http.Request) {
	req, ok := s.openRoom(w, r)
	if !ok {
		return
	}
	defer req.unlock()
	ctx := r.Context()

	trackID := chi.URLParam(r, "trackId")
	t := req.room.FindTrack(trackID)
	if t == nil {
		writeError(w, http.StatusNotFound, ErrTrackNotFound.Error())
		return
	}

	err := req.room.UnvoteToRemoveTrack(req.voter, t)
	if errors.Is(err, ErrAlreadyNotVoting) {
		writeJSON(w, http.StatusOK, map[string]any{
			"notVoting": true,
			"votes":     t.VotedToRemoveUsers.Size(),
		})
		return
	}

	if err := req.room.Save(ctx, s.store, req.gw); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save room")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"votes": t.VotedToRemoveUsers.Size(),
	})
}
