package room

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

type voteRequest struct {
	SongID string `json:"songId"`
}

func decodeVoteRequest(r *http.Request) (voteRequest, error) {
	var body voteRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return body, err
	}
	if body.SongID == "" {
		return body, errors.New("missing songId")
	}
	return body, nil
}

// handleTrackVote bumps a queued track up the ordering.
// POST /room/{roomId}/vote
func (s *Server) handleTrackVote(w http.ResponseWriter, r *http.Request) {
	req, ok := s.openRoom(w, r)
	if !ok {
		return
	}
	defer req.unlock()
	ctx := r.Context()

	body, err := decodeVoteRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vote request")
		return
	}

	t := req.room.FindTrack(body.SongID)
	if t == nil {
		writeError(w, http.StatusNotFound, ErrTrackNotFound.Error())
		return
	}

	req.room.AddTrackVote(req.voter, t)
	if err := req.room.Save(ctx, s.store, req.gw); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save room")
		return
	}

	s.publishEvent(ctx, "track.voted", map[string]any{
		"roomName": req.room.Name,
		"songId":   t.ID,
		"votes":    t.VotedToSkipUsers.Size(),
	})
	writeJSON(w, http.StatusOK, map[string]any{"votes": t.VotedToSkipUsers.Size()})
}

// handleTrackUnvote withdraws the caller's ordering vote.
// POST /room/{roomId}/unvote
func (s *Server) handleTrackUnvote(w http.ResponseWriter, r *http.Request) {
	req, ok := s.openRoom(w, r)
	if !ok {
		return
	}
	defer req.unlock()
	ctx := r.Context()

	body, err := decodeVoteRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid vote request")
		return
	}

	t := req.room.FindTrack(body.SongID)
	if t == nil {
		writeError(w, http.StatusNotFound, ErrTrackNotFound.Error())
		return
	}

	req.room.RemoveTrackVote(req.voter, t)
	if err := req.room.Save(ctx, s.store, req.gw); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save room")
		return
	}

	s.publishEvent(ctx, "track.unvoted", map[string]any{
		"roomName": req.room.Name,
		"songId":   t.ID,
		"votes":    t.VotedToSkipUsers.Size(),
	})
	writeJSON(w, http.StatusOK, map[string]any{"votes": t.VotedToSkipUsers.Size()})
}

// handleSkipVote registers a vote against the currently playing song.
// A double vote is reported back without being counted twice.
// POST /room/{roomId}/skip/vote
func (s *Server) handleSkipVote(w http.ResponseWriter, r *http.Request) {
	req, ok := s.openRoom(w, r)
	if !ok {
		return
	}
	defer req.unlock()
	ctx := r.Context()

	skipped, err := req.room.VoteToSkipCurrentSong(ctx, req.gw, req.voter)
	if errors.Is(err, ErrAlreadyVoted) {
		writeJSON(w, http.StatusOK, map[string]any{
			"alreadyVoted": true,
			"votes":        req.room.VotesToSkipCurrentSong.Size(),
		})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("room", req.room.Name).Msg("skip vote failed")
		writeError(w, http.StatusInternalServerError, "failed to skip current song")
		return
	}

	if err := req.room.Save(ctx, s.store, req.gw); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save room")
		return
	}

	if skipped {
		s.publishEvent(ctx, "song.skipped", map[string]any{"roomName": req.room.Name})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"skipped": skipped,
		"votes":   req.room.VotesToSkipCurrentSong.Size(),
	})
}

// handleSkipUnvote withdraws a skip vote; withdrawing a vote that was
// never cast is reported back, not failed.
// POST /room/{roomId}/skip/unvote
func (s *Server) handleSkipUnvote(w http.ResponseWriter, r *http.Request) {
	req, ok := s.openRoom(w, r)
	if !ok {
		return
	}
	defer req.unlock()
	ctx := r.Context()

	err := req.room.UnvoteToSkipCurrentSong(req.voter)
	if errors.Is(err, ErrAlreadyNotVoting) {
		writeJSON(w, http.StatusOK, map[string]any{
			"notVoting": true,
			"votes":     req.room.VotesToSkipCurrentSong.Size(),
		})
		return
	}

	if err := req.room.Save(ctx, s.store, req.gw); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save room")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"votes": req.room.VotesToSkipCurrentSong.Size(),
	})
}
