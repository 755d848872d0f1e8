package room

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/NoahFrank/pollify/internal/owner"
	"github.com/NoahFrank/pollify/internal/spotify"
)

// roomView is the JSON shape a guest sees when loading a room.
type roomView struct {
	RoomName                     string                 `json:"roomName"`
	IsOwner                      bool                   `json:"isOwner"`
	Active                       bool                   `json:"active"`
	Queue                        []TrackView            `json:"queue"`
	Users                        []string               `json:"users"`
	CurrentPlayback              *spotify.PlaybackState `json:"currentPlayback"`
	VotesToSkipCurrentSong       int                    `json:"votesToSkipCurrentSong"`
	ViewerVotedToSkipCurrentSong bool                   `json:"viewerVotedToSkipCurrentSong"`
}

// handleCreateRoom spins up a room for an authorized owner session.
// POST /rooms
func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	voter, err := s.sessions.Ensure(w, r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to establish session")
		return
	}

	o, err := s.owners.GetBySession(ctx, voter)
	if errors.Is(err, owner.ErrNotFound) {
		writeError(w, http.StatusForbidden, "authorize with spotify before creating a room")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("owner lookup failed")
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	rm, err := Create(ctx, s.store, s.gateway(o), *o)
	if err != nil {
		log.Error().Err(err).Msg("room creation failed")
		writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}
	rm.AddUser(voter)
	if err := rm.Save(ctx, s.store, s.gateway(o)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save room")
		return
	}

	s.publishEvent(ctx, "room.created", map[string]any{"roomName": rm.Name})
	writeJSON(w, http.StatusCreated, map[string]any{"roomName": rm.Name})
}

// handleGetRoom joins the caller to the roster and renders the room state.
// GET /room/{roomId}
func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	req, ok := s.openRoom(w, r)
	if !ok {
		return
	}
	defer req.unlock()
	ctx := r.Context()
	rm := req.room

	rm.AddUser(req.voter)

	if !rm.IsPlaylistCreated() {
		log.Error().Str("room", rm.Name).Msg("room has no linked playlist, that's a huge problem")
		writeError(w, http.StatusInternalServerError, ErrNoPlaylist.Error())
		return
	}

	playback, err := rm.CurrentPlayback(ctx, req.gw)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get current playback")
		return
	}
	rm.UpdateRoomStatus(playback)

	if err := rm.Save(ctx, s.store, req.gw); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save room")
		return
	}

	queue := make([]TrackView, 0, len(rm.TrackList))
	for _, t := range rm.TrackList {
		queue = append(queue, BuildTrackView(t, req.voter))
	}

	writeJSON(w, http.StatusOK, roomView{
		RoomName:                     rm.Name,
		IsOwner:                      rm.IsOwner(req.voter),
		Active:                       rm.Active,
		Queue:                        queue,
		Users:                        rm.Users.Members(),
		CurrentPlayback:              playback,
		VotesToSkipCurrentSong:       rm.VotesToSkipCurrentSong.Size(),
		ViewerVotedToSkipCurrentSong: rm.VotesToSkipCurrentSong.Has(req.voter),
	})
}

// handleLeaveRoom drops the caller from the roster.
// POST /room/{roomId}/leave
func (s *Server) handleLeaveRoom(w http.ResponseWriter, r *http.Request) {
	req, ok := s.openRoom(w, r)
	if !ok {
		return
	}
	defer req.unlock()

	req.room.RemoveUser(req.voter)
	if err := req.room.Save(r.Context(), s.store, req.gw); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save room")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
