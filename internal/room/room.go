// Package room holds the party-voting core: the shared queue, its vote
// ledgers, and the reconciliation that keeps a vote-ordered local list
// convergent with a remote playlist that has no queue concept of its own.
package room

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/NoahFrank/pollify/internal/owner"
	"github.com/NoahFrank/pollify/internal/spotify"
)

// Room is one voting session: an owner's credentials, a mirrored remote
// playlist, the vote-ordered queue, and the roster of joined voters.
type Room struct {
	Name       string      `json:"name"`
	Owner      owner.Owner `json:"owner"`
	PlaylistID string      `json:"playlistId"`

	TrackList []*Track  `json:"trackList"`
	Users     *VoterSet `json:"users"`

	VotesToSkipCurrentSong *VoterSet `json:"votesToSkipCurrentSong"`

	CurrentPlaybackState *spotify.PlaybackState `json:"currentPlaybackState,omitempty"`

	// Active is true while the owner's playback is actually pointed at
	// this room's playlist rather than their normal listening.
	Active bool `json:"active"`
}

// New builds an empty, inactive room for the owner. The caller is expected
// to have resolved a collision-free name via GenerateName.
func New(name string, o owner.Owner) *Room {
	return &Room{
		Name:                   name,
		Owner:                  o,
		TrackList:              []*Track{},
		Users:                  NewVoterSet(),
		VotesToSkipCurrentSong: NewVoterSet(),
	}
}

// Create makes a new room for the owner, generates a collision-checked
// name, mirrors it as a fresh playlist on the owner's account, and
// persists the result.
func Create(ctx context.Context, store Store, gw Gateway, o owner.Owner) (*Room, error) {
	name, err := GenerateName(ctx, store)
	if err != nil {
		return nil, err
	}
	r := New(name, o)

	pl, err := gw.CreatePlaylist(ctx, name)
	if err != nil {
		return nil, err
	}
	r.PlaylistID = pl.ID

	if err := r.Save(ctx, store, gw); err != nil {
		return nil, err
	}
	log.Info().Str("room", r.Name).Str("playlist", r.PlaylistID).Msg("created room")
	return r, nil
}

// Get loads a room snapshot from the injected store.
func Get(ctx context.Context, store Store, roomID string) (*Room, error) {
	r, err := store.Get(ctx, roomID)
	if err != nil {
		log.Error().Err(err).Str("room", roomID).Msg("failed to get room")
		return nil, err
	}
	log.Debug().Str("room", r.Name).Msg("found room")
	return r, nil
}

// Save reconciles the queue ordering and then writes the full room
// snapshot back to the store. Reconciliation runs first so readers always
// observe a consistent order; its remote-mirror failures are logged and
// swallowed so a provider hiccup never blocks recording a vote.
func (r *Room) Save(ctx context.Context, store Store, gw Gateway) error {
	if err := r.reconcileQueue(ctx, gw); err != nil {
		log.Error().Err(err).Str("room", r.Name).Msg("queue reconciliation failed, keeping local order")
	}
	if err := store.Set(ctx, r); err != nil {
		log.Error().Err(err).Str("room", r.Name).Msg("failed to save room")
		return err
	}
	return nil
}

// IsPlaylistCreated reports whether the remote mirror exists yet.
func (r *Room) IsPlaylistCreated() bool {
	return r.PlaylistID != ""
}

// IsOwner reports whether the acting voter is the room owner's session.
func (r *Room) IsOwner(voter string) bool {
	return voter != "" && voter == r.Owner.SessionID
}

// AddUser joins a voter to the roster. Idempotent.
func (r *Room) AddUser(voter string) {
	if voter == "" {
		return
	}
	r.Users.Add(voter)
}

// RemoveUser drops a voter from the roster. Their recorded votes stay; the
// threshold denominators only count joined users.
func (r *Room) RemoveUser(voter string) {
	r.Users.Remove(voter)
}

// FindTrack returns the queued track with the given id, or nil.
func (r *Room) FindTrack(trackID string) *Track {
	for _, t := range r.TrackList {
		if t.ID == trackID {
			return t
		}
	}
	return nil
}

// AddTrackToTrackList appends the track unless one with the same id is
// already queued. Callers must check this result BEFORE mirroring the add
// remotely, so a duplicate never reaches the provider playlist.
func (r *Room) AddTrackToTrackList(t *Track) bool {
	if r.FindTrack(t.ID) != nil {
		return false
	}
	r.TrackList = append(r.TrackList, t)
	return true
}

// RemoveTrack splices the track out of the queue and mirrors the removal
// to the remote playlist. A remote failure does not roll back the local
// removal; the divergence is logged and the next reconcile narrows it.
// Removing an id that is not queued is a no-op.
func (r *Room) RemoveTrack(ctx context.Context, gw Gateway, trackID string) error {
	var removed *Track
	for i, t := range r.TrackList {
		if t.ID == trackID {
			removed = t
			r.TrackList = append(r.TrackList[:i], r.TrackList[i+1:]...)
			break
		}
	}
	if removed == nil {
		return nil
	}

	if err := gw.RemoveTracksFromPlaylist(ctx, r.PlaylistID, []string{removed.ResolvedURI()}); err != nil {
		log.Error().Err(err).Str("room", r.Name).Str("track", trackID).
			Msg("failed to remove track from remote playlist, local removal stands")
	}
	return nil
}

// AddTrackVote records a skip-vote (queue-priority vote) for the track.
// Voting twice is a silent no-op.
func (r *Room) AddTrackVote(voter string, t *Track) {
	t.VotedToSkipUsers.Add(voter)
}

// RemoveTrackVote withdraws a skip-vote. Withdrawing an absent vote is a
// silent no-op.
func (r *Room) RemoveTrackVote(voter string, t *Track) {
	t.VotedToSkipUsers.Remove(voter)
}

// VoteToRemoveTrack records a removal vote and auto-removes the track once
// a strict majority of joined users agree. Reports whether the track was
// removed. A repeat vote returns ErrAlreadyVoted.
func (r *Room) VoteToRemoveTrack(ctx context.Context, gw Gateway, voter string, t *Track) (bool, error) {
	if !t.VotedToRemoveUsers.Add(voter) {
		return false, ErrAlreadyVoted
	}
	if !majorityReached(t.VotedToRemoveUsers.Size(), r.Users.Size()) {
		return false, nil
	}

	log.Info().Str("room", r.Name).Str("track", t.Name).Msg("majority reached, removing track")
	if err := r.RemoveTrack(ctx, gw, t.ID); err != nil {
		return false, err
	}
	return true, nil
}

// UnvoteToRemoveTrack withdraws a removal vote; ErrAlreadyNotVoting when
// there was none to withdraw.
func (r *Room) UnvoteToRemoveTrack(voter string, t *Track) error {
	if !t.VotedToRemoveUsers.Remove(voter) {
		return ErrAlreadyNotVoting
	}
	return nil
}

// VoteToSkipCurrentSong records a room-level skip vote and, on majority,
// skips the owner's playback and clears the ledger. Reports whether the
// skip happened.
func (r *Room) VoteToSkipCurrentSong(ctx context.Context, gw Gateway, voter string) (bool, error) {
	if !r.VotesToSkipCurrentSong.Add(voter) {
		return false, ErrAlreadyVoted
	}
	if !majorityReached(r.VotesToSkipCurrentSong.Size(), r.Users.Size()) {
		return false, nil
	}

	if err := gw.SkipToNext(ctx); err != nil {
		log.Error().Err(err).Str("room", r.Name).Msg("failed to perform community skip")
		return false, err
	}
	log.Debug().Str("room", r.Name).Msg("community skip succeeded, clearing skip votes")
	r.VotesToSkipCurrentSong.Clear()
	return true, nil
}

// UnvoteToSkipCurrentSong withdraws a room-level skip vote.
func (r *Room) UnvoteToSkipCurrentSong(voter string) error {
	if !r.VotesToSkipCurrentSong.Remove(voter) {
		return ErrAlreadyNotVoting
	}
	return nil
}

// CurrentPlayback fetches and caches the owner's playback snapshot. A nil
// state (nothing playing) is a valid answer, not an error.
func (r *Room) CurrentPlayback(ctx context.Context, gw Gateway) (*spotify.PlaybackState, error) {
	state, err := gw.CurrentPlayback(ctx)
	if err != nil {
		log.Error().Err(err).Str("room", r.Name).Msg("failed to get current playback state")
		return nil, err
	}
	r.CurrentPlaybackState = state
	return state, nil
}

// UpdateRoomStatus derives the active flag from a playback snapshot: the
// room is active only while the playback context is this room's playlist.
// Missing or malformed context simply deactivates the room.
func (r *Room) UpdateRoomStatus(state *spotify.PlaybackState) {
	if state == nil || state.Context == nil {
		log.Debug().Str("room", r.Name).Msg("no playback context, room inactive")
		r.Active = false
		return
	}

	playlistID := playlistIDFromContextURI(state.Context.URI)
	if playlistID == "" {
		log.Warn().Str("room", r.Name).Str("contextUri", state.Context.URI).
			Msg("unparseable playback context uri")
		r.Active = false
		return
	}
	r.Active = playlistID == r.PlaylistID
}

// playlistIDFromContextURI pulls the playlist id out of a context URI like
// "spotify:playlist:37i9dQZF1E34T4WDQivGe3". Returns "" for anything that
// does not look like a playlist context.
func playlistIDFromContextURI(uri string) string {
	parts := strings.Split(uri, ":")
	if len(parts) < 2 {
		return ""
	}
	if parts[len(parts)-2] != "playlist" {
		return ""
	}
	return parts[len(parts)-1]
}

// NotFound reports whether err means the room or track was absent rather
// than a harder failure.
func NotFound(err error) bool {
	return errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrTrackNotFound)
}
