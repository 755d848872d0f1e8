package room

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NoahFrank/pollify/internal/spotify"
)

// Track is one queued song in a room: provider identity, display metadata
// and the two vote ledgers. Identity is fixed once populated; metadata and
// votes are only touched through Room operations.
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AlbumName  string `json:"albumName"`
	AlbumImage string `json:"albumImage"`
	ArtistName string `json:"artistName"`
	Popularity int    `json:"popularity"`
	DurationMs int    `json:"durationMs"`
	URI        string `json:"uri"`

	Suggestor string    `json:"suggestor"`
	AddedAt   time.Time `json:"addedAt"`

	VotedToSkipUsers   *VoterSet `json:"votedToSkipUsers"`
	VotedToRemoveUsers *VoterSet `json:"votedToRemoveUsers"`
}

// NewTrack makes an empty track credited to the suggesting voter.
func NewTrack(suggestor string) *Track {
	return &Track{
		Suggestor:          suggestor,
		AddedAt:            time.Now(),
		VotedToSkipUsers:   NewVoterSet(),
		VotedToRemoveUsers: NewVoterSet(),
	}
}

// PopulateFromRemote hydrates the track with canonical metadata from the
// gateway. All display fields are overwritten in place.
func (t *Track) PopulateFromRemote(ctx context.Context, gw Gateway, trackID string) error {
	remote, err := gw.GetTrack(ctx, trackID)
	if err != nil {
		return fmt.Errorf("populate track %s: %w", trackID, err)
	}

	t.ID = remote.ID
	t.Name = remote.Name
	t.AlbumName = remote.Album.Name
	if len(remote.Album.Images) > 0 {
		// First image is the largest album art.
		t.AlbumImage = remote.Album.Images[0].URL
	}
	t.ArtistName = joinArtistNames(remote.Artists)
	t.Popularity = remote.Popularity
	t.DurationMs = remote.DurationMs
	t.URI = remote.URI
	return nil
}

// Equals is identity equality: tracks match on provider id only.
func (t *Track) Equals(other *Track) bool {
	if other == nil {
		return false
	}
	return t.ID == other.ID
}

// ResolvedURI returns the stored URI, synthesizing the provider convention
// from the id when a code path built the track without hydrating it.
func (t *Track) ResolvedURI() string {
	if t.URI == "" {
		return "spotify:track:" + t.ID
	}
	return t.URI
}

func joinArtistNames(artists []spotify.Artist) string {
	names := make([]string, 0, len(artists))
	for _, a := range artists {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// TrackView is the render projection of a Track: counts instead of raw
// ledgers, a formatted duration, and per-viewer vote flags. It is always
// built fresh from the canonical Track, never mutated in place.
type TrackView struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	AlbumName           string `json:"albumName"`
	AlbumImage          string `json:"albumImage"`
	ArtistName          string `json:"artistName"`
	Duration            string `json:"duration"`
	Suggestor           string `json:"suggestor"`
	SkipVotes           int    `json:"skipVotes"`
	RemoveVotes         int    `json:"removeVotes"`
	ViewerVoted         bool   `json:"viewerVoted"`
	ViewerVotedToRemove bool   `json:"viewerVotedToRemove"`
}

// BuildTrackView projects a track for the given viewer.
func BuildTrackView(t *Track, viewer string) TrackView {
	return TrackView{
		ID:                  t.ID,
		Name:                t.Name,
		AlbumName:           t.AlbumName,
		AlbumImage:          t.AlbumImage,
		ArtistName:          t.ArtistName,
		Duration:            formatDuration(t.DurationMs),
		Suggestor:           t.Suggestor,
		SkipVotes:           t.VotedToSkipUsers.Size(),
		RemoveVotes:         t.VotedToRemoveUsers.Size(),
		ViewerVoted:         t.VotedToSkipUsers.Has(viewer),
		ViewerVotedToRemove: t.VotedToRemoveUsers.Has(viewer),
	}
}

func formatDuration(ms int) string {
	if ms <= 0 {
		return "0:00"
	}
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
