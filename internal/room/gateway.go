package room

import (
	"context"

	"github.com/NoahFrank/pollify/internal/owner"
	"github.com/NoahFrank/pollify/internal/spotify"
)

// Gateway is the remote playback provider as the room core sees it: the
// minimal playlist and playback surface, with network failure modes.
// *spotify.Client satisfies it.
type Gateway interface {
	GetTrack(ctx context.Context, trackID string) (*spotify.Track, error)
	Search(ctx context.Context, query, searchType string, limit int) (*spotify.SearchResults, error)
	GetArtistTopTracks(ctx context.Context, artistID, market string) ([]spotify.Track, error)

	CreatePlaylist(ctx context.Context, name string) (*spotify.Playlist, error)
	GetPlaylist(ctx context.Context, playlistID string) (*spotify.Playlist, error)
	GetPlaylistTracks(ctx context.Context, playlistID string) ([]spotify.PlaylistTrack, error)
	AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error
	RemoveTracksFromPlaylist(ctx context.Context, playlistID string, uris []string) error
	ReorderPlaylistTracks(ctx context.Context, playlistID string, rangeStart, insertBefore int) error

	SkipToNext(ctx context.Context) error
	Pause(ctx context.Context) error
	Play(ctx context.Context) error
	CurrentPlayback(ctx context.Context) (*spotify.PlaybackState, error)
}

// GatewayFactory builds a gateway scoped to one owner's credentials. Each
// room gets its own instance; there is deliberately no process-wide client.
type GatewayFactory func(o *owner.Owner) Gateway
