package room

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/NoahFrank/pollify/internal/spotify"
)

func TestTrackPopulateFromRemote(t *testing.T) {
	t.Run("fills display fields", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("GetTrack", mock.Anything, "abc123").Return(&spotify.Track{
			ID:   "abc123",
			Name: "Song One",
			Album: spotify.Album{
				Name: "Album One",
				Images: []spotify.Image{
					{URL: "http://img/large.jpg"},
					{URL: "http://img/small.jpg"},
				},
			},
			Artists:    []spotify.Artist{{Name: "First"}, {Name: "Second"}},
			Popularity: 61,
			DurationMs: 214000,
			URI:        "spotify:track:abc123",
		}, nil)

		tr := NewTrack("alice")
		require.NoError(t, tr.PopulateFromRemote(context.Background(), gw, "abc123"))

		assert.Equal(t, "abc123", tr.ID)
		assert.Equal(t, "Song One", tr.Name)
		assert.Equal(t, "Album One", tr.AlbumName)
		assert.Equal(t, "http://img/large.jpg", tr.AlbumImage)
		assert.Equal(t, "First, Second", tr.ArtistName)
		assert.Equal(t, "spotify:track:abc123", tr.URI)
		assert.Equal(t, "alice", tr.Suggestor)
		gw.AssertExpectations(t)
	})

	t.Run("propagates lookup failure", func(t *testing.T) {
		gw := new(MockGateway)
		gw.On("GetTrack", mock.Anything, "missing").Return(nil, spotify.ErrNotFound)

		tr := NewTrack("alice")
		err := tr.PopulateFromRemote(context.Background(), gw, "missing")
		assert.True(t, errors.Is(err, spotify.ErrNotFound))
	})
}

func TestTrackEquals(t *testing.T) {
	a := &Track{ID: "x"}
	b := &Track{ID: "x", Name: "different metadata"}
	c := &Track{ID: "y"}

	assert.True(t, a.Equals(b))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(nil))
}

func TestTrackResolvedURI(t *testing.T) {
	assert.Equal(t, "spotify:track:abc", (&Track{ID: "abc"}).ResolvedURI())
	assert.Equal(t, "spotify:custom:uri", (&Track{ID: "abc", URI: "spotify:custom:uri"}).ResolvedURI())
}

func TestBuildTrackView(t *testing.T) {
	tr := NewTrack("alice")
	tr.ID = "abc"
	tr.Name = "Song"
	tr.DurationMs = 194000
	tr.VotedToSkipUsers.Add("alice")
	tr.VotedToSkipUsers.Add("bob")
	tr.VotedToRemoveUsers.Add("bob")

	view := BuildTrackView(tr, "alice")
	assert.Equal(t, "3:14", view.Duration)
	assert.Equal(t, 2, view.SkipVotes)
	assert.Equal(t, 1, view.RemoveVotes)
	assert.True(t, view.ViewerVoted)
	assert.False(t, view.ViewerVotedToRemove)

	bobView := BuildTrackView(tr, "bob")
	assert.True(t, bobView.ViewerVotedToRemove)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0:00", formatDuration(0))
	assert.Equal(t, "0:59", formatDuration(59999))
	assert.Equal(t, "1:00", formatDuration(60000))
	assert.Equal(t, "10:05", formatDuration(605000))
}
