package room

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/NoahFrank/pollify/internal/owner"
	"github.com/NoahFrank/pollify/internal/spotify"
)

func TestRoomRoster(t *testing.T) {
	r := New("velvet-otter", owner.Owner{SessionID: "owner-session"})

	r.AddUser("alice")
	r.AddUser("alice")
	r.AddUser("bob")
	assert.Equal(t, 2, r.Users.Size())

	r.AddUser("")
	assert.Equal(t, 2, r.Users.Size())

	r.RemoveUser("alice")
	assert.Equal(t, 1, r.Users.Size())
	assert.False(t, r.Users.Has("alice"))
}

func TestRoomIsOwner(t *testing.T) {
	r := New("velvet-otter", owner.Owner{SessionID: "owner-session"})
	assert.True(t, r.IsOwner("owner-session"))
	assert.False(t, r.IsOwner("guest"))
	assert.False(t, r.IsOwner(""))

	// A room that somehow lost its owner session must not treat anonymous
	// visitors as owners.
	r.Owner.SessionID = ""
	assert.False(t, r.IsOwner(""))
}

func TestAddTrackToTrackList(t *testing.T) {
	r := testRoom()

	first := queuedTrack("a")
	assert.True(t, r.AddTrackToTrackList(first))
	assert.False(t, r.AddTrackToTrackList(queuedTrack("a")))
	assert.True(t, r.AddTrackToTrackList(queuedTrack("b")))
	assert.Equal(t, []string{"a", "b"}, queueIDs(r))
}

func TestRemoveTrack(t *testing.T) {
	ctx := context.Background()

	t.Run("removes locally and remotely", func(t *testing.T) {
		r := testRoom(queuedTrack("a"), queuedTrack("b"))
		gw := new(MockGateway)
		gw.On("RemoveTracksFromPlaylist", mock.Anything, "pl1", []string{"spotify:track:b"}).Return(nil)

		require.NoError(t, r.RemoveTrack(ctx, gw, "b"))
		assert.Equal(t, []string{"a"}, queueIDs(r))
		gw.AssertExpectations(t)
	})

	t.Run("remote failure keeps local removal", func(t *testing.T) {
		r := testRoom(queuedTrack("a"))
		gw := new(MockGateway)
		gw.On("RemoveTracksFromPlaylist", mock.Anything, "pl1", []string{"spotify:track:a"}).Return(assert.AnError)

		require.NoError(t, r.RemoveTrack(ctx, gw, "a"))
		assert.Empty(t, r.TrackList)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		r := testRoom(queuedTrack("a"))
		gw := new(MockGateway)

		require.NoError(t, r.RemoveTrack(ctx, gw, "nope"))
		assert.Equal(t, []string{"a"}, queueIDs(r))
		gw.AssertNotCalled(t, "RemoveTracksFromPlaylist")
	})
}

func TestVoteToRemoveTrack(t *testing.T) {
	ctx := context.Background()

	t.Run("majority of two removes the track", func(t *testing.T) {
		tr := queuedTrack("t3")
		r := testRoom(queuedTrack("t1"), queuedTrack("t2"), tr)
		r.AddUser("alice")
		r.AddUser("bob")

		gw := new(MockGateway)
		gw.On("RemoveTracksFromPlaylist", mock.Anything, "pl1", []string{"spotify:track:t3"}).Return(nil)

		removed, err := r.VoteToRemoveTrack(ctx, gw, "alice", tr)
		require.NoError(t, err)
		assert.False(t, removed, "one of two is not a majority")

		removed, err = r.VoteToRemoveTrack(ctx, gw, "bob", tr)
		require.NoError(t, err)
		assert.True(t, removed)
		assert.Nil(t, r.FindTrack("t3"))
		gw.AssertExpectations(t)
	})

	t.Run("double vote is rejected and not counted", func(t *testing.T) {
		tr := queuedTrack("t1")
		r := testRoom(tr)
		r.AddUser("alice")
		r.AddUser("bob")
		r.AddUser("carol")

		gw := new(MockGateway)
		_, err := r.VoteToRemoveTrack(ctx, gw, "alice", tr)
		require.NoError(t, err)

		_, err = r.VoteToRemoveTrack(ctx, gw, "alice", tr)
		assert.ErrorIs(t, err, ErrAlreadyVoted)
		assert.Equal(t, 1, tr.VotedToRemoveUsers.Size())
	})

	t.Run("unvote withdraws and reports absence", func(t *testing.T) {
		tr := queuedTrack("t1")
		r := testRoom(tr)
		r.AddUser("alice")
		r.AddUser("bob")
		r.AddUser("carol")

		gw := new(MockGateway)
		_, err := r.VoteToRemoveTrack(ctx, gw, "alice", tr)
		require.NoError(t, err)

		require.NoError(t, r.UnvoteToRemoveTrack("alice", tr))
		assert.Equal(t, 0, tr.VotedToRemoveUsers.Size())
		assert.ErrorIs(t, r.UnvoteToRemoveTrack("alice", tr), ErrAlreadyNotVoting)
	})
}

func TestVoteToSkipCurrentSong(t *testing.T) {
	ctx := context.Background()

	t.Run("majority skips and clears the ledger", func(t *testing.T) {
		r := testRoom(queuedTrack("a"))
		r.AddUser("alice")
		r.AddUser("bob")
		r.AddUser("carol")

		gw := new(MockGateway)
		gw.On("SkipToNext", mock.Anything).Return(nil)

		skipped, err := r.VoteToSkipCurrentSong(ctx, gw, "alice")
		require.NoError(t, err)
		assert.False(t, skipped)

		skipped, err = r.VoteToSkipCurrentSong(ctx, gw, "bob")
		require.NoError(t, err)
		assert.True(t, skipped)
		assert.Equal(t, 0, r.VotesToSkipCurrentSong.Size(), "skip votes reset after the skip")
		gw.AssertExpectations(t)
	})

	t.Run("remote skip failure keeps the vote recorded", func(t *testing.T) {
		r := testRoom(queuedTrack("a"))
		r.AddUser("alice")

		gw := new(MockGateway)
		gw.On("SkipToNext", mock.Anything).Return(assert.AnError)

		skipped, err := r.VoteToSkipCurrentSong(ctx, gw, "alice")
		assert.Error(t, err)
		assert.False(t, skipped)
		assert.Equal(t, 1, r.VotesToSkipCurrentSong.Size())
	})

	t.Run("double vote rejected", func(t *testing.T) {
		r := testRoom(queuedTrack("a"))
		r.AddUser("alice")
		r.AddUser("bob")
		r.AddUser("carol")

		gw := new(MockGateway)
		_, err := r.VoteToSkipCurrentSong(ctx, gw, "alice")
		require.NoError(t, err)
		_, err = r.VoteToSkipCurrentSong(ctx, gw, "alice")
		assert.ErrorIs(t, err, ErrAlreadyVoted)
	})

	t.Run("unvote", func(t *testing.T) {
		r := testRoom(queuedTrack("a"))
		r.AddUser("alice")
		r.AddUser("bob")
		r.AddUser("carol")

		gw := new(MockGateway)
		_, err := r.VoteToSkipCurrentSong(ctx, gw, "alice")
		require.NoError(t, err)

		require.NoError(t, r.UnvoteToSkipCurrentSong("alice"))
		assert.ErrorIs(t, r.UnvoteToSkipCurrentSong("alice"), ErrAlreadyNotVoting)
	})
}

func TestUpdateRoomStatus(t *testing.T) {
	r := testRoom()
	r.PlaylistID = "37i9dQZF1E34T4WDQivGe3"

	t.Run("nil state deactivates", func(t *testing.T) {
		r.Active = true
		r.UpdateRoomStatus(nil)
		assert.False(t, r.Active)
	})

	t.Run("missing context deactivates", func(t *testing.T) {
		r.Active = true
		r.UpdateRoomStatus(&spotify.PlaybackState{IsPlaying: true})
		assert.False(t, r.Active)
	})

	t.Run("matching playlist context activates", func(t *testing.T) {
		r.UpdateRoomStatus(&spotify.PlaybackState{
			Context: &spotify.PlaybackContext{
				Type: "playlist",
				URI:  "spotify:playlist:37i9dQZF1E34T4WDQivGe3",
			},
		})
		assert.True(t, r.Active)
	})

	t.Run("different playlist deactivates", func(t *testing.T) {
		r.UpdateRoomStatus(&spotify.PlaybackState{
			Context: &spotify.PlaybackContext{
				Type: "playlist",
				URI:  "spotify:playlist:somewhere-else",
			},
		})
		assert.False(t, r.Active)
	})

	t.Run("non playlist context deactivates", func(t *testing.T) {
		r.Active = true
		r.UpdateRoomStatus(&spotify.PlaybackState{
			Context: &spotify.PlaybackContext{
				Type: "album",
				URI:  "spotify:album:xyz",
			},
		})
		assert.False(t, r.Active)
	})

	t.Run("garbage uri deactivates", func(t *testing.T) {
		r.Active = true
		r.UpdateRoomStatus(&spotify.PlaybackState{
			Context: &spotify.PlaybackContext{URI: "garbage"},
		})
		assert.False(t, r.Active)
	})
}

func TestCurrentPlayback(t *testing.T) {
	ctx := context.Background()

	t.Run("caches snapshot on the room", func(t *testing.T) {
		r := testRoom()
		state := &spotify.PlaybackState{IsPlaying: true, Item: &spotify.Track{ID: "a"}}
		gw := new(MockGateway)
		gw.On("CurrentPlayback", mock.Anything).Return(state, nil)

		got, err := r.CurrentPlayback(ctx, gw)
		require.NoError(t, err)
		assert.Equal(t, state, got)
		assert.Equal(t, state, r.CurrentPlaybackState)
	})

	t.Run("nothing playing is a valid nil", func(t *testing.T) {
		r := testRoom()
		gw := new(MockGateway)
		gw.On("CurrentPlayback", mock.Anything).Return(nil, nil)

		got, err := r.CurrentPlayback(ctx, gw)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	gw := new(MockGateway)
	gw.On("CreatePlaylist", mock.Anything, mock.AnythingOfType("string")).Return(&spotify.Playlist{ID: "pl-new"}, nil)

	r, err := Create(ctx, store, gw, owner.Owner{SessionID: "owner-session"})
	require.NoError(t, err)
	assert.NotEmpty(t, r.Name)
	assert.Equal(t, "pl-new", r.PlaylistID)

	loaded, err := Get(ctx, store, r.Name)
	require.NoError(t, err)
	assert.Equal(t, r.Name, loaded.Name)
	assert.True(t, loaded.IsPlaylistCreated())
}

// The full flow a party actually exercises: owner creates a room, two
// guests join, tracks get queued, priority votes reorder, a removal vote
// reaches majority, and a community skip fires.
func TestRoomPartyFlow(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	gw := new(MockGateway)
	gw.On("CreatePlaylist", mock.Anything, mock.AnythingOfType("string")).Return(&spotify.Playlist{ID: "pl1"}, nil)
	gw.On("GetPlaylistTracks", mock.Anything, "pl1").Return([]spotify.PlaylistTrack{
		{Track: spotify.Track{ID: "t1", URI: "spotify:track:t1"}},
		{Track: spotify.Track{ID: "t2", URI: "spotify:track:t2"}},
		{Track: spotify.Track{ID: "t3", URI: "spotify:track:t3"}},
	}, nil)
	gw.On("ReorderPlaylistTracks", mock.Anything, "pl1", mock.AnythingOfType("int"), 1).Return(nil)
	gw.On("RemoveTracksFromPlaylist", mock.Anything, "pl1", []string{"spotify:track:t3"}).Return(nil)
	gw.On("SkipToNext", mock.Anything).Return(nil)

	r, err := Create(ctx, store, gw, owner.Owner{SessionID: "owner-session"})
	require.NoError(t, err)

	r.AddUser("guest1")
	r.AddUser("guest2")

	require.True(t, r.AddTrackToTrackList(queuedTrack("t1")))
	require.True(t, r.AddTrackToTrackList(queuedTrack("t2")))
	require.True(t, r.AddTrackToTrackList(queuedTrack("t3")))

	// Guests prioritize t3 over t2.
	r.AddTrackVote("guest1", r.FindTrack("t3"))
	r.AddTrackVote("guest2", r.FindTrack("t3"))
	require.NoError(t, r.Save(ctx, store, gw))
	assert.Equal(t, []string{"t1", "t3", "t2"}, queueIDs(r))

	// Then the room turns on t3 entirely.
	tr := r.FindTrack("t3")
	removed, err := r.VoteToRemoveTrack(ctx, gw, "guest1", tr)
	require.NoError(t, err)
	assert.False(t, removed)
	removed, err = r.VoteToRemoveTrack(ctx, gw, "guest2", tr)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, []string{"t1", "t2"}, queueIDs(r))

	// And skips whatever is playing.
	_, err = r.VoteToSkipCurrentSong(ctx, gw, "guest1")
	require.NoError(t, err)
	skipped, err := r.VoteToSkipCurrentSong(ctx, gw, "guest2")
	require.NoError(t, err)
	assert.True(t, skipped)

	require.NoError(t, r.Save(ctx, store, gw))
	loaded, err := Get(ctx, store, r.Name)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, queueIDs(loaded))
}
