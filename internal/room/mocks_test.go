package room

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/NoahFrank/pollify/internal/spotify"
)

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) GetTrack(ctx context.Context, trackID string) (*spotify.Track, error) {
	args := m.Called(ctx, trackID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spotify.Track), args.Error(1)
}

func (m *MockGateway) Search(ctx context.Context, query, searchType string, limit int) (*spotify.SearchResults, error) {
	args := m.Called(ctx, query, searchType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spotify.SearchResults), args.Error(1)
}

func (m *MockGateway) GetArtistTopTracks(ctx context.Context, artistID, market string) ([]spotify.Track, error) {
	args := m.Called(ctx, artistID, market)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]spotify.Track), args.Error(1)
}

func (m *MockGateway) CreatePlaylist(ctx context.Context, name string) (*spotify.Playlist, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spotify.Playlist), args.Error(1)
}

func (m *MockGateway) GetPlaylist(ctx context.Context, playlistID string) (*spotify.Playlist, error) {
	args := m.Called(ctx, playlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spotify.Playlist), args.Error(1)
}

func (m *MockGateway) GetPlaylistTracks(ctx context.Context, playlistID string) ([]spotify.PlaylistTrack, error) {
	args := m.Called(ctx, playlistID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]spotify.PlaylistTrack), args.Error(1)
}

func (m *MockGateway) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	return m.Called(ctx, playlistID, uris).Error(0)
}

func (m *MockGateway) RemoveTracksFromPlaylist(ctx context.Context, playlistID string, uris []string) error {
	return m.Called(ctx, playlistID, uris).Error(0)
}

func (m *MockGateway) ReorderPlaylistTracks(ctx context.Context, playlistID string, rangeStart, insertBefore int) error {
	return m.Called(ctx, playlistID, rangeStart, insertBefore).Error(0)
}

func (m *MockGateway) SkipToNext(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGateway) Pause(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGateway) Play(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockGateway) CurrentPlayback(ctx context.Context) (*spotify.PlaybackState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*spotify.PlaybackState), args.Error(1)
}

// memStore is an in-memory Store for tests that only need persistence to
// round-trip, not redis semantics.
type memStore struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func newMemStore() *memStore {
	return &memStore{rooms: make(map[string]*Room)}
}

func (s *memStore) Get(ctx context.Context, name string) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[name]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

func (s *memStore) Set(ctx context.Context, r *Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rooms[r.Name] = r
	return nil
}

func (s *memStore) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.rooms[name]
	return ok, nil
}

func (s *memStore) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, name)
	return nil
}
