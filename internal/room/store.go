package room

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the injected room persistence: one record per room keyed by
// name, holding the full serialized snapshot (queue, rosters, ledgers).
type Store interface {
	Get(ctx context.Context, name string) (*Room, error)
	Set(ctx context.Context, r *Room) error
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
}

const roomKeyPrefix = "room:"

// Abandoned rooms expire through the store's own eviction; a day of idle
// is long past any party.
const roomTTL = 24 * time.Hour

// RedisStore keeps room snapshots in redis as JSON blobs.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: roomTTL}
}

func (s *RedisStore) Get(ctx context.Context, name string) (*Room, error) {
	raw, err := s.rdb.Get(ctx, roomKeyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	var r Room
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, err
	}
	// Old snapshots may predate a field; never hand back nil sets.
	if r.Users == nil {
		r.Users = NewVoterSet()
	}
	if r.VotesToSkipCurrentSong == nil {
		r.VotesToSkipCurrentSong = NewVoterSet()
	}
	for _, t := range r.TrackList {
		if t.VotedToSkipUsers == nil {
			t.VotedToSkipUsers = NewVoterSet()
		}
		if t.VotedToRemoveUsers == nil {
			t.VotedToRemoveUsers = NewVoterSet()
		}
	}
	return &r, nil
}

func (s *RedisStore) Set(ctx context.Context, r *Room) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, roomKeyPrefix+r.Name, raw, s.ttl).Err()
}

func (s *RedisStore) Exists(ctx context.Context, name string) (bool, error) {
	n, err := s.rdb.Exists(ctx, roomKeyPrefix+name).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Delete(ctx context.Context, name string) error {
	return s.rdb.Del(ctx, roomKeyPrefix+name).Err()
}

// Locker hands out one mutex per room name so every handler can hold the
// whole load-mutate-save span exclusively. Without this, two concurrent
// votes on the same room race on the full-snapshot write and one is
// silently lost (last-write-wins). Entries are refcounted and dropped as
// soon as nobody holds or waits on them, so the map does not accumulate a
// mutex for every room name ever requested.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*roomLock
}

type roomLock struct {
	sync.Mutex
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*roomLock)}
}

// Lock acquires the room's mutex and returns its release func.
func (l *Locker) Lock(name string) func() {
	l.mu.Lock()
	e, ok := l.locks[name]
	if !ok {
		e = &roomLock{}
		l.locks[name] = e
	}
	e.refs++
	l.mu.Unlock()

	e.Lock()
	return func() {
		e.Unlock()
		l.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(l.locks, name)
		}
		l.mu.Unlock()
	}
}
