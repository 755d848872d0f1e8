package room

import "errors"

var (
	// ErrRoomNotFound: no room under that name in the store.
	ErrRoomNotFound = errors.New("room not found")
	// ErrTrackNotFound: the named track is not in the room's queue.
	ErrTrackNotFound = errors.New("track not found in room")
	// ErrNoPlaylist: the room never got a remote playlist linked.
	ErrNoPlaylist = errors.New("room has no linked playlist")

	// Soft vote outcomes. These are no-ops, not failures; handlers map
	// them to a friendly response instead of a 500.
	ErrAlreadyVoted     = errors.New("user already voted")
	ErrAlreadyNotVoting = errors.New("user was not voting")

	// ErrTrackNotHydrated flags a queue entry whose URI was never
	// populated, which means an upstream add skipped hydration.
	ErrTrackNotHydrated = errors.New("track uri is not populated")

	// ErrNameSpaceExhausted: repeated collisions while generating a room
	// name; effectively a configuration problem, not a retryable one.
	ErrNameSpaceExhausted = errors.New("could not generate an unused room name")
)
