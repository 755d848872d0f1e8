package room

import (
	"context"
	"sort"

	"github.com/rs/zerolog/log"
)

// reconcileQueue re-derives the local queue order from skip votes and
// mirrors only the head-of-queue change to the remote playlist.
//
// The currently playing track is pinned at index 0 and excluded from
// sorting. The rest sorts by descending skip-vote count; ties keep their
// existing (insertion) order via the stable sort, so repeat reconciles
// never reshuffle equal-vote tracks.
//
// Only the upcoming track's remote position is enforced. Reordering the
// whole playlist on every vote would thrash the provider API and race any
// out-of-band edits the owner makes in their own client; pinning just the
// next-to-play entry keeps playback honest with minimal collision surface.
func (r *Room) reconcileQueue(ctx context.Context, gw Gateway) error {
	if len(r.TrackList) == 0 {
		log.Warn().Str("room", r.Name).Msg("track list is empty, nothing to sort")
		return nil
	}
	if len(r.TrackList) < 2 {
		return nil
	}

	preSort := make([]*Track, len(r.TrackList))
	copy(preSort, r.TrackList)
	upcomingBefore := r.TrackList[1]

	upcoming := r.TrackList[1:]
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].VotedToSkipUsers.Size() > upcoming[j].VotedToSkipUsers.Size()
	})

	newHead := r.TrackList[1]
	if newHead.Equals(upcomingBefore) {
		return nil
	}

	// Votes promoted a different track to next-up; the remote playlist
	// has to physically move it or playback will ignore the ranking.
	log.Debug().Str("room", r.Name).Str("track", newHead.Name).
		Msg("upcoming track changed by vote sort, reordering remote playlist")

	// An empty URI here means a track got queued without hydration;
	// that's an upstream bug, not something to paper over with a guess.
	if newHead.URI == "" {
		log.Error().Str("room", r.Name).Str("track", newHead.ID).
			Msg("upcoming track uri is not populated, refusing remote reorder")
		return ErrTrackNotHydrated
	}

	fromIndex := r.remoteIndexOf(ctx, gw, newHead, preSort)
	if fromIndex < 0 {
		log.Warn().Str("room", r.Name).Str("track", newHead.ID).
			Msg("could not locate upcoming track in remote playlist, skipping reorder")
		return nil
	}
	if fromIndex == 1 {
		return nil
	}

	// insert_before 1 slots it directly behind the playing track.
	if err := gw.ReorderPlaylistTracks(ctx, r.PlaylistID, fromIndex, 1); err != nil {
		log.Error().Err(err).Str("room", r.Name).Msg("remote reorder failed, local order remains authoritative")
		return nil
	}
	log.Debug().Str("room", r.Name).Msg("moved new upcoming track to front of remote playlist")
	return nil
}

// remoteIndexOf locates the track's position in the remote playlist, which
// is the source of truth for reorder offsets. When the remote read fails
// the pre-sort local snapshot stands in, since it mirrors the last state
// this room pushed to the provider.
func (r *Room) remoteIndexOf(ctx context.Context, gw Gateway, target *Track, preSort []*Track) int {
	remote, err := gw.GetPlaylistTracks(ctx, r.PlaylistID)
	if err == nil {
		for i, item := range remote {
			if item.Track.ID == target.ID || item.Track.URI == target.ResolvedURI() {
				return i
			}
		}
		return -1
	}
	log.Warn().Err(err).Str("room", r.Name).Msg("failed to snapshot remote playlist, falling back to local order")

	for i, t := range preSort {
		if t.Equals(target) {
			return i
		}
	}
	return -1
}
