package room

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/NoahFrank/pollify/internal/spotify"
)

type searchRequest struct {
	SearchQuery string `json:"searchQuery"`
	SearchType  string `json:"searchType"`
}

// handleSearch runs a catalogue search on behalf of a guest, using the
// room owner's credentials. Unknown search types get an empty result
// rather than an error so a stale client keeps working.
// POST /room/{roomId}/search
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, ok := s.openRoom(w, r)
	if !ok {
		return
	}
	defer req.unlock()
	ctx := r.Context()

	var body searchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.SearchQuery == "" {
		writeError(w, http.StatusBadRequest, "invalid search request")
		return
	}
	if body.SearchType == "" {
		body.SearchType = "track"
	}

	switch body.SearchType {
	case "track", "artist":
	default:
		log.Warn().Str("searchType", body.SearchType).Msg("unsupported search type")
		writeJSON(w, http.StatusOK, &spotify.SearchResults{})
		return
	}

	results, err := req.gw.Search(ctx, body.SearchQuery, body.SearchType, 0)
	if err != nil {
		log.Error().Err(err).Str("room", req.room.Name).Msg("search failed")
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// handleArtistTopTracks fetches an artist's top tracks for the add-from
// -artist flow.
// POST /room/{roomId}/getArtistTopTracks/{artistId}
func (s *Server) handleArtistTopTracks(w http.ResponseWriter, r *http.Request) {
	req, ok := s.openRoom(w, r)
	if !ok {
		return
	}
	defer req.unlock()
	ctx := r.Context()

	artistID := chi.URLParam(r, "artistId")
	if artistID == "" {
		writeError(w, http.StatusBadRequest, "missing artist id")
		return
	}

	tracks, err := req.gw.GetArtistTopTracks(ctx, artistID, "")
	if err != nil {
		log.Error().Err(err).Str("artistId", artistID).Msg("top tracks lookup failed")
		writeError(w, http.StatusInternalServerError, "failed to fetch top tracks")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"topTrackData": tracks})
}
