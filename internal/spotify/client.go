// Package spotify is the remote playback gateway: a thin client over the
// handful of Spotify Web API operations the room core needs. One client is
// constructed per room from that room's owner credentials.
package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// ErrNotFound is returned when the provider reports a 404 for the requested
// resource.
var ErrNotFound = errors.New("spotify: not found")

// StatusError is any non-success provider response that is not a plain 404.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("spotify: status %d: %s", e.Status, e.Body)
}

// Client talks to the Spotify Web API on behalf of one owner. Requests are
// rate limited and authorized through an oauth2 token source, which
// transparently refreshes expired access tokens; onRefresh fires when that
// happens so callers can persist the new pair.
type Client struct {
	baseURL   string
	http      *http.Client
	tokens    oauth2.TokenSource
	lastToken string
	onRefresh func(*oauth2.Token)
	limiter   *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root (tests).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithTokenRefreshCallback registers a hook invoked whenever the underlying
// token source hands back a new access token.
func WithTokenRefreshCallback(fn func(*oauth2.Token)) Option {
	return func(c *Client) { c.onRefresh = fn }
}

// WithInitialAccessToken seeds the refresh detection baseline with the
// access token the source was constructed from. Without it the first token
// the source yields is treated as the baseline, so a refresh of an already
// expired stored token on the very first request would go unreported.
func WithInitialAccessToken(tok string) Option {
	return func(c *Client) { c.lastToken = tok }
}

// WithHTTPClient overrides the transport (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func NewClient(tokens oauth2.TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		tokens: tokens,
		// Spotify allows bursts but throttles sustained traffic; ~10 rps
		// keeps one room comfortably under the ceiling.
		limiter: rate.NewLimiter(rate.Limit(10), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	tok, err := c.tokens.Token()
	if err != nil {
		return fmt.Errorf("spotify: token: %w", err)
	}
	if c.onRefresh != nil && tok.AccessToken != c.lastToken && c.lastToken != "" {
		c.onRefresh(tok)
	}
	c.lastToken = tok.AccessToken

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	// Spotify returns 200 with an empty body for "nothing playing".
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// GetTrack fetches canonical track metadata by provider id.
func (c *Client) GetTrack(ctx context.Context, trackID string) (*Track, error) {
	var t Track
	if err := c.do(ctx, http.MethodGet, "/tracks/"+url.PathEscape(trackID), nil, nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Search queries the provider catalog. searchType is "track" or "artist".
func (c *Client) Search(ctx context.Context, query, searchType string, limit int) (*SearchResults, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	val := url.Values{}
	val.Set("q", query)
	val.Set("type", searchType)
	val.Set("limit", fmt.Sprint(limit))

	var body searchResponse
	if err := c.do(ctx, http.MethodGet, "/search", val, nil, &body); err != nil {
		return nil, err
	}
	out := &SearchResults{}
	if body.Tracks != nil {
		out.Tracks = body.Tracks.Items
	}
	if body.Artists != nil {
		out.Artists = body.Artists.Items
	}
	return out, nil
}

// GetArtistTopTracks returns the artist's most popular tracks for a market.
func (c *Client) GetArtistTopTracks(ctx context.Context, artistID, market string) ([]Track, error) {
	if market == "" {
		market = "US"
	}
	val := url.Values{}
	val.Set("market", market)

	var body topTracksResponse
	if err := c.do(ctx, http.MethodGet, "/artists/"+url.PathEscape(artistID)+"/top-tracks", val, nil, &body); err != nil {
		return nil, err
	}
	return body.Tracks, nil
}

// CreatePlaylist makes a new playlist on the owner's account.
func (c *Client) CreatePlaylist(ctx context.Context, name string) (*Playlist, error) {
	payload := map[string]any{
		"name":        name,
		"public":      false,
		"description": "Managed by pollify - your guests vote, the queue obeys",
	}
	var p Playlist
	if err := c.do(ctx, http.MethodPost, "/me/playlists", nil, payload, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPlaylist fetches playlist metadata.
func (c *Client) GetPlaylist(ctx context.Context, playlistID string) (*Playlist, error) {
	var p Playlist
	if err := c.do(ctx, http.MethodGet, "/playlists/"+url.PathEscape(playlistID), nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPlaylistTracks returns the playlist's current remote ordering. This is
// the source of truth for positions when reconciling the queue.
func (c *Client) GetPlaylistTracks(ctx context.Context, playlistID string) ([]PlaylistTrack, error) {
	val := url.Values{}
	val.Set("fields", "items(track(id,name,uri))")

	var body playlistTracksResponse
	if err := c.do(ctx, http.MethodGet, "/playlists/"+url.PathEscape(playlistID)+"/tracks", val, nil, &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// AddTracksToPlaylist appends tracks by URI.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	payload := map[string]any{"uris": uris}
	return c.do(ctx, http.MethodPost, "/playlists/"+url.PathEscape(playlistID)+"/tracks", nil, payload, nil)
}

// RemoveTracksFromPlaylist removes all occurrences of the given URIs.
func (c *Client) RemoveTracksFromPlaylist(ctx context.Context, playlistID string, uris []string) error {
	tracks := make([]map[string]string, 0, len(uris))
	for _, u := range uris {
		tracks = append(tracks, map[string]string{"uri": u})
	}
	payload := map[string]any{"tracks": tracks}
	return c.do(ctx, http.MethodDelete, "/playlists/"+url.PathEscape(playlistID)+"/tracks", nil, payload, nil)
}

// ReorderPlaylistTracks moves the track at rangeStart to sit before
// insertBefore, shifting everything in between.
func (c *Client) ReorderPlaylistTracks(ctx context.Context, playlistID string, rangeStart, insertBefore int) error {
	payload := map[string]any{
		"range_start":   rangeStart,
		"range_length":  1,
		"insert_before": insertBefore,
	}
	return c.do(ctx, http.MethodPut, "/playlists/"+url.PathEscape(playlistID)+"/tracks", nil, payload, nil)
}

// SkipToNext advances the owner's playback to the next track.
func (c *Client) SkipToNext(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/me/player/next", nil, nil, nil)
}

// Pause pauses the owner's playback.
func (c *Client) Pause(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/me/player/pause", nil, nil, nil)
}

// Play resumes the owner's playback.
func (c *Client) Play(ctx context.Context) error {
	return c.do(ctx, http.MethodPut, "/me/player/play", nil, nil, nil)
}

// CurrentPlayback returns the owner's playback snapshot, or nil when the
// provider reports nothing playing (empty body or 204).
func (c *Client) CurrentPlayback(ctx context.Context) (*PlaybackState, error) {
	var state PlaybackState
	if err := c.do(ctx, http.MethodGet, "/me/player", nil, nil, &state); err != nil {
		return nil, err
	}
	if state.Item == nil && !state.IsPlaying && state.Context == nil {
		log.Debug().Msg("owner has no active playback")
		return nil, nil
	}
	return &state, nil
}

// Me fetches the authorized account's profile.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Profile is the owner's account profile.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}
