// Package auth runs the Spotify authorization-code flow for prospective
// room owners. A successful callback persists the owner's token pair and
// drops them straight into a freshly created room.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	spotifyauth "golang.org/x/oauth2/spotify"

	"github.com/NoahFrank/pollify/internal/config"
	"github.com/NoahFrank/pollify/internal/owner"
	"github.com/NoahFrank/pollify/internal/room"
	"github.com/NoahFrank/pollify/internal/session"
	"github.com/NoahFrank/pollify/internal/spotify"
)

const stateCookieName = "pollifyOAuthState"

// Scopes cover playlist mutation and playback control; nothing else.
var scopes = []string{
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"playlist-modify-public",
	"playlist-modify-private",
	"user-read-email",
}

// OAuthConfig builds the authorization-code config from app settings.
func OAuthConfig(cfg *config.Config) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.SpotifyClientID,
		ClientSecret: cfg.SpotifyClientSecret,
		RedirectURL:  cfg.SpotifyRedirectURL,
		Scopes:       scopes,
		Endpoint:     spotifyauth.Endpoint,
	}
}

// Handler serves /auth/login and /auth/callback.
type Handler struct {
	oauth    *oauth2.Config
	sessions *session.Manager
	owners   *owner.Repository
	store    room.Store
	gateway  room.GatewayFactory
}

func NewHandler(oauth *oauth2.Config, sessions *session.Manager, owners *owner.Repository, store room.Store, gateway room.GatewayFactory) *Handler {
	return &Handler{
		oauth:    oauth,
		sessions: sessions,
		owners:   owners,
		store:    store,
		gateway:  gateway,
	}
}

func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/login", h.handleLogin)
	r.Get("/callback", h.handleCallback)
	return r
}

// handleLogin bounces the browser to the provider's consent page with a
// one-shot state nonce pinned in a cookie.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if _, err := h.sessions.Ensure(w, r); err != nil {
		http.Error(w, "failed to establish session", http.StatusInternalServerError)
		return
	}

	state, err := randomState()
	if err != nil {
		http.Error(w, "failed to start authorization", http.StatusInternalServerError)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// handleCallback completes the code exchange, stores the owner, creates
// their room and sends the browser there.
func (h *Handler) handleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stateCookie, err := r.Cookie(stateCookieName)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}
	// The nonce is spent either way.
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "authorization denied", http.StatusBadRequest)
		return
	}

	token, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("oauth code exchange failed")
		http.Error(w, "authorization failed", http.StatusBadGateway)
		return
	}

	sid, err := h.sessions.Ensure(w, r)
	if err != nil {
		http.Error(w, "failed to establish session", http.StatusInternalServerError)
		return
	}

	client := spotify.NewClient(h.oauth.TokenSource(ctx, token))
	profile, err := client.Me(ctx)
	if err != nil {
		log.Error().Err(err).Msg("profile fetch failed after authorization")
		http.Error(w, "failed to load profile", http.StatusBadGateway)
		return
	}

	o := &owner.Owner{
		SessionID:       sid,
		ProfileID:       profile.ID,
		ProfileName:     profile.DisplayName,
		ProfileEmail:    profile.Email,
		AccessToken:     token.AccessToken,
		RefreshToken:    token.RefreshToken,
		TokenExpiration: token.Expiry,
	}
	if err := h.owners.Upsert(ctx, o); err != nil {
		log.Error().Err(err).Str("profileId", o.ProfileID).Msg("owner upsert failed")
		http.Error(w, "failed to save credentials", http.StatusInternalServerError)
		return
	}

	rm, err := room.Create(ctx, h.store, h.gateway(o), *o)
	if err != nil {
		log.Error().Err(err).Msg("room creation after authorization failed")
		http.Error(w, "failed to create room", http.StatusInternalServerError)
		return
	}
	rm.AddUser(sid)
	if err := rm.Save(ctx, h.store, h.gateway(o)); err != nil {
		http.Error(w, "failed to save room", http.StatusInternalServerError)
		return
	}

	log.Info().Str("room", rm.Name).Str("profileId", o.ProfileID).Msg("owner authorized, room ready")
	http.Redirect(w, r, "/room/"+rm.Name, http.StatusFound)
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
