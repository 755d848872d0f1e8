package auth

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/NoahFrank/pollify/internal/owner"
	"github.com/NoahFrank/pollify/internal/room"
	"github.com/NoahFrank/pollify/internal/spotify"
)

// NewGatewayFactory returns the per-owner gateway constructor used by the
// room layer. Every gateway carries its owner's token source; when oauth2
// silently rotates an expired access token, the fresh pair is written back
// so the owner survives restarts without re-authorizing.
func NewGatewayFactory(oauth *oauth2.Config, owners *owner.Repository) room.GatewayFactory {
	return func(o *owner.Owner) room.Gateway {
		seed := &oauth2.Token{
			AccessToken:  o.AccessToken,
			RefreshToken: o.RefreshToken,
			Expiry:       o.TokenExpiration,
		}
		profileID := o.ProfileID
		if o.TokenExpired(time.Now()) {
			log.Debug().Str("profileId", profileID).Msg("stored access token expired, will refresh on first use")
		}
		source := oauth.TokenSource(context.Background(), seed)

		return spotify.NewClient(source,
			spotify.WithInitialAccessToken(o.AccessToken),
			spotify.WithTokenRefreshCallback(func(t *oauth2.Token) {
				refreshed := &owner.Owner{
					ProfileID:       profileID,
					AccessToken:     t.AccessToken,
					RefreshToken:    t.RefreshToken,
					TokenExpiration: t.Expiry,
				}
				if refreshed.RefreshToken == "" {
					// The provider does not always resend the refresh token.
					refreshed.RefreshToken = seed.RefreshToken
				}
				if err := owners.UpdateTokens(context.Background(), refreshed); err != nil {
					log.Error().Err(err).Str("profileId", profileID).Msg("failed to persist refreshed tokens")
				}
			}))
	}
}
