// Package owner persists the Spotify account holders that host rooms.
// Owners outlive any single room: the same account can come back and spin
// up a new room without re-authorizing.
package owner

import (
	"time"
)

// Owner is the account whose streaming credentials authorize every remote
// playlist and playback mutation for a room.
type Owner struct {
	SessionID       string    `json:"sessionId"`
	ProfileID       string    `json:"profileId"`
	ProfileName     string    `json:"profileName"`
	ProfileEmail    string    `json:"profileEmail"`
	AccessToken     string    `json:"accessToken"`
	RefreshToken    string    `json:"refreshToken"`
	TokenExpiration time.Time `json:"tokenExpiration"`
}

// TokenExpired reports whether the access token needs refreshing before the
// next gateway call.
func (o *Owner) TokenExpired(now time.Time) bool {
	return !o.TokenExpiration.IsZero() && o.TokenExpiration.Before(now)
}
