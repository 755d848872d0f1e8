// Package session issues and reads the anonymous pollifySession cookie.
// The cookie carries a signed token wrapping a random id; that id is the
// VoterID used in every room roster and vote set.
package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const CookieName = "pollifySession"

const sessionTTL = 30 * 24 * time.Hour

var ErrNoSession = errors.New("session: no session cookie")

type Claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session cookies with an HMAC secret.
type Manager struct {
	secret []byte
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret)}
}

func (m *Manager) issue(sessionID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) parse(raw string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("session: unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return "", err
	}
	if claims.SessionID == "" {
		return "", errors.New("session: token missing session id")
	}
	return claims.SessionID, nil
}

// SessionID returns the voter id from the request cookie, or ErrNoSession
// when the cookie is absent or unverifiable.
func (m *Manager) SessionID(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", ErrNoSession
	}
	sid, err := m.parse(c.Value)
	if err != nil {
		return "", ErrNoSession
	}
	return sid, nil
}

// Ensure returns the request's voter id, minting and setting a fresh
// session cookie when the visitor has none yet.
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request) (string, error) {
	if sid, err := m.SessionID(r); err == nil {
		return sid, nil
	}

	sid := uuid.NewString()
	signed, err := m.issue(sid)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(sessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sid, nil
}
