// Package session keeps the signed-in user between requests, either in a
// server-side store (memory or Redis) or in a signed cookie token.
package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tacbarber/barberdesk/internal/barber"
	"github.com/tacbarber/barberdesk/internal/security"
)

const CookieName = "barberdesk_session"

// ErrNotFound covers missing, expired and tampered sessions alike.
var ErrNotFound = errors.New("session not found")

type Session struct {
	ID        string             `json:"id"`
	LoggedIn  bool               `json:"loggedIn"`
	User      barber.SessionUser `json:"user"`
	CSRF      string             `json:"csrf"`
	CreatedAt time.Time          `json:"createdAt"`
	ExpiresAt time.Time          `json:"expiresAt"`
}

func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// Store persists sessions. The returned value is what goes in the cookie.
type Store interface {
	Save(ctx context.Context, sess *Session) (string, error)
	Load(ctx context.Context, value string) (*Session, error)
	Delete(ctx context.Context, value string) error
}

// Manager ties a Store to the session cookie.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(store Store, ttl time.Duration, secure bool) *Manager {
	return &Manager{store: store, ttl: ttl, secure: secure, now: time.Now}
}

// Start creates a session for user and sets the cookie.
func (m *Manager) Start(ctx context.Context, w http.ResponseWriter, user barber.SessionUser) (*Session, error) {
	csrf, err := security.NewToken()
	if err != nil {
		return nil, err
	}
	now := m.now()
	sess := &Session{
		LoggedIn:  true,
		User:      user,
		CSRF:      csrf,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	value, err := m.store.Save(ctx, sess)
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  sess.ExpiresAt,
	})
	return sess, nil
}

// Current returns the session of the request, or ErrNotFound.
func (m *Manager) Current(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNotFound
	}
	sess, err := m.store.Load(r.Context(), cookie.Value)
	if err != nil {
		return nil, err
	}
	if !sess.LoggedIn || sess.Expired(m.now()) {
		return nil, ErrNotFound
	}
	return sess, nil
}

// End deletes the stored session and clears the cookie.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	var err error
	if cookie, cerr := r.Cookie(CookieName); cerr == nil && cookie.Value != "" {
		err = m.store.Delete(r.Context(), cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
	return err
}
