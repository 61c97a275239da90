package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/tacbarber/barberdesk/internal/barber"
)

type tokenClaims struct {
	User barber.SessionUser `json:"user"`
	CSRF string             `json:"csrf"`
	jwt.RegisteredClaims
}

// TokenStore keeps the whole session in an HS256 token. Nothing is stored
// server-side, so Delete only drops the cookie.
type TokenStore struct {
	secret []byte
	now    func() time.Time
}

func NewTokenStore(secret string) (*TokenStore, error) {
	if len(secret) < 32 {
		return nil, errors.New("token session secret must be at least 32 characters")
	}
	return &TokenStore{secret: []byte(secret), now: time.Now}, nil
}

func (t *TokenStore) Save(_ context.Context, sess *Session) (string, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	claims := tokenClaims{
		User: sess.User,
		CSRF: sess.CSRF,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   sess.User.Email,
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

func (t *TokenStore) Load(_ context.Context, value string) (*Session, error) {
	var claims tokenClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	parser.SkipClaimsValidation = true
	token, err := parser.ParseWithClaims(value, &claims, func(*jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrNotFound
	}
	if claims.ExpiresAt == nil || t.now().After(claims.ExpiresAt.Time) {
		return nil, ErrNotFound
	}
	sess := &Session{
		ID:        claims.ID,
		LoggedIn:  true,
		User:      claims.User,
		CSRF:      claims.CSRF,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if claims.IssuedAt != nil {
		sess.CreatedAt = claims.IssuedAt.Time
	}
	return sess, nil
}

func (t *TokenStore) Delete(context.Context, string) error {
	return nil
}
