package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// KV is the byte store behind ServerStore.
type KV interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error
}

// ErrKeyNotFound is what a KV returns for a missing key.
var ErrKeyNotFound = errors.New("key not found")

const keyPrefix = "barberdesk:session:"

// ServerStore keeps sessions as JSON under a random id; the cookie carries
// only the id.
type ServerStore struct {
	kv  KV
	now func() time.Time
}

func NewServerStore(kv KV) *ServerStore {
	return &ServerStore{kv: kv, now: time.Now}
}

func (s *ServerStore) Save(ctx context.Context, sess *Session) (string, error) {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return "", errors.New("session already expired")
	}
	if err := s.kv.Set(ctx, keyPrefix+sess.ID, data, ttl); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return sess.ID, nil
}

func (s *ServerStore) Load(ctx context.Context, value string) (*Session, error) {
	if _, err := uuid.Parse(value); err != nil {
		return nil, ErrNotFound
	}
	data, err := s.kv.Get(ctx, keyPrefix+value)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *ServerStore) Delete(ctx context.Context, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return nil
	}
	if err := s.kv.Del(ctx, keyPrefix+value); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
