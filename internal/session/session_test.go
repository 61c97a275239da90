package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tacbarber/barberdesk/internal/barber"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testUser() barber.SessionUser {
	id := int64(7)
	return barber.SessionUser{UserID: &id, Email: "ana@tacbarber.es", Role: "JEFE"}
}

func roundTrip(t *testing.T, m *Manager) (*Session, *http.Request) {
	t.Helper()
	rec := httptest.NewRecorder()
	sess, err := m.Start(context.Background(), rec, testUser())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/citas", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return sess, req
}

func TestManagerWithMemoryStore(t *testing.T) {
	m := NewManager(NewServerStore(NewMemoryKV()), time.Hour, false)
	started, req := roundTrip(t, m)

	got, err := m.Current(req)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if got.ID != started.ID || got.User.Role != "JEFE" || got.CSRF == "" || got.CSRF != started.CSRF {
		t.Fatalf("unexpected session %+v", got)
	}

	rec := httptest.NewRecorder()
	if err := m.End(rec, req); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := m.Current(req); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected session gone after End, got %v", err)
	}
	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge >= 0 {
		t.Fatalf("expected cookie to be cleared, got %+v", cleared)
	}
}

func TestManagerWithTokenStore(t *testing.T) {
	store, err := NewTokenStore(testSecret)
	if err != nil {
		t.Fatalf("token store: %v", err)
	}
	m := NewManager(store, time.Hour, true)
	started, req := roundTrip(t, m)

	got, err := m.Current(req)
	if err != nil {
		t.Fatalf("current: %v", err)
	}
	if got.User.Email != "ana@tacbarber.es" || got.User.ID() != 7 || got.CSRF != started.CSRF {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestTokenStoreRejectsTamperingAndExpiry(t *testing.T) {
	store, err := NewTokenStore(testSecret)
	if err != nil {
		t.Fatalf("token store: %v", err)
	}
	now := time.Now()
	sess := &Session{LoggedIn: true, User: testUser(), CSRF: "c", CreatedAt: now, ExpiresAt: now.Add(time.Minute)}
	value, err := store.Save(context.Background(), sess)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	parts := strings.Split(value, ".")
	parts[2] = strings.Repeat("A", len(parts[2]))
	if _, err := store.Load(context.Background(), strings.Join(parts, ".")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected tampered token to be rejected, got %v", err)
	}

	other, _ := NewTokenStore(strings.Repeat("z", 32))
	if _, err := other.Load(context.Background(), value); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected token signed with another secret to be rejected")
	}

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	if _, err := store.Load(context.Background(), value); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}

	if _, err := NewTokenStore("short"); err == nil {
		t.Fatalf("expected short secret to be refused")
	}
}

func TestMemoryKVExpiry(t *testing.T) {
	kv := NewMemoryKV()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return now }
	ctx := context.Background()

	if err := kv.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, err := kv.Get(ctx, "k"); err != nil || string(got) != "v" {
		t.Fatalf("unexpected get %q %v", got, err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected expired key, got %v", err)
	}
}

func TestServerStoreIgnoresGarbageCookies(t *testing.T) {
	store := NewServerStore(NewMemoryKV())
	if _, err := store.Load(context.Background(), "not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(context.Background(), "not-a-uuid"); err != nil {
		t.Fatalf("expected delete of garbage to be a no-op, got %v", err)
	}
}

func TestCurrentWithoutCookie(t *testing.T) {
	m := NewManager(NewServerStore(NewMemoryKV()), time.Hour, false)
	if _, err := m.Current(httptest.NewRequest(http.MethodGet, "/", nil)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNewRedisKVFailsFastOnBadAddress(t *testing.T) {
	_, err := NewRedisKV(context.Background(), RedisConfig{Addr: "127.0.0.1:1"})
	if err == nil || !strings.Contains(err.Error(), "connect redis 127.0.0.1:1") {
		t.Fatalf("expected connect error, got %v", err)
	}
}
