package webapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tacbarber/barberdesk/internal/barber"
	"github.com/tacbarber/barberdesk/internal/session"
)

func requestWith(sess *session.Session) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/clientes", nil)
	if sess == nil {
		return req
	}
	return req.WithContext(context.WithValue(req.Context(), sessionKey, sess))
}

func TestViewCacheForgetsExpiredSessions(t *testing.T) {
	start := time.Date(2025, 11, 18, 9, 0, 0, 0, time.UTC)
	clock := start
	cache := newViewCache(func() time.Time { return clock })

	short := requestWith(&session.Session{ID: "short", ExpiresAt: start.Add(time.Hour)})
	long := requestWith(&session.Session{ID: "long", ExpiresAt: start.Add(3 * time.Hour)})
	fill := func(v *viewState) {
		v.clients = snapshot[barber.Client]{ok: true, items: []barber.Client{{ID: 1}}}
	}
	cache.with(short, fill)
	cache.with(long, fill)
	if cache.size() != 2 {
		t.Fatalf("expected 2 cached views, got %d", cache.size())
	}

	clock = start.Add(2 * time.Hour)
	cache.with(short, func(v *viewState) {
		if v.clients.ok {
			t.Fatalf("expected an expired view not to be reused")
		}
	})
	cache.with(long, func(v *viewState) {
		if !v.clients.ok {
			t.Fatalf("expected a live view to keep its snapshot")
		}
	})

	cache.with(requestWith(nil), func(*viewState) {})
	if cache.size() != 2 {
		t.Fatalf("expected the expired view to be swept, got %d views", cache.size())
	}

	clock = start.Add(4 * time.Hour)
	cache.with(requestWith(&session.Session{ID: "next", ExpiresAt: clock.Add(time.Hour)}), func(*viewState) {})
	if cache.size() != 1 {
		t.Fatalf("expected only the new view to remain, got %d", cache.size())
	}
}

func TestViewCacheDrop(t *testing.T) {
	cache := newViewCache(time.Now)
	req := requestWith(&session.Session{ID: "s1", ExpiresAt: time.Now().Add(time.Hour)})
	cache.with(req, func(*viewState) {})
	cache.drop(req)
	if cache.size() != 0 {
		t.Fatalf("expected the view to be dropped, got %d", cache.size())
	}
}
