package webapp

import (
	"net/http"
	"sync"
	"time"

	"github.com/tacbarber/barberdesk/internal/barber"
	"github.com/tacbarber/barberdesk/internal/dashboard"
)

const (
	anonymousView = "anon"

	// unboundViewTTL applies to views without a session expiry, such as
	// the shared view used when sign-in is not required.
	unboundViewTTL = 30 * time.Minute
)

// viewState is what one browser session last fetched. Sorting, filtering
// and month navigation reuse it; loads and mutations replace it.
type viewState struct {
	clients   snapshot[barber.Client]
	services  snapshot[barber.Service]
	employees snapshot[barber.Employee]

	summary *dashboard.Summary
	board   *dashboard.Board

	expiresAt time.Time
}

// snapshot is one fetched collection and the search it was fetched with.
type snapshot[T any] struct {
	ok    bool
	query string
	items []T
}

// viewCache holds one viewState per session. States outlive neither their
// session nor unboundViewTTL of inactivity; expired ones are swept whenever
// a new state is created.
type viewCache struct {
	mu    sync.Mutex
	views map[string]*viewState
	now   func() time.Time
}

func newViewCache(now func() time.Time) *viewCache {
	return &viewCache{views: make(map[string]*viewState), now: now}
}

// viewSlot returns the cache key of the request and when its state expires.
func viewSlot(r *http.Request, now time.Time) (string, time.Time) {
	sess := sessionFrom(r)
	if sess == nil {
		return anonymousView, now.Add(unboundViewTTL)
	}
	if sess.ExpiresAt.IsZero() {
		return sess.ID, now.Add(unboundViewTTL)
	}
	return sess.ID, sess.ExpiresAt
}

// with runs fn on the request's state under the cache lock.
func (c *viewCache) with(r *http.Request, fn func(v *viewState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	key, expiresAt := viewSlot(r, now)
	v, ok := c.views[key]
	if !ok || now.After(v.expiresAt) {
		c.sweep(now)
		v = &viewState{}
		c.views[key] = v
	}
	v.expiresAt = expiresAt
	fn(v)
}

func (c *viewCache) drop(r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, _ := viewSlot(r, c.now())
	delete(c.views, key)
}

func (c *viewCache) sweep(now time.Time) {
	for key, v := range c.views {
		if now.After(v.expiresAt) {
			delete(c.views, key)
		}
	}
}

func (c *viewCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.views)
}

// loadSnapshot returns the cached collection when reuse is set and the
// search matches; otherwise it fetches and replaces the snapshot. A failed
// fetch clears it.
func loadSnapshot[T any](s *server, r *http.Request, pick func(*viewState) *snapshot[T], query string, reuse bool, fetch func() ([]T, error)) ([]T, error) {
	if reuse {
		var cached []T
		var hit bool
		s.views.with(r, func(v *viewState) {
			snap := pick(v)
			if snap.ok && snap.query == query {
				cached, hit = snap.items, true
			}
		})
		if hit {
			return cached, nil
		}
	}

	items, err := fetch()
	s.views.with(r, func(v *viewState) {
		if err != nil {
			*pick(v) = snapshot[T]{}
			return
		}
		*pick(v) = snapshot[T]{ok: true, query: query, items: items}
	})
	return items, err
}
