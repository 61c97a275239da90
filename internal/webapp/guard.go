package webapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/tacbarber/barberdesk/internal/roles"
	"github.com/tacbarber/barberdesk/internal/security"
	"github.com/tacbarber/barberdesk/internal/session"
)

type ctxKey int

const (
	sessionKey ctxKey = iota
	gateKey
)

func sessionFrom(r *http.Request) *session.Session {
	sess, _ := r.Context().Value(sessionKey).(*session.Session)
	return sess
}

func gateFrom(r *http.Request) roles.Gate {
	if gate, ok := r.Context().Value(gateKey).(roles.Gate); ok {
		return gate
	}
	return roles.Anonymous()
}

// private wraps a page handler with the session check, the role gate and,
// for anything but GET, the CSRF check.
func (s *server) private(page roles.Page, handler http.HandlerFunc) http.Handler {
	return s.requireSession(s.gatePage(page, s.requireCSRF(handler)))
}

func (s *server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessions.Current(r)
		if err != nil && !errors.Is(err, session.ErrNotFound) {
			s.log.Error().Err(err).Msg("session lookup failed")
		}
		if sess == nil {
			if s.authRequired {
				redirect(w, r, "/login", "error", "Inicia sesión para continuar.")
				return
			}
			s.log.Debug().Str("path", r.URL.Path).Msg("no session, auth check disabled")
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey, sess)
		ctx = context.WithValue(ctx, gateKey, roles.New(sess.User.Role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// gatePage sends interns back to the calendar before anything is fetched.
func (s *server) gatePage(page roles.Page, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !gateFrom(r).AllowsPage(page) {
			redirect(w, r, roles.InternLanding, "aviso", roles.InternWarning)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) requireCSRF(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			next(w, r)
			return
		}
		sess := sessionFrom(r)
		if sess == nil {
			next(w, r)
			return
		}
		if !security.TokensEqual(sess.CSRF, r.FormValue(csrfField)) {
			http.Error(w, "Formulario caducado. Recarga la página.", http.StatusForbidden)
			return
		}
		next(w, r)
	}
}

// forbid answers a mutation the role is not allowed to make.
func forbid(w http.ResponseWriter) {
	http.Error(w, "No tienes permiso para esta acción.", http.StatusForbidden)
}
