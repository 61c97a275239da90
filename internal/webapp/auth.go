package webapp

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tacbarber/barberdesk/internal/backend"
	"github.com/tacbarber/barberdesk/internal/roles"
	"github.com/tacbarber/barberdesk/internal/security"
)

const (
	msgFillAll          = "Rellena todos los campos."
	msgBadCredentials   = "Usuario o contraseña incorrectos."
	msgRecoverSent      = "Si el email está registrado, recibirás un enlace para restablecer la contraseña."
	msgResetLinkInvalid = "El enlace no es válido o ha caducado."
)

func (s *server) loginPage(w http.ResponseWriter, r *http.Request) {
	if sess, err := s.sessions.Current(r); err == nil {
		http.Redirect(w, r, landingFor(sess.User.Role), http.StatusFound)
		return
	}
	s.render(w, r, s.loginTmpl, http.StatusOK, pageData{Title: "Acceso", Nav: roles.PageLogin})
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.render(w, r, s.loginTmpl, http.StatusBadRequest, pageData{Title: "Acceso", Error: msgFillAll})
		return
	}
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := strings.TrimSpace(r.PostFormValue("password"))
	data := pageData{Title: "Acceso", Email: email}
	if email == "" || password == "" {
		data.Error = msgFillAll
		s.render(w, r, s.loginTmpl, http.StatusBadRequest, data)
		return
	}

	user, err := s.api.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, backend.ErrUnavailable) {
			data.Error = msgConnection
			s.render(w, r, s.loginTmpl, http.StatusBadGateway, data)
			return
		}
		s.log.Info().Str("email", email).Msg("login rejected")
		data.Error = msgBadCredentials
		s.render(w, r, s.loginTmpl, http.StatusUnauthorized, data)
		return
	}

	if _, err := s.sessions.Start(r.Context(), w, user); err != nil {
		s.log.Error().Err(err).Msg("session start failed")
		data.Error = "No se pudo iniciar la sesión."
		s.render(w, r, s.loginTmpl, http.StatusInternalServerError, data)
		return
	}
	s.log.Info().Str("email", user.Email).Str("rol", user.Role).Msg("login")
	http.Redirect(w, r, landingFor(user.Role), http.StatusFound)
}

// landingFor is the first page after signing in.
func landingFor(role string) string {
	if roles.New(role).IsIntern() {
		return roles.InternLanding
	}
	return "/citas"
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	s.views.drop(r)
	if err := s.sessions.End(w, r); err != nil {
		s.log.Warn().Err(err).Msg("session delete failed")
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *server) recoverPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.recoverTmpl, http.StatusOK, pageData{Title: "Recuperar contraseña"})
}

// recoverSubmit answers the same for known and unknown emails.
func (s *server) recoverSubmit(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	data := pageData{Title: "Recuperar contraseña", Email: email}
	if email == "" {
		data.Error = msgFillAll
		s.render(w, r, s.recoverTmpl, http.StatusBadRequest, data)
		return
	}
	err := s.api.RequestPasswordReset(r.Context(), email)
	switch {
	case err == nil, backend.IsStatus(err, http.StatusNotFound):
		data.Message = msgRecoverSent
		s.render(w, r, s.recoverTmpl, http.StatusOK, data)
	case errors.Is(err, backend.ErrUnavailable):
		data.Error = msgConnection
		s.render(w, r, s.recoverTmpl, http.StatusBadGateway, data)
	default:
		data.Error = "No se pudo enviar el email de recuperación."
		s.render(w, r, s.recoverTmpl, http.StatusUnprocessableEntity, data)
	}
}

func (s *server) resetPage(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	data := pageData{Title: "Nueva contraseña", Token: token}
	if token == "" {
		data.Error = msgResetLinkInvalid
		s.render(w, r, s.resetTmpl, http.StatusBadRequest, data)
		return
	}
	if err := s.api.ValidateResetToken(r.Context(), token); err != nil {
		data.Error = backendMessage(err, msgResetLinkInvalid)
		s.render(w, r, s.resetTmpl, http.StatusOK, data)
		return
	}
	data.TokenValid = true
	s.render(w, r, s.resetTmpl, http.StatusOK, data)
}

func (s *server) resetSubmit(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.PostFormValue("token"))
	password := r.PostFormValue("password")
	data := pageData{Title: "Nueva contraseña", Token: token, TokenValid: token != ""}
	if token == "" {
		data.Error = msgResetLinkInvalid
		s.render(w, r, s.resetTmpl, http.StatusBadRequest, data)
		return
	}
	if err := security.CheckNewPassword(password, r.PostFormValue("confirmacion")); err != nil {
		data.Error = capitalize(err.Error()) + "."
		s.render(w, r, s.resetTmpl, http.StatusUnprocessableEntity, data)
		return
	}
	if err := s.api.ResetPassword(r.Context(), token, password); err != nil {
		data.Error = backendMessage(err, msgResetLinkInvalid)
		s.render(w, r, s.resetTmpl, http.StatusUnprocessableEntity, data)
		return
	}
	redirect(w, r, "/login", "message", "Contraseña actualizada. Ya puedes iniciar sesión.")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + string(r[1:])
}
