// Package webapp serves the front office: server-rendered pages that read
// and write through the barbershop REST API.
package webapp

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/tacbarber/barberdesk/internal/backend"
	"github.com/tacbarber/barberdesk/internal/barber"
	"github.com/tacbarber/barberdesk/internal/calendar"
	"github.com/tacbarber/barberdesk/internal/middleware"
	"github.com/tacbarber/barberdesk/internal/roles"
	"github.com/tacbarber/barberdesk/internal/session"
)

const (
	msgConnection = "Error de conexión con el servidor."
	csrfField     = "csrf"
)

// Backend is the subset of the REST client the pages use.
type Backend interface {
	Login(ctx context.Context, email, password string) (barber.SessionUser, error)
	RequestPasswordReset(ctx context.Context, email string) error
	ValidateResetToken(ctx context.Context, token string) error
	ResetPassword(ctx context.Context, token, password string) error

	ListAppointments(ctx context.Context, filter backend.AppointmentFilter) ([]barber.Appointment, error)
	CreateAppointment(ctx context.Context, payload barber.AppointmentPayload) (barber.Appointment, error)
	TransitionAppointment(ctx context.Context, id int64, action barber.StatusAction) error
	DeleteAppointment(ctx context.Context, id int64) error

	ListClients(ctx context.Context, filter backend.ListFilter) ([]barber.Client, error)
	GetClient(ctx context.Context, id int64) (barber.Client, error)
	CreateClient(ctx context.Context, form barber.ClientForm) (barber.Client, error)
	UpdateClient(ctx context.Context, id int64, form barber.ClientForm) (barber.Client, error)
	SetClientActive(ctx context.Context, id int64, action barber.ActiveAction) error
	DeleteClient(ctx context.Context, id int64) error

	ListServices(ctx context.Context, filter backend.ListFilter) ([]barber.Service, error)
	GetService(ctx context.Context, id int64) (barber.Service, error)
	CreateService(ctx context.Context, form barber.ServiceForm) (barber.Service, error)
	UpdateService(ctx context.Context, id int64, form barber.ServiceForm) (barber.Service, error)
	SetServiceActive(ctx context.Context, id int64, action barber.ActiveAction) error
	DeleteService(ctx context.Context, id int64) error

	ListEmployees(ctx context.Context, filter backend.ListFilter) ([]barber.Employee, error)
	GetEmployee(ctx context.Context, id int64) (barber.Employee, error)
	CreateEmployee(ctx context.Context, form barber.EmployeeForm) (barber.Employee, error)
	UpdateEmployee(ctx context.Context, id int64, form barber.EmployeeForm) (barber.Employee, error)
	SetEmployeeActive(ctx context.Context, id int64, action barber.ActiveAction) error
	DeleteEmployee(ctx context.Context, id int64) error
}

var _ Backend = (*backend.Client)(nil)

type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	AuthRequired    bool
	LoginRatePerMin int
	TrustProxy      bool
}

type Deps struct {
	Backend  Backend
	Sessions *session.Manager
	Logger   zerolog.Logger
	Location *time.Location
	Now      func() time.Time
}

//go:embed templates/*.html assets/app.css assets/calendario.js
var templatesFS embed.FS

type server struct {
	api          Backend
	sessions     *session.Manager
	log          zerolog.Logger
	loc          *time.Location
	now          func() time.Time
	authRequired bool
	views        *viewCache

	loginTmpl        *template.Template
	recoverTmpl      *template.Template
	resetTmpl        *template.Template
	appointmentsTmpl *template.Template
	clientsTmpl      *template.Template
	servicesTmpl     *template.Template
	employeesTmpl    *template.Template
	calendarTmpl     *template.Template
	dashboardTmpl    *template.Template
	confirmTmpl      *template.Template
	importTmpl       *template.Template
}

var templateFuncs = template.FuncMap{
	"orDash":   barber.Or,
	"euros":    barber.FormatEuros,
	"whatsapp": barber.WhatsAppURL,
	"dayURL":   calendar.DayURL,
	"toggle":   barber.ToggleFor,
	"fieldErr": func(errs map[string]string, field string) string { return errs[field] },
	"rowAction": func(page pageData, id int64, action, label string) rowAction {
		return rowAction{ID: id, Action: action, Label: label, CSRF: page.CSRF, Date: page.DateFilter}
	},
}

func parsePage(name string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
}

func newServer(cfg Config, deps Deps) (*server, error) {
	if deps.Backend == nil || deps.Sessions == nil {
		return nil, errors.New("webapp: backend and session manager are required")
	}
	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	s := &server{
		api:          deps.Backend,
		sessions:     deps.Sessions,
		log:          deps.Logger.With().Str("component", "webapp").Logger(),
		loc:          loc,
		now:          func() time.Time { return now().In(loc) },
		authRequired: cfg.AuthRequired,
		views:        newViewCache(func() time.Time { return now().In(loc) }),
	}

	pages := []struct {
		dst  **template.Template
		name string
	}{
		{&s.loginTmpl, "login.html"},
		{&s.recoverTmpl, "recuperar.html"},
		{&s.resetTmpl, "resetear.html"},
		{&s.appointmentsTmpl, "citas.html"},
		{&s.clientsTmpl, "clientes.html"},
		{&s.servicesTmpl, "servicios.html"},
		{&s.employeesTmpl, "empleados.html"},
		{&s.calendarTmpl, "calendario.html"},
		{&s.dashboardTmpl, "dashboard.html"},
		{&s.confirmTmpl, "confirmar.html"},
		{&s.importTmpl, "importar.html"},
	}
	for _, page := range pages {
		tmpl, err := parsePage(page.name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page.name, err)
		}
		*page.dst = tmpl
	}
	return s, nil
}

// NewHandler builds the full handler tree, middleware included.
func NewHandler(cfg Config, deps Deps) (http.Handler, error) {
	s, err := newServer(cfg, deps)
	if err != nil {
		return nil, err
	}
	limiter := middleware.NewRateLimiter(cfg.LoginRatePerMin, cfg.TrustProxy, s.log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.loginPage)
	mux.HandleFunc("GET /login", s.loginPage)
	mux.Handle("POST /login", limiter.Middleware(http.HandlerFunc(s.login)))
	mux.Handle("POST /logout", s.private(roles.PageLogin, s.logout))
	mux.HandleFunc("GET /recuperar", s.recoverPage)
	mux.Handle("POST /recuperar", limiter.Middleware(http.HandlerFunc(s.recoverSubmit)))
	mux.HandleFunc("GET /resetear", s.resetPage)
	mux.Handle("POST /resetear", limiter.Middleware(http.HandlerFunc(s.resetSubmit)))

	mux.Handle("GET /citas", s.private(roles.PageAppointments, s.appointmentsPage))
	mux.Handle("POST /citas", s.private(roles.PageAppointments, s.createAppointment))
	mux.Handle("GET /citas/exportar", s.private(roles.PageAppointments, s.exportAppointments))
	mux.Handle("POST /citas/{id}/{accion}", s.private(roles.PageAppointments, s.appointmentAction))

	mux.Handle("GET /clientes", s.private(roles.PageClients, s.clientsPage))
	mux.Handle("POST /clientes", s.private(roles.PageClients, s.createClient))
	mux.Handle("GET /clientes/exportar", s.private(roles.PageClients, s.exportClients))
	mux.Handle("POST /clientes/importar", s.limitUpload(s.private(roles.PageClients, s.importClients)))
	mux.Handle("POST /clientes/{id}", s.private(roles.PageClients, s.updateClient))
	mux.Handle("POST /clientes/{id}/{accion}", s.private(roles.PageClients, s.clientAction))

	mux.Handle("GET /servicios", s.private(roles.PageServices, s.servicesPage))
	mux.Handle("POST /servicios", s.private(roles.PageServices, s.createService))
	mux.Handle("POST /servicios/{id}", s.private(roles.PageServices, s.updateService))
	mux.Handle("POST /servicios/{id}/{accion}", s.private(roles.PageServices, s.serviceAction))

	mux.Handle("GET /empleados", s.private(roles.PageEmployees, s.employeesPage))
	mux.Handle("POST /empleados", s.private(roles.PageEmployees, s.createEmployee))
	mux.Handle("POST /empleados/{id}", s.private(roles.PageEmployees, s.updateEmployee))
	mux.Handle("POST /empleados/{id}/{accion}", s.private(roles.PageEmployees, s.employeeAction))

	mux.Handle("GET /calendario", s.private(roles.PageCalendar, s.calendarPage))
	mux.Handle("GET /calendario/eventos", s.private(roles.PageCalendar, s.calendarEvents))

	mux.Handle("GET /dashboard", s.private(roles.PageDashboard, s.dashboardPage))
	mux.Handle("GET /dashboard/mes", s.private(roles.PageDashboard, s.dashboardMonth))

	mux.HandleFunc("GET /assets/app.css", s.assetFile("assets/app.css", "text/css; charset=utf-8"))
	mux.HandleFunc("GET /assets/calendario.js", s.assetFile("assets/calendario.js", "text/javascript; charset=utf-8"))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	csp := strings.Join([]string{
		"default-src 'self'",
		"style-src 'self' https://cdn.jsdelivr.net 'unsafe-inline'",
		"script-src 'self' https://cdn.jsdelivr.net",
		"img-src 'self' data:",
		"connect-src 'self'",
		"frame-ancestors 'none'",
	}, "; ")

	return middleware.Chain(
		mux,
		middleware.RequestLogger(s.log),
		middleware.SecurityHeaders(middleware.SecurityHeadersConfig{ContentSecurityPolicy: csp}),
	), nil
}

func Run(ctx context.Context, cfg Config, deps Deps) error {
	handler, err := NewHandler(cfg, deps)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		deps.Logger.Info().Str("addr", cfg.Addr).Msg("barberdesk listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *server) assetFile(name, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := templatesFS.ReadFile(name)
		if err != nil {
			http.Error(w, "asset not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(data)
	}
}

func (s *server) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, status int, data pageData) {
	data.fill(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		s.log.Error().Err(err).Str("template", tmpl.Name()).Msg("template render failed")
	}
}

// redirect carries a flash message in the query string.
func redirect(w http.ResponseWriter, r *http.Request, path, key, message string) {
	if message != "" {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		path += sep + url.Values{key: {message}}.Encode()
	}
	http.Redirect(w, r, path, http.StatusFound)
}

// backendMessage turns a failed call into the text shown to the user.
func backendMessage(err error, fallback string) string {
	if errors.Is(err, backend.ErrUnavailable) {
		return msgConnection
	}
	return fallback
}
