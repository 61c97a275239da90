package webapp

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/tacbarber/barberdesk/internal/backend"
	"github.com/tacbarber/barberdesk/internal/barber"
	"github.com/tacbarber/barberdesk/internal/dashboard"
	"github.com/tacbarber/barberdesk/internal/roles"
)

const msgDashboardLoad = "No se han podido cargar los datos del panel."

func (s *server) dashboardPage(w http.ResponseWriter, r *http.Request) {
	var (
		appts    []barber.Appointment
		clients  []barber.Client
		services []barber.Service
	)
	all := backend.ListFilter{}
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		appts, err = s.api.ListAppointments(ctx, backend.AppointmentFilter{})
		return err
	})
	g.Go(func() (err error) {
		clients, err = s.api.ListClients(ctx, all)
		return err
	})
	g.Go(func() (err error) {
		services, err = s.api.ListServices(ctx, all)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warn().Err(err).Msg("dashboard load failed")
		s.views.with(r, func(v *viewState) { v.summary, v.board = nil, nil })
		s.render(w, r, s.dashboardTmpl, http.StatusOK, pageData{
			Title: "Panel",
			Nav:   roles.PageDashboard,
			Error: backendMessage(err, msgDashboardLoad),
		})
		return
	}

	now := s.now()
	summary := dashboard.Summarize(now, appts, clients, services)
	board := dashboard.NewBoard(appts, now)
	grid := board.Grid()
	s.views.with(r, func(v *viewState) { v.summary, v.board = &summary, board })
	s.renderDashboard(w, r, &summary, grid)
}

// dashboardMonth moves the month grid over the last fetched snapshot.
func (s *server) dashboardMonth(w http.ResponseWriter, r *http.Request) {
	var (
		summary *dashboard.Summary
		grid    dashboard.Grid
		ok      bool
	)
	dir := r.URL.Query().Get("dir")
	s.views.with(r, func(v *viewState) {
		if v.board == nil || v.summary == nil {
			return
		}
		switch dir {
		case "prev":
			grid = v.board.Prev()
		case "next":
			grid = v.board.Next()
		default:
			grid = v.board.Grid()
		}
		summary, ok = v.summary, true
	})
	if !ok {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}
	s.renderDashboard(w, r, summary, grid)
}

func (s *server) renderDashboard(w http.ResponseWriter, r *http.Request, summary *dashboard.Summary, grid dashboard.Grid) {
	s.render(w, r, s.dashboardTmpl, http.StatusOK, pageData{
		Title:    "Panel",
		Nav:      roles.PageDashboard,
		Summary:  summary,
		Grid:     &grid,
		Weeks:    grid.Weeks(),
		Weekdays: dashboard.Weekdays,
	})
}
