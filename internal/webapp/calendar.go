package webapp

import (
	"net/http"

	"github.com/tacbarber/barberdesk/internal/backend"
	"github.com/tacbarber/barberdesk/internal/calendar"
	"github.com/tacbarber/barberdesk/internal/roles"
)

func (s *server) calendarPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, s.calendarTmpl, http.StatusOK, pageData{Title: "Calendario", Nav: roles.PageCalendar})
}

// calendarEvents feeds the calendar widget.
func (s *server) calendarEvents(w http.ResponseWriter, r *http.Request) {
	appts, err := s.api.ListAppointments(r.Context(), backend.AppointmentFilter{})
	if err != nil {
		s.log.Warn().Err(err).Msg("calendar events failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": backendMessage(err, "No se han podido cargar las citas."),
		})
		return
	}
	writeJSON(w, http.StatusOK, calendar.Entries(appts))
}
