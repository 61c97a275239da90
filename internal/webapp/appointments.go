package webapp

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tacbarber/barberdesk/internal/backend"
	"github.com/tacbarber/barberdesk/internal/barber"
	"github.com/tacbarber/barberdesk/internal/roles"
)

const dateLayout = "2006-01-02"

// appointmentFilter reads fecha and barberoId; a malformed date is dropped.
func appointmentFilter(r *http.Request) (backend.AppointmentFilter, bool) {
	filter := backend.AppointmentFilter{BarberID: queryID(r, "barberoId")}
	date := strings.TrimSpace(r.URL.Query().Get("fecha"))
	if date == "" {
		return filter, true
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return filter, false
	}
	filter.Date = date
	return filter, true
}

func (s *server) appointmentsPage(w http.ResponseWriter, r *http.Request) {
	filter, valid := appointmentFilter(r)
	data := pageData{
		Title:      "Citas",
		Nav:        roles.PageAppointments,
		DateFilter: filter.Date,
		BarberID:   filter.BarberID,
		Statuses:   barber.Statuses,
	}
	if !valid {
		data.Warning = "La fecha indicada no es válida; se muestran todas las citas."
	}

	appts, err := s.api.ListAppointments(r.Context(), filter)
	if err != nil {
		s.log.Warn().Err(err).Msg("list appointments failed")
		data.Error = backendMessage(err, "No se han podido cargar las citas.")
	}
	data.Appointments = appts

	if r.URL.Query().Get("nuevo") == "1" {
		data.FormOpen = true
		data.AppointmentForm = barber.AppointmentForm{Date: filter.Date, BarberID: filter.BarberID}
	}
	s.loadAppointmentOptions(r, &data)
	s.render(w, r, s.appointmentsTmpl, http.StatusOK, data)
}

// loadAppointmentOptions fills the form selects. A failure leaves the
// select empty and is only logged.
func (s *server) loadAppointmentOptions(r *http.Request, data *pageData) {
	active := backend.ListFilter{OnlyActive: true}
	var g errgroup.Group
	g.Go(func() error {
		clients, err := s.api.ListClients(r.Context(), active)
		if err != nil {
			s.log.Warn().Err(err).Msg("load client options failed")
			return nil
		}
		data.ClientOptions = barber.SortByName(clients, barber.SortAsc)
		return nil
	})
	g.Go(func() error {
		services, err := s.api.ListServices(r.Context(), active)
		if err != nil {
			s.log.Warn().Err(err).Msg("load service options failed")
			return nil
		}
		data.ServiceOptions = barber.SortByName(services, barber.SortAsc)
		return nil
	})
	g.Go(func() error {
		barbers, err := s.api.ListEmployees(r.Context(), active)
		if err != nil {
			s.log.Warn().Err(err).Msg("load barber options failed")
			return nil
		}
		data.BarberOptions = barber.SortByName(barbers, barber.SortAsc)
		return nil
	})
	_ = g.Wait()
}

func (s *server) createAppointment(w http.ResponseWriter, r *http.Request) {
	form := barber.ReadAppointmentForm(postForm(r))
	if err := barber.Validate(form); err != nil {
		s.appointmentsForm(w, r, form, fieldErrors(err), msgCheckFields)
		return
	}
	if _, err := s.api.CreateAppointment(r.Context(), form.Payload()); err != nil {
		s.log.Warn().Err(err).Msg("create appointment failed")
		s.appointmentsForm(w, r, form, nil, backendMessage(err, "No se pudo crear la cita."))
		return
	}
	s.views.drop(r)
	redirect(w, r, "/citas?fecha="+form.Date, "message", "Cita creada.")
}

func (s *server) appointmentsForm(w http.ResponseWriter, r *http.Request, form barber.AppointmentForm, errs map[string]string, message string) {
	data := pageData{
		Title:           "Citas",
		Nav:             roles.PageAppointments,
		Error:           message,
		FormOpen:        true,
		AppointmentForm: form,
		FieldErrors:     errs,
		Statuses:        barber.Statuses,
	}
	if appts, err := s.api.ListAppointments(r.Context(), backend.AppointmentFilter{}); err == nil {
		data.Appointments = appts
	}
	s.loadAppointmentOptions(r, &data)
	s.render(w, r, s.appointmentsTmpl, http.StatusUnprocessableEntity, data)
}

func (s *server) appointmentAction(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	back := "/citas"
	if date := strings.TrimSpace(r.PostFormValue("fecha")); date != "" {
		if _, err := time.Parse(dateLayout, date); err == nil {
			back += "?fecha=" + date
		}
	}
	action := r.PathValue("accion")

	if action == "eliminar" {
		if !gateFrom(r).Capabilities().DeleteAppointments {
			forbid(w)
			return
		}
		s.confirmDelete(w, r, deletion{
			question: "¿Eliminar esta cita? Esta acción no se puede deshacer.",
			back:     back,
			done:     "Cita eliminada.",
			failed:   "No se pudo eliminar la cita.",
			run:      func() error { return s.api.DeleteAppointment(r.Context(), id) },
		})
		return
	}

	transition, ok := barber.ParseStatusAction(action)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := s.api.TransitionAppointment(r.Context(), id, transition); err != nil {
		s.log.Warn().Err(err).Int64("id", id).Str("action", string(transition)).Msg("appointment transition failed")
		redirect(w, r, back, "error", backendMessage(err, "No se pudo actualizar la cita."))
		return
	}
	s.views.drop(r)
	redirect(w, r, back, "message", "Cita actualizada.")
}
