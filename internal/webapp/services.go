package webapp

import (
	"net/http"

	"github.com/tacbarber/barberdesk/internal/backend"
	"github.com/tacbarber/barberdesk/internal/barber"
	"github.com/tacbarber/barberdesk/internal/roles"
)

func pickServices(v *viewState) *snapshot[barber.Service] { return &v.services }

func (s *server) servicesPage(w http.ResponseWriter, r *http.Request) {
	order, filter, search, reuse := listControls(r)
	data := pageData{
		Title:  "Servicios",
		Nav:    roles.PageServices,
		Order:  string(order),
		Filter: string(filter),
		Query:  search,
	}

	services, err := loadSnapshot(s, r, pickServices, search, reuse, func() ([]barber.Service, error) {
		return s.api.ListServices(r.Context(), backend.ListFilter{Query: search})
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("list services failed")
		data.Error = backendMessage(err, "No se han podido cargar los servicios.")
	}
	data.Services = barber.FilterByActive(barber.SortByName(services, order), filter)

	caps := gateFrom(r).Capabilities()
	if id := queryID(r, "editar"); id > 0 && caps.EditServices {
		service, found := findByID(services, id, func(svc barber.Service) int64 { return svc.ID })
		if !found {
			var getErr error
			service, getErr = s.api.GetService(r.Context(), id)
			found = getErr == nil
		}
		if found {
			data.ServiceForm = barber.ServiceFormFrom(service)
			data.FormOpen, data.Editing = true, true
		}
	} else if r.URL.Query().Get("nuevo") == "1" && caps.CreateServices {
		data.FormOpen = true
	}
	s.render(w, r, s.servicesTmpl, http.StatusOK, data)
}

func (s *server) servicesForm(w http.ResponseWriter, r *http.Request, form barber.ServiceForm, errs map[string]string, message string) {
	data := pageData{
		Title:       "Servicios",
		Nav:         roles.PageServices,
		Error:       message,
		FormOpen:    true,
		Editing:     form.ID > 0,
		ServiceForm: form,
		FieldErrors: errs,
	}
	services, err := loadSnapshot(s, r, pickServices, "", true, func() ([]barber.Service, error) {
		return s.api.ListServices(r.Context(), backend.ListFilter{})
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("list services failed")
	}
	data.Services = services
	s.render(w, r, s.servicesTmpl, http.StatusUnprocessableEntity, data)
}

func (s *server) createService(w http.ResponseWriter, r *http.Request) {
	if !gateFrom(r).Capabilities().CreateServices {
		forbid(w)
		return
	}
	s.saveService(w, r, 0)
}

func (s *server) updateService(w http.ResponseWriter, r *http.Request) {
	if !gateFrom(r).Capabilities().EditServices {
		forbid(w)
		return
	}
	id := pathID(r)
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	s.saveService(w, r, id)
}

func (s *server) saveService(w http.ResponseWriter, r *http.Request, id int64) {
	form := barber.ReadServiceForm(postForm(r))
	form.ID = id
	if err := barber.Validate(form); err != nil {
		s.servicesForm(w, r, form, fieldErrors(err), msgCheckFields)
		return
	}

	var err error
	if id == 0 {
		_, err = s.api.CreateService(r.Context(), form)
	} else {
		_, err = s.api.UpdateService(r.Context(), id, form)
	}
	if err != nil {
		s.log.Warn().Err(err).Int64("id", id).Msg("save service failed")
		s.servicesForm(w, r, form, nil, backendMessage(err, "No se pudo guardar el servicio."))
		return
	}
	s.views.drop(r)
	redirect(w, r, "/servicios", "message", "Servicio guardado.")
}

func (s *server) serviceAction(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	caps := gateFrom(r).Capabilities()
	action := r.PathValue("accion")

	if action == "eliminar" {
		if !caps.DeleteServices {
			forbid(w)
			return
		}
		s.confirmDelete(w, r, deletion{
			question: "¿Eliminar este servicio? Esta acción no se puede deshacer.",
			back:     "/servicios",
			done:     "Servicio eliminado.",
			failed:   "No se pudo eliminar el servicio.",
			run:      func() error { return s.api.DeleteService(r.Context(), id) },
		})
		return
	}

	toggle, ok := barber.ParseActiveAction(action)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !caps.ToggleServices {
		forbid(w)
		return
	}
	if err := s.api.SetServiceActive(r.Context(), id, toggle); err != nil {
		s.log.Warn().Err(err).Int64("id", id).Str("action", string(toggle)).Msg("toggle service failed")
		redirect(w, r, "/servicios", "error", backendMessage(err, "No se pudo cambiar el estado del servicio."))
		return
	}
	s.views.drop(r)
	redirect(w, r, "/servicios", "message", "Estado del servicio actualizado.")
}
