package webapp

import (
	"net/http"
	"strings"

	"github.com/tacbarber/barberdesk/internal/backend"
	"github.com/tacbarber/barberdesk/internal/barber"
	"github.com/tacbarber/barberdesk/internal/roles"
)

const (
	msgCheckFields    = "Revisa los campos marcados."
	msgClientsLoad    = "No se han podido cargar los clientes."
	msgClientSaved    = "Cliente guardado."
	msgClientSaveFail = "No se pudo guardar el cliente."
)

func pickClients(v *viewState) *snapshot[barber.Client] { return &v.clients }

// listControls reads the sort, filter and search inputs shared by the list pages.
func listControls(r *http.Request) (barber.SortOrder, barber.ActiveFilter, string, bool) {
	q := r.URL.Query()
	return barber.ParseSortOrder(q.Get("orden")),
		barber.ParseActiveFilter(q.Get("estado")),
		strings.TrimSpace(q.Get("q")),
		q.Get("vista") == "1"
}

func (s *server) clientsPage(w http.ResponseWriter, r *http.Request) {
	order, filter, search, reuse := listControls(r)
	data := pageData{
		Title:  "Clientes",
		Nav:    roles.PageClients,
		Order:  string(order),
		Filter: string(filter),
		Query:  search,
	}

	clients, err := loadSnapshot(s, r, pickClients, search, reuse, func() ([]barber.Client, error) {
		return s.api.ListClients(r.Context(), backend.ListFilter{Query: search})
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("list clients failed")
		data.Error = backendMessage(err, msgClientsLoad)
	}
	data.Clients = barber.FilterByActive(barber.SortByName(clients, order), filter)

	caps := gateFrom(r).Capabilities()
	if id := queryID(r, "editar"); id > 0 && caps.EditClients {
		client, found := findByID(clients, id, func(c barber.Client) int64 { return c.ID })
		if !found {
			var getErr error
			client, getErr = s.api.GetClient(r.Context(), id)
			found = getErr == nil
		}
		if found {
			data.ClientForm = barber.ClientFormFrom(client)
			data.FormOpen, data.Editing = true, true
		}
	} else if r.URL.Query().Get("nuevo") == "1" && caps.CreateClients {
		data.FormOpen = true
	}
	s.render(w, r, s.clientsTmpl, http.StatusOK, data)
}

// clientsForm shows the list again with the rejected form open.
func (s *server) clientsForm(w http.ResponseWriter, r *http.Request, form barber.ClientForm, errs map[string]string, message string) {
	data := pageData{
		Title:       "Clientes",
		Nav:         roles.PageClients,
		Error:       message,
		FormOpen:    true,
		Editing:     form.ID > 0,
		ClientForm:  form,
		FieldErrors: errs,
	}
	clients, err := loadSnapshot(s, r, pickClients, "", true, func() ([]barber.Client, error) {
		return s.api.ListClients(r.Context(), backend.ListFilter{})
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("list clients failed")
	}
	data.Clients = clients
	s.render(w, r, s.clientsTmpl, http.StatusUnprocessableEntity, data)
}

func (s *server) createClient(w http.ResponseWriter, r *http.Request) {
	if !gateFrom(r).Capabilities().CreateClients {
		forbid(w)
		return
	}
	s.saveClient(w, r, 0)
}

func (s *server) updateClient(w http.ResponseWriter, r *http.Request) {
	if !gateFrom(r).Capabilities().EditClients {
		forbid(w)
		return
	}
	id := pathID(r)
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	s.saveClient(w, r, id)
}

func (s *server) saveClient(w http.ResponseWriter, r *http.Request, id int64) {
	form := barber.ReadClientForm(postForm(r))
	form.ID = id
	if err := barber.Validate(form); err != nil {
		s.clientsForm(w, r, form, fieldErrors(err), msgCheckFields)
		return
	}

	var err error
	if id == 0 {
		_, err = s.api.CreateClient(r.Context(), form)
	} else {
		_, err = s.api.UpdateClient(r.Context(), id, form)
	}
	if err != nil {
		s.log.Warn().Err(err).Int64("id", id).Msg("save client failed")
		s.clientsForm(w, r, form, nil, backendMessage(err, msgClientSaveFail))
		return
	}
	s.views.drop(r)
	redirect(w, r, "/clientes", "message", msgClientSaved)
}

func (s *server) clientAction(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	caps := gateFrom(r).Capabilities()
	action := r.PathValue("accion")

	if action == "eliminar" {
		if !caps.DeleteClients {
			forbid(w)
			return
		}
		s.confirmDelete(w, r, deletion{
			question: "¿Eliminar este cliente? Esta acción no se puede deshacer.",
			back:     "/clientes",
			done:     "Cliente eliminado.",
			failed:   "No se pudo eliminar el cliente.",
			run:      func() error { return s.api.DeleteClient(r.Context(), id) },
		})
		return
	}

	toggle, ok := barber.ParseActiveAction(action)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if !caps.ToggleClients {
		forbid(w)
		return
	}
	if err := s.api.SetClientActive(r.Context(), id, toggle); err != nil {
		s.log.Warn().Err(err).Int64("id", id).Str("action", string(toggle)).Msg("toggle client failed")
		redirect(w, r, "/clientes", "error", backendMessage(err, "No se pudo cambiar el estado del cliente."))
		return
	}
	s.views.drop(r)
	redirect(w, r, "/clientes", "message", "Estado del cliente actualizado.")
}

func findByID[T any](items []T, id int64, idOf func(T) int64) (T, bool) {
	for _, item := range items {
		if idOf(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}
