package webapp

import (
	"net/http"

	"github.com/tacbarber/barberdesk/internal/backend"
	"github.com/tacbarber/barberdesk/internal/barber"
	"github.com/tacbarber/barberdesk/internal/roles"
	"github.com/tacbarber/barberdesk/internal/security"
)

var employeeRoles = []roles.Role{roles.Admin, roles.Manager, roles.Staff, roles.Intern}

func pickEmployees(v *viewState) *snapshot[barber.Employee] { return &v.employees }

// employeesPage is read-only for everyone but managers.
func (s *server) employeesPage(w http.ResponseWriter, r *http.Request) {
	order, filter, _, reuse := listControls(r)
	data := pageData{
		Title:  "Empleados",
		Nav:    roles.PageEmployees,
		Order:  string(order),
		Filter: string(filter),
		Roles:  employeeRoles,
	}

	employees, err := loadSnapshot(s, r, pickEmployees, "", reuse, func() ([]barber.Employee, error) {
		return s.api.ListEmployees(r.Context(), backend.ListFilter{})
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("list employees failed")
		data.Error = backendMessage(err, "No se han podido cargar los empleados.")
	}
	data.Employees = barber.FilterByActive(barber.SortByName(employees, order), filter)

	if gateFrom(r).Capabilities().ManageEmployees {
		if id := queryID(r, "editar"); id > 0 {
			employee, found := findByID(employees, id, func(e barber.Employee) int64 { return e.ID })
			if !found {
				var getErr error
				employee, getErr = s.api.GetEmployee(r.Context(), id)
				found = getErr == nil
			}
			if found {
				data.EmployeeForm = barber.EmployeeFormFrom(employee)
				data.FormOpen, data.Editing = true, true
			}
		} else if r.URL.Query().Get("nuevo") == "1" {
			data.FormOpen = true
		}
	}
	s.render(w, r, s.employeesTmpl, http.StatusOK, data)
}

func (s *server) employeesForm(w http.ResponseWriter, r *http.Request, form barber.EmployeeForm, errs map[string]string, message string) {
	form.Password = ""
	data := pageData{
		Title:        "Empleados",
		Nav:          roles.PageEmployees,
		Error:        message,
		FormOpen:     true,
		Editing:      form.ID > 0,
		EmployeeForm: form,
		FieldErrors:  errs,
		Roles:        employeeRoles,
	}
	employees, err := loadSnapshot(s, r, pickEmployees, "", true, func() ([]barber.Employee, error) {
		return s.api.ListEmployees(r.Context(), backend.ListFilter{})
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("list employees failed")
	}
	data.Employees = employees
	s.render(w, r, s.employeesTmpl, http.StatusUnprocessableEntity, data)
}

func (s *server) createEmployee(w http.ResponseWriter, r *http.Request) {
	s.saveEmployee(w, r, 0)
}

func (s *server) updateEmployee(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	s.saveEmployee(w, r, id)
}

func (s *server) saveEmployee(w http.ResponseWriter, r *http.Request, id int64) {
	if !gateFrom(r).Capabilities().ManageEmployees {
		forbid(w)
		return
	}
	form := barber.ReadEmployeeForm(postForm(r))
	form.ID = id
	if err := barber.Validate(form); err != nil {
		s.employeesForm(w, r, form, fieldErrors(err), msgCheckFields)
		return
	}
	if form.Password != "" {
		if err := security.CheckPassword(form.Password); err != nil {
			s.employeesForm(w, r, form, map[string]string{"password": capitalize(err.Error())}, msgCheckFields)
			return
		}
	}

	var err error
	if id == 0 {
		_, err = s.api.CreateEmployee(r.Context(), form)
	} else {
		_, err = s.api.UpdateEmployee(r.Context(), id, form)
	}
	if err != nil {
		s.log.Warn().Err(err).Int64("id", id).Msg("save employee failed")
		s.employeesForm(w, r, form, nil, backendMessage(err, "No se pudo guardar el empleado."))
		return
	}
	s.views.drop(r)
	redirect(w, r, "/empleados", "message", "Empleado guardado.")
}

func (s *server) employeeAction(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	if id == 0 {
		http.NotFound(w, r)
		return
	}
	if !gateFrom(r).Capabilities().ManageEmployees {
		forbid(w)
		return
	}
	action := r.PathValue("accion")

	if action == "eliminar" {
		s.confirmDelete(w, r, deletion{
			question: "¿Eliminar este empleado? Esta acción no se puede deshacer.",
			back:     "/empleados",
			done:     "Empleado eliminado.",
			failed:   "No se pudo eliminar el empleado.",
			run:      func() error { return s.api.DeleteEmployee(r.Context(), id) },
		})
		return
	}

	toggle, ok := barber.ParseActiveAction(action)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := s.api.SetEmployeeActive(r.Context(), id, toggle); err != nil {
		s.log.Warn().Err(err).Int64("id", id).Str("action", string(toggle)).Msg("toggle employee failed")
		redirect(w, r, "/empleados", "error", backendMessage(err, "No se pudo cambiar el estado del empleado."))
		return
	}
	s.views.drop(r)
	redirect(w, r, "/empleados", "message", "Estado del empleado actualizado.")
}
