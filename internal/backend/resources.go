package backend

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tacbarber/barberdesk/internal/barber"
)

// AppointmentFilter narrows GET /citas. Date is YYYY-MM-DD.
type AppointmentFilter struct {
	Date     string
	BarberID int64
}

func (f AppointmentFilter) query() url.Values {
	q := url.Values{}
	if f.Date != "" {
		q.Set("fecha", f.Date)
	}
	if f.BarberID > 0 {
		q.Set("barberoId", strconv.FormatInt(f.BarberID, 10))
	}
	return q
}

// ListFilter narrows the client, service and employee collections. The
// backend defaults to active records only, so OnlyActive is always sent.
type ListFilter struct {
	OnlyActive bool
	Query      string
}

func (f ListFilter) query() url.Values {
	q := url.Values{}
	q.Set("soloActivos", strconv.FormatBool(f.OnlyActive))
	if s := strings.TrimSpace(f.Query); s != "" {
		q.Set("q", s)
	}
	return q
}

func (c *Client) ListAppointments(ctx context.Context, filter AppointmentFilter) ([]barber.Appointment, error) {
	var items []barber.Appointment
	if err := c.do(ctx, http.MethodGet, "/citas", filter.query(), nil, &items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Normalize(c.loc)
	}
	return items, nil
}

func (c *Client) GetAppointment(ctx context.Context, id int64) (barber.Appointment, error) {
	var item barber.Appointment
	if err := c.do(ctx, http.MethodGet, idPath("citas", id), nil, nil, &item); err != nil {
		return barber.Appointment{}, err
	}
	item.Normalize(c.loc)
	return item, nil
}

func (c *Client) CreateAppointment(ctx context.Context, payload barber.AppointmentPayload) (barber.Appointment, error) {
	var item barber.Appointment
	if err := c.do(ctx, http.MethodPost, "/citas", nil, payload, &item); err != nil {
		return barber.Appointment{}, err
	}
	item.Normalize(c.loc)
	return item, nil
}

func (c *Client) TransitionAppointment(ctx context.Context, id int64, action barber.StatusAction) error {
	return c.do(ctx, http.MethodPut, idPath("citas", id, string(action)), nil, nil, nil)
}

func (c *Client) DeleteAppointment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("citas", id), nil, nil, nil)
}

func (c *Client) ListClients(ctx context.Context, filter ListFilter) ([]barber.Client, error) {
	var items []barber.Client
	if err := c.do(ctx, http.MethodGet, "/clientes", filter.query(), nil, &items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Normalize()
	}
	return items, nil
}

func (c *Client) GetClient(ctx context.Context, id int64) (barber.Client, error) {
	var item barber.Client
	if err := c.do(ctx, http.MethodGet, idPath("clientes", id), nil, nil, &item); err != nil {
		return barber.Client{}, err
	}
	item.Normalize()
	return item, nil
}

func (c *Client) CreateClient(ctx context.Context, form barber.ClientForm) (barber.Client, error) {
	var item barber.Client
	if err := c.do(ctx, http.MethodPost, "/clientes", nil, form, &item); err != nil {
		return barber.Client{}, err
	}
	item.Normalize()
	return item, nil
}

func (c *Client) UpdateClient(ctx context.Context, id int64, form barber.ClientForm) (barber.Client, error) {
	var item barber.Client
	if err := c.do(ctx, http.MethodPut, idPath("clientes", id), nil, form, &item); err != nil {
		return barber.Client{}, err
	}
	item.Normalize()
	return item, nil
}

func (c *Client) SetClientActive(ctx context.Context, id int64, action barber.ActiveAction) error {
	return c.do(ctx, http.MethodPut, idPath("clientes", id, string(action)), nil, nil, nil)
}

func (c *Client) DeleteClient(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("clientes", id), nil, nil, nil)
}

func (c *Client) ListServices(ctx context.Context, filter ListFilter) ([]barber.Service, error) {
	var items []barber.Service
	if err := c.do(ctx, http.MethodGet, "/servicios", filter.query(), nil, &items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Normalize()
	}
	return items, nil
}

func (c *Client) GetService(ctx context.Context, id int64) (barber.Service, error) {
	var item barber.Service
	if err := c.do(ctx, http.MethodGet, idPath("servicios", id), nil, nil, &item); err != nil {
		return barber.Service{}, err
	}
	item.Normalize()
	return item, nil
}

func (c *Client) CreateService(ctx context.Context, form barber.ServiceForm) (barber.Service, error) {
	var item barber.Service
	if err := c.do(ctx, http.MethodPost, "/servicios", nil, form, &item); err != nil {
		return barber.Service{}, err
	}
	item.Normalize()
	return item, nil
}

func (c *Client) UpdateService(ctx context.Context, id int64, form barber.ServiceForm) (barber.Service, error) {
	var item barber.Service
	if err := c.do(ctx, http.MethodPut, idPath("servicios", id), nil, form, &item); err != nil {
		return barber.Service{}, err
	}
	item.Normalize()
	return item, nil
}

func (c *Client) SetServiceActive(ctx context.Context, id int64, action barber.ActiveAction) error {
	return c.do(ctx, http.MethodPut, idPath("servicios", id, string(action)), nil, nil, nil)
}

func (c *Client) DeleteService(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("servicios", id), nil, nil, nil)
}

func (c *Client) ListEmployees(ctx context.Context, filter ListFilter) ([]barber.Employee, error) {
	var items []barber.Employee
	q := filter.query()
	q.Del("q")
	if err := c.do(ctx, http.MethodGet, "/empleados", q, nil, &items); err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Normalize()
	}
	return items, nil
}

func (c *Client) GetEmployee(ctx context.Context, id int64) (barber.Employee, error) {
	var item barber.Employee
	if err := c.do(ctx, http.MethodGet, idPath("empleados", id), nil, nil, &item); err != nil {
		return barber.Employee{}, err
	}
	item.Normalize()
	return item, nil
}

func (c *Client) CreateEmployee(ctx context.Context, form barber.EmployeeForm) (barber.Employee, error) {
	var item barber.Employee
	if err := c.do(ctx, http.MethodPost, "/empleados", nil, form, &item); err != nil {
		return barber.Employee{}, err
	}
	item.Normalize()
	return item, nil
}

// UpdateEmployee leaves the password untouched when the form carries none.
func (c *Client) UpdateEmployee(ctx context.Context, id int64, form barber.EmployeeForm) (barber.Employee, error) {
	var item barber.Employee
	if err := c.do(ctx, http.MethodPut, idPath("empleados", id), nil, form, &item); err != nil {
		return barber.Employee{}, err
	}
	item.Normalize()
	return item, nil
}

func (c *Client) SetEmployeeActive(ctx context.Context, id int64, action barber.ActiveAction) error {
	return c.do(ctx, http.MethodPut, idPath("empleados", id, string(action)), nil, nil, nil)
}

func (c *Client) DeleteEmployee(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, idPath("empleados", id), nil, nil, nil)
}
