package webapp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tacbarber/barberdesk/internal/barber"
	"github.com/tacbarber/barberdesk/internal/dashboard"
	"github.com/tacbarber/barberdesk/internal/roles"
	"github.com/tacbarber/barberdesk/internal/sheets"
)

type pageData struct {
	Title   string
	Nav     roles.Page
	Error   string
	Message string
	Warning string

	CSRF     string
	SignedIn bool
	User     barber.SessionUser
	Caps     roles.Capabilities
	Intern   bool

	Order      string
	Filter     string
	Query      string
	DateFilter string
	BarberID   int64

	FormOpen    bool
	Editing     bool
	FieldErrors map[string]string

	Appointments    []barber.Appointment
	Clients         []barber.Client
	Services        []barber.Service
	Employees       []barber.Employee
	ClientOptions   []barber.Client
	ServiceOptions  []barber.Service
	BarberOptions   []barber.Employee
	Roles           []roles.Role
	Statuses        []barber.Status
	AppointmentForm barber.AppointmentForm
	ClientForm      barber.ClientForm
	ServiceForm     barber.ServiceForm
	EmployeeForm    barber.EmployeeForm

	Confirm *confirmView
	Import  *importView

	Summary  *dashboard.Summary
	Grid     *dashboard.Grid
	Weeks    [][]dashboard.Cell
	Weekdays []string

	Email      string
	Token      string
	TokenValid bool
}

type confirmView struct {
	Question string
	Action   string
	Back     string
	Carry    map[string]string
}

// rowAction is one button posting to /citas/{id}/{action}.
type rowAction struct {
	ID     int64
	Action string
	Label  string
	CSRF   string
	Date   string
}

type importView struct {
	Filename string
	Created  int
	Failed   []sheets.SkippedRow
	Skipped  []sheets.SkippedRow
}

// fill copies the session and flash messages into the page.
func (d *pageData) fill(r *http.Request) {
	q := r.URL.Query()
	if d.Error == "" {
		d.Error = q.Get("error")
	}
	if d.Message == "" {
		d.Message = q.Get("message")
	}
	if d.Warning == "" {
		d.Warning = q.Get("aviso")
	}
	gate := gateFrom(r)
	d.Caps = gate.Capabilities()
	d.Intern = gate.IsIntern()
	if sess := sessionFrom(r); sess != nil {
		d.SignedIn = true
		d.User = sess.User
		d.CSRF = sess.CSRF
	}
}

// fieldErrors indexes validation failures by form field name.
func fieldErrors(err error) map[string]string {
	var verrs barber.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field] = fe.Message
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
