// Package roles decides what the signed-in user is shown. It is a
// presentation aid only; the backend authorizes every request on its own.
package roles

import "strings"

type Role string

const (
	Admin   Role = "ADMIN"
	Manager Role = "JEFE"
	Staff   Role = "EMPLEADO"
	Intern  Role = "BECARIO"
)

// Page names a top-level section of the UI.
type Page string

const (
	PageLogin        Page = "login"
	PageCalendar     Page = "calendario"
	PageAppointments Page = "citas"
	PageClients      Page = "clientes"
	PageServices     Page = "servicios"
	PageEmployees    Page = "empleados"
	PageDashboard    Page = "dashboard"
)

// InternLanding is where interns are sent when they open anything else.
const InternLanding = "/calendario"

// InternWarning is shown after redirecting an intern.
const InternWarning = "Tu rol solo permite acceder al calendario."

// Capabilities is the set of menus and actions a role can see.
type Capabilities struct {
	ShowClientsMenu   bool
	ShowServicesMenu  bool
	ShowEmployeesMenu bool
	ShowDashboardMenu bool

	CreateClients  bool
	CreateServices bool
	EditClients    bool
	EditServices   bool

	ToggleClients  bool
	ToggleServices bool
	DeleteClients  bool
	DeleteServices bool

	DeleteAppointments bool
	ManageEmployees    bool
}

// Gate is computed once per request from the role tag of the session user.
type Gate struct {
	role    Role
	present bool
	caps    Capabilities
}

// Anonymous is the gate for requests without a session user. It restricts
// nothing and never redirects.
func Anonymous() Gate {
	return Gate{caps: fullCapabilities()}
}

// New builds the gate for a signed-in user. The tag is case-insensitive; an
// empty or unknown tag keeps every page reachable but hides the
// manager-only row actions.
func New(tag string) Gate {
	role := Role(strings.ToUpper(strings.TrimSpace(tag)))
	return Gate{role: role, present: true, caps: capabilitiesFor(role)}
}

func (g Gate) Role() Role                 { return g.role }
func (g Gate) SignedIn() bool             { return g.present }
func (g Gate) IsAdmin() bool              { return g.role == Admin }
func (g Gate) IsManager() bool            { return g.role == Manager }
func (g Gate) IsStaff() bool              { return g.role == Staff }
func (g Gate) IsIntern() bool             { return g.role == Intern }
func (g Gate) Capabilities() Capabilities { return g.caps }

// AllowsPage reports whether the page may be opened. Only interns are
// restricted, to the calendar and the login page.
func (g Gate) AllowsPage(page Page) bool {
	if !g.present || g.role != Intern {
		return true
	}
	return page == PageCalendar || page == PageLogin
}

func fullCapabilities() Capabilities {
	return Capabilities{
		ShowClientsMenu:    true,
		ShowServicesMenu:   true,
		ShowEmployeesMenu:  true,
		ShowDashboardMenu:  true,
		CreateClients:      true,
		CreateServices:     true,
		EditClients:        true,
		EditServices:       true,
		ToggleClients:      true,
		ToggleServices:     true,
		DeleteClients:      true,
		DeleteServices:     true,
		DeleteAppointments: true,
		ManageEmployees:    true,
	}
}

func capabilitiesFor(role Role) Capabilities {
	switch role {
	case Admin, Manager:
		return fullCapabilities()
	case Staff:
		return Capabilities{
			ShowEmployeesMenu: true,
			ShowDashboardMenu: true,
			EditClients:       true,
			EditServices:      true,
		}
	case Intern:
		return Capabilities{}
	}
	// Unknown or empty role: menus and create/edit stay, manager actions hide.
	return Capabilities{
		ShowClientsMenu:   true,
		ShowServicesMenu:  true,
		ShowEmployeesMenu: true,
		ShowDashboardMenu: true,
		CreateClients:     true,
		CreateServices:    true,
		EditClients:       true,
		EditServices:      true,
	}
}
