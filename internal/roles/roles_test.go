package roles

import "testing"

func TestManagersSeeEverything(t *testing.T) {
	for _, tag := range []string{"ADMIN", "jefe", " Admin "} {
		caps := New(tag).Capabilities()
		if caps != fullCapabilities() {
			t.Fatalf("expected %q to get full capabilities, got %+v", tag, caps)
		}
	}
}

func TestStaffLosesClientAndServiceMenusButKeepsEdit(t *testing.T) {
	g := New("EMPLEADO")
	caps := g.Capabilities()
	if caps.ShowClientsMenu || caps.ShowServicesMenu || caps.CreateClients || caps.CreateServices {
		t.Fatalf("expected staff to lose client/service menus and create buttons: %+v", caps)
	}
	if caps.DeleteAppointments || caps.ToggleClients || caps.ManageEmployees {
		t.Fatalf("expected staff to lose manager-only actions: %+v", caps)
	}
	if !caps.EditClients || !caps.EditServices {
		t.Fatalf("expected staff to keep editing clients and services: %+v", caps)
	}
	if !g.AllowsPage(PageClients) {
		t.Fatalf("expected staff to keep page access")
	}
}

func TestInternIsLimitedToCalendar(t *testing.T) {
	g := New("becario")
	if !g.IsIntern() {
		t.Fatalf("expected intern role")
	}
	cases := map[Page]bool{
		PageCalendar:     true,
		PageLogin:        true,
		PageAppointments: false,
		PageClients:      false,
		PageServices:     false,
		PageEmployees:    false,
		PageDashboard:    false,
	}
	for page, want := range cases {
		if got := g.AllowsPage(page); got != want {
			t.Fatalf("AllowsPage(%q) = %v, want %v", page, got, want)
		}
	}
}

func TestUnknownRoleKeepsPagesButHidesManagerActions(t *testing.T) {
	for _, tag := range []string{"", "RECEPCION"} {
		g := New(tag)
		if !g.AllowsPage(PageEmployees) || !g.AllowsPage(PageClients) {
			t.Fatalf("expected %q to keep page access", tag)
		}
		caps := g.Capabilities()
		if !caps.ShowClientsMenu || !caps.CreateClients {
			t.Fatalf("expected %q to keep menus: %+v", tag, caps)
		}
		if caps.DeleteClients || caps.ToggleServices || caps.DeleteAppointments || caps.ManageEmployees {
			t.Fatalf("expected %q to hide manager actions: %+v", tag, caps)
		}
	}
}

func TestAnonymousGateDoesNothing(t *testing.T) {
	g := Anonymous()
	if g.SignedIn() {
		t.Fatalf("expected anonymous gate")
	}
	if !g.AllowsPage(PageDashboard) {
		t.Fatalf("expected anonymous gate to allow every page")
	}
}
