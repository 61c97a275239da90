package barber

import (
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseStatusDefaultsToPending(t *testing.T) {
	cases := map[string]Status{
		"":           StatusPending,
		"  ":         StatusPending,
		"confirmada": StatusConfirmed,
		"Completada": StatusCompleted,
		"CANCELADA":  StatusCancelled,
		"perdida":    Status("PERDIDA"),
	}
	for raw, want := range cases {
		if got := ParseStatus(raw); got != want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", raw, got, want)
		}
	}
	if Status("PERDIDA").Known() {
		t.Fatalf("expected unknown status to report Known() == false")
	}
}

func TestAppointmentNormalize(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	appt := Appointment{
		StartRaw:  "2025-11-17T10:30:00",
		StatusRaw: "",
		Client:    &Client{FirstName: " Ana ", LastName: "García"},
		Service:   &Service{Name: "Corte"},
	}
	appt.Normalize(loc)

	if appt.Start == nil {
		t.Fatalf("expected start to be parsed")
	}
	if appt.Start.Location() != loc {
		t.Fatalf("expected start in the given location, got %v", appt.Start.Location())
	}
	if appt.Date() != "2025-11-17" || appt.TimeLabel() != "10:30" {
		t.Fatalf("unexpected date/time labels %q %q", appt.Date(), appt.TimeLabel())
	}
	if appt.Status != StatusPending {
		t.Fatalf("expected default status PENDIENTE, got %q", appt.Status)
	}
	if appt.ClientName() != "Ana García" {
		t.Fatalf("unexpected client name %q", appt.ClientName())
	}
	if !appt.Client.IsActive() || !appt.Service.IsActive() {
		t.Fatalf("expected embedded references to default to active")
	}
	if appt.BarberName() != "Sin asignar" {
		t.Fatalf("unexpected barber fallback %q", appt.BarberName())
	}
}

func TestAppointmentWithoutStart(t *testing.T) {
	appt := Appointment{StartRaw: "not a date"}
	appt.Normalize(time.UTC)
	if appt.Start != nil {
		t.Fatalf("expected unparseable start to be treated as absent")
	}
	if appt.Date() != "" || appt.DateLabel() != Missing || appt.TimeLabel() != Missing {
		t.Fatalf("expected fallbacks for a missing start")
	}
}

func TestParseTimestampKeepsExplicitOffset(t *testing.T) {
	parsed, ok := ParseTimestamp("2024-03-01T09:00:00+02:00", time.UTC)
	if !ok {
		t.Fatalf("expected zoned timestamp to parse")
	}
	if _, offset := parsed.Zone(); offset != 2*3600 {
		t.Fatalf("expected +02:00 offset, got %d", offset)
	}
	if _, ok := ParseTimestamp("2024-03-01T09:00", time.UTC); !ok {
		t.Fatalf("expected timestamp without seconds to parse")
	}
}

func TestServiceLabels(t *testing.T) {
	price := 12.5
	minutes := 30
	s := Service{Name: "Barba", Price: &price, DurationMin: &minutes}
	if s.PriceLabel() != "12.50 €" || s.DurationLabel() != "30 min" {
		t.Fatalf("unexpected labels %q %q", s.PriceLabel(), s.DurationLabel())
	}
	empty := Service{}
	if empty.PriceLabel() != Missing || empty.DurationLabel() != Missing || empty.PriceValue() != 0 {
		t.Fatalf("expected fallbacks for missing price and duration")
	}
}

func TestSortByNameUsesSpanishCollation(t *testing.T) {
	clients := []Client{
		{ID: 1, FirstName: "Zoe"},
		{ID: 2, FirstName: "álvaro"},
		{ID: 3, FirstName: "Beatriz"},
	}
	asc := SortByName(clients, SortAsc)
	if asc[0].ID != 2 || asc[1].ID != 3 || asc[2].ID != 1 {
		t.Fatalf("unexpected ascending order: %+v", asc)
	}
	desc := SortByName(clients, SortDesc)
	if desc[0].ID != 1 || desc[2].ID != 2 {
		t.Fatalf("unexpected descending order: %+v", desc)
	}
	if clients[0].ID != 1 {
		t.Fatalf("expected input slice to be left untouched")
	}
	same := SortByName(clients, SortNone)
	if same[0].ID != 1 || same[1].ID != 2 {
		t.Fatalf("expected SortNone to keep input order")
	}
}

func TestFilterByActive(t *testing.T) {
	inactive := false
	services := []Service{{ID: 1}, {ID: 2, Active: &inactive}, {ID: 3}}
	if got := FilterByActive(services, FilterActive); len(got) != 2 {
		t.Fatalf("expected 2 active services, got %d", len(got))
	}
	got := FilterByActive(services, FilterInactive)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected only service 2 inactive, got %+v", got)
	}
	if got := FilterByActive(services, ParseActiveFilter("whatever")); len(got) != 3 {
		t.Fatalf("expected unknown filter to keep everything")
	}
}

func TestValidateClientForm(t *testing.T) {
	err := Validate(ClientForm{FirstName: "Ana"})
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	fields := map[string]bool{}
	for _, fe := range verrs {
		fields[fe.Field] = true
	}
	if !fields["telefono"] || !fields["email"] || fields["nombre"] {
		t.Fatalf("unexpected failing fields %v", fields)
	}
	if err := Validate(ClientForm{FirstName: "Ana", Phone: "600", Email: "ana@example.com"}); err != nil {
		t.Fatalf("expected valid form, got %v", err)
	}
}

func TestValidateServiceFormRequiresPositiveNumbers(t *testing.T) {
	form := ReadServiceForm(url.Values{"nombre": {"Corte"}, "duracionMin": {"0"}, "precio": {"-3"}})
	err := Validate(form)
	if err == nil || !strings.Contains(err.Error(), "duracionMin") || !strings.Contains(err.Error(), "precio") {
		t.Fatalf("expected duration and price errors, got %v", err)
	}
	form = ReadServiceForm(url.Values{"nombre": {"Corte"}, "duracionMin": {"30"}, "precio": {"12,50"}})
	if err := Validate(form); err != nil {
		t.Fatalf("expected valid service, got %v", err)
	}
	if form.Price != 12.5 {
		t.Fatalf("expected comma decimal to parse, got %v", form.Price)
	}
}

func TestValidateEmployeePasswordOnlyOnCreate(t *testing.T) {
	create := EmployeeForm{FirstName: "Luis", Email: "luis@example.com", Role: "EMPLEADO"}
	if err := Validate(create); err == nil || !strings.Contains(err.Error(), "password") {
		t.Fatalf("expected password to be required on create, got %v", err)
	}
	update := create
	update.ID = 7
	if err := Validate(update); err != nil {
		t.Fatalf("expected update without password to be valid, got %v", err)
	}
	update.Role = "CAPITAN"
	if err := Validate(update); err == nil {
		t.Fatalf("expected unknown role to be rejected")
	}
}

func TestAppointmentFormPayload(t *testing.T) {
	form := ReadAppointmentForm(url.Values{
		"clienteId":  {"3"},
		"servicioId": {"4"},
		"fecha":      {"2025-11-18"},
		"hora":       {"16:35"},
	})
	if err := Validate(form); err != nil {
		t.Fatalf("expected valid appointment form, got %v", err)
	}
	payload := form.Payload()
	if payload.Start != "2025-11-18T16:35:00" {
		t.Fatalf("unexpected start %q", payload.Start)
	}
	if payload.Barber != nil {
		t.Fatalf("expected no barber when none selected")
	}
	if err := Validate(AppointmentForm{ClientID: 1, ServiceID: 1, Date: "18/11/2025", Time: "16:35"}); err == nil {
		t.Fatalf("expected invalid date to be rejected")
	}
}

func TestWhatsAppURL(t *testing.T) {
	start := time.Date(2025, 11, 18, 16, 35, 0, 0, time.UTC)
	appt := Appointment{
		Start:   &start,
		Client:  &Client{FirstName: "Ana", Phone: "600 11 22 33"},
		Service: &Service{Name: "Corte"},
	}
	link := WhatsAppURL(appt)
	parsed, err := url.Parse(link)
	if err != nil {
		t.Fatalf("parse link: %v", err)
	}
	if parsed.Query().Get("phone") != "34600112233" {
		t.Fatalf("unexpected phone %q", parsed.Query().Get("phone"))
	}
	text := parsed.Query().Get("text")
	if !strings.Contains(text, "Hola Ana") || !strings.Contains(text, "2025-11-18") || !strings.Contains(text, "16:35") {
		t.Fatalf("unexpected reminder text %q", text)
	}
	if WhatsAppURL(Appointment{Client: &Client{Phone: "n/a"}}) != "" {
		t.Fatalf("expected no link without digits")
	}
}
