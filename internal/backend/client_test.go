package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/tacbarber/barberdesk/internal/backend/backendtest"
	"github.com/tacbarber/barberdesk/internal/barber"
)

func newTestClient(baseURL string) *Client {
	return New(Config{BaseURL: baseURL, Timeout: 2 * time.Second, Location: time.UTC}, zerolog.Nop())
}

func TestLoginSuccessAndFailure(t *testing.T) {
	fake := backendtest.New()
	defer fake.Close()
	fake.AddAccount("ana@tacbarber.es", "secreto123", "jefe")

	client := newTestClient(fake.URL)
	user, err := client.Login(context.Background(), "ana@tacbarber.es", "secreto123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Role != "JEFE" || user.ID() == 0 {
		t.Fatalf("unexpected user %+v", user)
	}

	_, err = client.Login(context.Background(), "ana@tacbarber.es", "mal")
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 status error, got %v", err)
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Path != "/auth/login" {
		t.Fatalf("expected status error with path, got %v", err)
	}
}

func TestLoginToleratesMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	user, err := newTestClient(srv.URL).Login(context.Background(), "luis@tacbarber.es", "x")
	if err != nil {
		t.Fatalf("expected malformed 2xx body to be tolerated, got %v", err)
	}
	if user.Email != "luis@tacbarber.es" || user.Role != "" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestTransportErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).ListClients(context.Background(), ListFilter{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestListAppointmentsNormalizesAndFilters(t *testing.T) {
	fake := backendtest.New()
	defer fake.Close()
	fake.AddAppointment(barber.Appointment{StartRaw: "2025-11-17T10:00:00", Client: &barber.Client{FirstName: "Ana"}})
	fake.AddAppointment(barber.Appointment{StartRaw: "2025-11-18T12:00:00", StatusRaw: "confirmada"})

	client := newTestClient(fake.URL)
	all, err := client.ListAppointments(context.Background(), AppointmentFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].Status != barber.StatusPending || all[1].Status != barber.StatusConfirmed {
		t.Fatalf("unexpected appointments %+v", all)
	}
	if all[0].Start == nil || all[0].Client.Active == nil {
		t.Fatalf("expected normalization to run")
	}

	day, err := client.ListAppointments(context.Background(), AppointmentFilter{Date: "2025-11-18"})
	if err != nil {
		t.Fatalf("list by date: %v", err)
	}
	if len(day) != 1 {
		t.Fatalf("expected 1 appointment on the date, got %d", len(day))
	}
	reqs := fake.Requests()
	if last := reqs[len(reqs)-1]; last.Query != "fecha=2025-11-18" {
		t.Fatalf("unexpected query %q", last.Query)
	}
}

func TestCreateAndTransitionAppointment(t *testing.T) {
	fake := backendtest.New()
	defer fake.Close()
	minutes := 30
	c := fake.AddClient(barber.Client{FirstName: "Ana"})
	s := fake.AddService(barber.Service{Name: "Corte", DurationMin: &minutes})

	client := newTestClient(fake.URL)
	form := barber.AppointmentForm{ClientID: c.ID, ServiceID: s.ID, Date: "2025-11-18", Time: "16:35"}
	created, err := client.CreateAppointment(context.Background(), form.Payload())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.End == nil || created.End.Format("15:04") != "17:05" {
		t.Fatalf("expected end computed from duration, got %+v", created.End)
	}

	if err := client.TransitionAppointment(context.Background(), created.ID, barber.ActionComplete); err != nil {
		t.Fatalf("transition: %v", err)
	}
	got, err := client.GetAppointment(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != barber.StatusCompleted {
		t.Fatalf("expected COMPLETADA, got %q", got.Status)
	}
	if fake.RequestsTo(http.MethodPut, "/citas/"+strconv.FormatInt(created.ID, 10)+"/completar") != 1 {
		t.Fatalf("expected one PUT to the completar route")
	}
}

func TestListClientsSendsSoloActivos(t *testing.T) {
	fake := backendtest.New()
	defer fake.Close()
	inactive := false
	fake.AddClient(barber.Client{FirstName: "Ana"})
	fake.AddClient(barber.Client{FirstName: "Bea", Active: &inactive})

	client := newTestClient(fake.URL)
	all, err := client.ListClients(context.Background(), ListFilter{OnlyActive: false})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected inactive clients too, got %d", len(all))
	}
	reqs := fake.Requests()
	if !strings.Contains(reqs[0].Query, "soloActivos=false") {
		t.Fatalf("expected soloActivos=false, got %q", reqs[0].Query)
	}
}

func TestClientLifecycle(t *testing.T) {
	fake := backendtest.New()
	defer fake.Close()
	client := newTestClient(fake.URL)
	ctx := context.Background()

	created, err := client.CreateClient(ctx, barber.ClientForm{FirstName: "Ana", Phone: "600", Email: "ana@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := client.UpdateClient(ctx, created.ID, barber.ClientForm{FirstName: "Ana María", Phone: "600", Email: "ana@example.com"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := client.SetClientActive(ctx, created.ID, barber.ActionDeactivate); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	got, err := client.GetClient(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FirstName != "Ana María" || got.IsActive() {
		t.Fatalf("unexpected client %+v", got)
	}
	if err := client.DeleteClient(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := client.GetClient(ctx, created.ID); !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404 after delete, got %v", err)
	}
}

func TestEmployeePasswordTravelsAsPasswordHash(t *testing.T) {
	fake := backendtest.New()
	defer fake.Close()
	client := newTestClient(fake.URL)

	_, err := client.CreateEmployee(context.Background(), barber.EmployeeForm{FirstName: "Luis", Email: "luis@example.com", Password: "secreto123", Role: "EMPLEADO"})
	if err != nil {
		t.Fatalf("create employee: %v", err)
	}
	body := fake.Requests()[0].Body
	if !strings.Contains(body, `"passwordHash":"secreto123"`) {
		t.Fatalf("expected passwordHash in body, got %s", body)
	}
}

func TestPasswordRecovery(t *testing.T) {
	fake := backendtest.New()
	defer fake.Close()
	fake.AddAccount("ana@tacbarber.es", "vieja-clave", "ADMIN")
	fake.IssueResetToken("ana@tacbarber.es", "tok-1")
	client := newTestClient(fake.URL)
	ctx := context.Background()

	if err := client.RequestPasswordReset(ctx, "nadie@tacbarber.es"); !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected 404 for unknown email, got %v", err)
	}
	if err := client.ValidateResetToken(ctx, "tok-1"); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := client.ResetPassword(ctx, "tok-1", "nueva-clave"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := client.Login(ctx, "ana@tacbarber.es", "nueva-clave"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if err := client.ValidateResetToken(ctx, "tok-1"); !IsStatus(err, http.StatusNotFound) {
		t.Fatalf("expected used token to be rejected, got %v", err)
	}
}
