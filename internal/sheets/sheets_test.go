package sheets

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/tacbarber/barberdesk/internal/barber"
)

func TestWriteAppointmentsRoundTrip(t *testing.T) {
	start := time.Date(2025, 11, 18, 16, 35, 0, 0, time.UTC)
	price := 12.5
	appts := []barber.Appointment{
		{Start: &start, Status: barber.StatusConfirmed,
			Client:  &barber.Client{FirstName: "Ana", LastName: "García", Phone: "600112233"},
			Service: &barber.Service{Name: "Corte", Price: &price}},
		{Status: barber.StatusPending},
	}
	var buf bytes.Buffer
	if err := WriteAppointments(&buf, appts); err != nil {
		t.Fatalf("write: %v", err)
	}

	file, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()
	rows, err := file.GetRows("Citas")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[1][0] != "2025-11-18" || rows[1][1] != "16:35" || rows[1][2] != "Ana García" || rows[1][6] != "CONFIRMADA" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][0] != barber.Missing || rows[2][5] != "Sin asignar" {
		t.Fatalf("unexpected fallbacks %v", rows[2])
	}
}

func TestClientsExportImportsBack(t *testing.T) {
	inactive := false
	clients := []barber.Client{
		{FirstName: "Ana", LastName: "García", Phone: "600112233", Email: "ana@example.com"},
		{FirstName: "Luis", Phone: "611223344", Email: "luis@example.com", Active: &inactive},
	}
	var buf bytes.Buffer
	if err := WriteClients(&buf, clients); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows, err := ReadRows(&buf, "clientes.xlsx")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	parsed, err := ParseClients(rows)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed.Rows) != 2 || len(parsed.Skipped) != 0 {
		t.Fatalf("unexpected import %+v", parsed)
	}
	if parsed.Rows[0].Form.LastName != "García" || parsed.Rows[1].Line != 3 {
		t.Fatalf("unexpected rows %+v", parsed.Rows)
	}
}

func TestParseClientsReportsInvalidRows(t *testing.T) {
	rows := [][]string{
		{"Nombre", "Teléfono", "Correo"},
		{"Ana", "6.00112233E8", "ana@example.com"},
		{"", "", ""},
		{"Luis", "", "luis@example.com"},
		{"Bea", "622", "no-es-email"},
	}
	parsed, err := ParseClients(rows)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(parsed.Rows) != 1 || parsed.Rows[0].Form.Phone != "600112233" {
		t.Fatalf("unexpected rows %+v", parsed.Rows)
	}
	if len(parsed.Skipped) != 2 || parsed.Skipped[0].Line != 4 || parsed.Skipped[1].Line != 5 {
		t.Fatalf("unexpected skipped rows %+v", parsed.Skipped)
	}
	if !strings.Contains(parsed.Skipped[0].Reason, "telefono") {
		t.Fatalf("expected phone reason, got %q", parsed.Skipped[0].Reason)
	}
}

func TestParseClientsRequiresHeader(t *testing.T) {
	if _, err := ParseClients([][]string{{"nombre", "email"}}); err == nil {
		t.Fatalf("expected missing telefono column to fail")
	}
}

func TestReadRowsRejectsGarbage(t *testing.T) {
	if _, err := ReadRows(strings.NewReader("not a workbook"), "clientes.xlsx"); err == nil {
		t.Fatalf("expected error for invalid xlsx")
	}
}
