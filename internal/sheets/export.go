// Package sheets exports appointments and clients to .xlsx and imports
// clients from .xlsx or legacy .xls workbooks.
package sheets

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tacbarber/barberdesk/internal/barber"
)

const (
	appointmentsSheet = "Citas"
	clientsSheet      = "Clientes"
	ContentType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	appointmentHeader = []any{"Fecha", "Hora", "Cliente", "Teléfono", "Servicio", "Barbero", "Estado", "Precio", "Notas"}
	clientHeader      = []any{"nombre", "apellidos", "telefono", "email", "notas", "activo"}
)

// WriteAppointments writes one row per appointment in the given order.
func WriteAppointments(w io.Writer, appts []barber.Appointment) error {
	rows := make([][]any, 0, len(appts))
	for _, a := range appts {
		price := any("")
		if p := a.Price(); p != nil {
			price = *p
		}
		rows = append(rows, []any{
			a.DateLabel(), a.TimeLabel(), barber.Or(a.ClientName()), barber.Or(a.ClientPhone()),
			barber.Or(a.ServiceName()), a.BarberName(), string(a.Status), price, a.Notes,
		})
	}
	return writeSheet(w, appointmentsSheet, appointmentHeader, rows, []float64{12, 8, 28, 16, 22, 22, 14, 10, 40})
}

// WriteClients uses the same header the importer reads, so an export can
// be edited and imported back.
func WriteClients(w io.Writer, clients []barber.Client) error {
	rows := make([][]any, 0, len(clients))
	for _, c := range clients {
		active := "sí"
		if !c.IsActive() {
			active = "no"
		}
		rows = append(rows, []any{c.FirstName, c.LastName, c.Phone, c.Email, c.Notes, active})
	}
	return writeSheet(w, clientsSheet, clientHeader, rows, []float64{20, 26, 16, 30, 40, 8})
}

func writeSheet(w io.Writer, sheet string, header []any, rows [][]any, widths []float64) error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName(file.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := file.SetCellStyle(sheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := file.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("column width: %w", err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
