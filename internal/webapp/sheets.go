package webapp

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/tacbarber/barberdesk/internal/backend"
	"github.com/tacbarber/barberdesk/internal/roles"
	"github.com/tacbarber/barberdesk/internal/sheets"
)

const (
	maxUploadBytes = 5 << 20
	// uploadOverhead covers the CSRF field and the multipart framing.
	uploadOverhead = 64 << 10

	msgUploadTooLarge = "El archivo es demasiado grande."
	msgPickSheet      = "Selecciona un archivo .xlsx o .xls."
)

// limitUpload caps the body of an upload before anything parses the form.
func (s *server) limitUpload(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+uploadOverhead)
		err := r.ParseMultipartForm(maxUploadBytes)
		var tooLarge *http.MaxBytesError
		switch {
		case err == nil, errors.Is(err, http.ErrNotMultipart):
			next.ServeHTTP(w, r)
		case errors.As(err, &tooLarge):
			s.log.Info().Int64("limit", tooLarge.Limit).Msg("upload too large")
			redirect(w, r, "/clientes", "error", msgUploadTooLarge)
		default:
			s.log.Info().Err(err).Msg("unreadable upload")
			redirect(w, r, "/clientes", "error", msgPickSheet)
		}
	})
}

func (s *server) exportAppointments(w http.ResponseWriter, r *http.Request) {
	filter, _ := appointmentFilter(r)
	appts, err := s.api.ListAppointments(r.Context(), filter)
	if err != nil {
		s.log.Warn().Err(err).Msg("export appointments failed")
		redirect(w, r, "/citas", "error", backendMessage(err, "No se han podido exportar las citas."))
		return
	}
	name := "citas.xlsx"
	if filter.Date != "" {
		name = "citas-" + filter.Date + ".xlsx"
	}
	var buf bytes.Buffer
	if err := sheets.WriteAppointments(&buf, appts); err != nil {
		s.log.Error().Err(err).Msg("write appointments sheet failed")
		redirect(w, r, "/citas", "error", "No se pudo generar la hoja de cálculo.")
		return
	}
	sendSpreadsheet(w, name, buf.Bytes())
}

func (s *server) exportClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.api.ListClients(r.Context(), backend.ListFilter{})
	if err != nil {
		s.log.Warn().Err(err).Msg("export clients failed")
		redirect(w, r, "/clientes", "error", backendMessage(err, "No se han podido exportar los clientes."))
		return
	}
	var buf bytes.Buffer
	if err := sheets.WriteClients(&buf, clients); err != nil {
		s.log.Error().Err(err).Msg("write clients sheet failed")
		redirect(w, r, "/clientes", "error", "No se pudo generar la hoja de cálculo.")
		return
	}
	sendSpreadsheet(w, "clientes.xlsx", buf.Bytes())
}

func sendSpreadsheet(w http.ResponseWriter, name string, data []byte) {
	w.Header().Set("Content-Type", sheets.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// importClients creates one client per valid spreadsheet row and reports
// the rows that were skipped or rejected.
func (s *server) importClients(w http.ResponseWriter, r *http.Request) {
	if !gateFrom(r).Capabilities().CreateClients {
		forbid(w)
		return
	}
	file, header, err := r.FormFile("archivo")
	if err != nil {
		redirect(w, r, "/clientes", "error", msgPickSheet)
		return
	}
	defer func() { _ = file.Close() }()
	if header.Size > maxUploadBytes {
		redirect(w, r, "/clientes", "error", msgUploadTooLarge)
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".xlsx" && ext != ".xls" {
		redirect(w, r, "/clientes", "error", msgPickSheet)
		return
	}
	rows, err := sheets.ReadRows(file, header.Filename)
	if err != nil {
		s.log.Info().Err(err).Str("file", header.Filename).Msg("unreadable import")
		redirect(w, r, "/clientes", "error", "No se pudo leer el archivo: "+err.Error())
		return
	}
	parsed, err := sheets.ParseClients(rows)
	if err != nil {
		redirect(w, r, "/clientes", "error", err.Error())
		return
	}

	result := &importView{Filename: header.Filename, Skipped: parsed.Skipped}
	for _, row := range parsed.Rows {
		if _, err := s.api.CreateClient(r.Context(), row.Form); err != nil {
			if errors.Is(err, backend.ErrUnavailable) {
				result.Failed = append(result.Failed, sheets.SkippedRow{Line: row.Line, Reason: msgConnection})
				continue
			}
			result.Failed = append(result.Failed, sheets.SkippedRow{Line: row.Line, Reason: "el servidor rechazó el cliente"})
			continue
		}
		result.Created++
	}
	s.views.drop(r)
	s.log.Info().Str("file", header.Filename).Int("created", result.Created).
		Int("failed", len(result.Failed)).Int("skipped", len(result.Skipped)).Msg("clients imported")
	s.render(w, r, s.importTmpl, http.StatusOK, pageData{Title: "Importar clientes", Nav: roles.PageClients, Import: result})
}
