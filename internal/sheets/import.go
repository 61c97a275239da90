package sheets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/tacbarber/barberdesk/internal/barber"
)

const maxImportRows = 10000

// ReadRows returns the cells of the first worksheet. ".xls" files go through
// the legacy reader; everything else is opened as .xlsx.
func ReadRows(reader io.Reader, filename string) ([][]string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
		if err != nil {
			return nil, fmt.Errorf("open xls: %w", err)
		}
		if workbook.NumSheets() == 0 {
			return nil, errors.New("el libro no tiene hojas")
		}
		rows := workbook.ReadAllCells(maxImportRows)
		if len(rows) == 0 {
			return nil, errors.New("la hoja está vacía")
		}
		return rows, nil
	default:
		file, err := excelize.OpenReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("open xlsx: %w", err)
		}
		defer func() { _ = file.Close() }()

		sheet := file.GetSheetName(0)
		if sheet == "" {
			return nil, errors.New("el libro no tiene hojas")
		}
		rows, err := file.GetRows(sheet)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, errors.New("la hoja está vacía")
		}
		if len(rows) > maxImportRows {
			rows = rows[:maxImportRows]
		}
		return rows, nil
	}
}

// SkippedRow is a spreadsheet line that was not imported. Line is 1-based,
// as the spreadsheet shows it.
type SkippedRow struct {
	Line   int
	Reason string
}

type ClientRow struct {
	Line int
	Form barber.ClientForm
}

type ClientImport struct {
	Rows    []ClientRow
	Skipped []SkippedRow
}

var headerAliases = map[string]string{
	"nombre":    "nombre",
	"apellidos": "apellidos",
	"apellido":  "apellidos",
	"telefono":  "telefono",
	"teléfono":  "telefono",
	"movil":     "telefono",
	"móvil":     "telefono",
	"email":     "email",
	"correo":    "email",
	"e-mail":    "email",
	"notas":     "notas",
}

// ParseClients maps the header row and validates every following line.
// Blank lines are ignored without being reported.
func ParseClients(rows [][]string) (ClientImport, error) {
	if len(rows) == 0 {
		return ClientImport{}, errors.New("la hoja está vacía")
	}
	columns := make(map[string]int)
	for idx, raw := range rows[0] {
		if field, ok := headerAliases[normalizeHeader(raw)]; ok {
			if _, seen := columns[field]; !seen {
				columns[field] = idx
			}
		}
	}
	for _, required := range []string{"nombre", "telefono", "email"} {
		if _, ok := columns[required]; !ok {
			return ClientImport{}, fmt.Errorf("falta la columna %q en la cabecera", required)
		}
	}

	var result ClientImport
	for i, row := range rows[1:] {
		line := i + 2
		if blankRow(row) {
			continue
		}
		values := make(rowValues, len(columns))
		for field, idx := range columns {
			values[field] = cellValue(row, idx)
		}
		values["telefono"] = normalizePhoneCell(values["telefono"])
		form := barber.ReadClientForm(values)
		if err := barber.Validate(form); err != nil {
			result.Skipped = append(result.Skipped, SkippedRow{Line: line, Reason: err.Error()})
			continue
		}
		result.Rows = append(result.Rows, ClientRow{Line: line, Form: form})
	}
	return result, nil
}

type rowValues map[string]string

func (r rowValues) Get(key string) string { return r[key] }

func normalizeHeader(header string) string {
	return strings.ToLower(strings.TrimSpace(header))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// normalizePhoneCell undoes the float formatting some exports apply to
// numeric phone cells ("600112233.0", "6.00112233E8").
func normalizePhoneCell(value string) string {
	if value == "" || strings.ContainsAny(value, " +-()") {
		return value
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil && f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return value
}
