// Package calendar turns appointments into entries for the month/week widget.
package calendar

import (
	"net/url"

	"github.com/tacbarber/barberdesk/internal/barber"
)

const (
	DefaultColor = "#3b82f6"
	TextColor    = "#000"

	fallbackClient  = "Cliente"
	fallbackService = "Servicio"
	listPath        = "/citas"
)

var statusColors = map[barber.Status]string{
	barber.StatusPending:   "#facc15",
	barber.StatusConfirmed: "#22c55e",
	barber.StatusCompleted: "#0ea5e9",
	barber.StatusCancelled: "#ef4444",
}

// Entry is what the widget draws. Field names follow its event object.
type Entry struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Start           string `json:"start"`
	End             string `json:"end,omitempty"`
	Date            string `json:"date"`
	URL             string `json:"url"`
	BackgroundColor string `json:"backgroundColor"`
	BorderColor     string `json:"borderColor"`
	TextColor       string `json:"textColor"`
	Status          string `json:"status"`
}

func ColorFor(status barber.Status) string {
	if color, ok := statusColors[status]; ok {
		return color
	}
	return DefaultColor
}

// Title is "<client> – <service>" with generic fallbacks.
func Title(a barber.Appointment) string {
	client := a.ClientName()
	if client == "" {
		client = fallbackClient
	}
	service := a.ServiceName()
	if service == "" {
		service = fallbackService
	}
	return client + " – " + service
}

// DayURL is where clicking a day (or an entry on it) leads.
func DayURL(date string) string {
	if date == "" {
		return listPath
	}
	return listPath + "?" + url.Values{"fecha": {date}}.Encode()
}

// Entries skips appointments without a start time.
func Entries(appts []barber.Appointment) []Entry {
	out := make([]Entry, 0, len(appts))
	for _, a := range appts {
		if a.Start == nil {
			continue
		}
		color := ColorFor(a.Status)
		entry := Entry{
			ID:              a.ID,
			Title:           Title(a),
			Start:           a.Start.Format("2006-01-02T15:04:05"),
			Date:            a.Date(),
			URL:             DayURL(a.Date()),
			BackgroundColor: color,
			BorderColor:     color,
			TextColor:       TextColor,
			Status:          string(a.Status),
		}
		if a.End != nil {
			entry.End = a.End.Format("2006-01-02T15:04:05")
		}
		out = append(out, entry)
	}
	return out
}
