package barber

import (
	"strconv"
	"strings"
	"time"
)

// Missing is what the tables show for an absent field.
const Missing = "-"

var startLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

var zonedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

// ParseTimestamp reads the backend's local wall-clock timestamps. Values that
// carry an explicit offset keep it; everything else is read in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range zonedLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed, true
		}
	}
	for _, layout := range startLayouts {
		if parsed, err := time.ParseInLocation(layout, trimmed, loc); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

type Client struct {
	ID        int64  `json:"id"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellidos"`
	Phone     string `json:"telefono"`
	Email     string `json:"email"`
	Notes     string `json:"notas"`
	Active    *bool  `json:"activo,omitempty"`
	CreatedAt string `json:"fechaAlta,omitempty"`
}

func (c *Client) Normalize() {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Notes = strings.TrimSpace(c.Notes)
	if c.Active == nil {
		c.Active = boolPtr(true)
	}
}

// IsActive treats an absent flag as active.
func (c Client) IsActive() bool { return c.Active == nil || *c.Active }

func (c Client) DisplayName() string { return joinName(c.FirstName, c.LastName) }

type Service struct {
	ID          int64    `json:"id"`
	Name        string   `json:"nombre"`
	DurationMin *int     `json:"duracionMin,omitempty"`
	Price       *float64 `json:"precio,omitempty"`
	Active      *bool    `json:"activo,omitempty"`
}

func (s *Service) Normalize() {
	s.Name = strings.TrimSpace(s.Name)
	if s.Active == nil {
		s.Active = boolPtr(true)
	}
}

func (s Service) IsActive() bool { return s.Active == nil || *s.Active }

func (s Service) DisplayName() string { return s.Name }

// PriceValue is the price, or zero when the backend sent none.
func (s Service) PriceValue() float64 {
	if s.Price == nil {
		return 0
	}
	return *s.Price
}

func (s Service) PriceLabel() string {
	if s.Price == nil {
		return Missing
	}
	return FormatEuros(*s.Price)
}

func (s Service) DurationLabel() string {
	if s.DurationMin == nil {
		return Missing
	}
	return strconv.Itoa(*s.DurationMin) + " min"
}

type Employee struct {
	ID        int64  `json:"id"`
	FirstName string `json:"nombre"`
	LastName  string `json:"apellidos"`
	Email     string `json:"email"`
	Phone     string `json:"telefono"`
	Role      string `json:"rol"`
	Active    *bool  `json:"activo,omitempty"`
}

func (e *Employee) Normalize() {
	e.FirstName = strings.TrimSpace(e.FirstName)
	e.LastName = strings.TrimSpace(e.LastName)
	e.Email = strings.TrimSpace(e.Email)
	e.Phone = strings.TrimSpace(e.Phone)
	e.Role = strings.ToUpper(strings.TrimSpace(e.Role))
	if e.Active == nil {
		e.Active = boolPtr(true)
	}
}

func (e Employee) IsActive() bool { return e.Active == nil || *e.Active }

func (e Employee) DisplayName() string { return joinName(e.FirstName, e.LastName) }

type Appointment struct {
	ID        int64     `json:"id"`
	StartRaw  string    `json:"fechaHoraInicio"`
	EndRaw    string    `json:"fechaHoraFin,omitempty"`
	StatusRaw string    `json:"estado"`
	Notes     string    `json:"notas"`
	Client    *Client   `json:"cliente,omitempty"`
	Service   *Service  `json:"servicio,omitempty"`
	Barber    *Employee `json:"barbero,omitempty"`

	Start  *time.Time `json:"-"`
	End    *time.Time `json:"-"`
	Status Status     `json:"-"`
}

// Normalize parses the timestamps in loc, defaults the status and normalizes
// the embedded references.
func (a *Appointment) Normalize(loc *time.Location) {
	a.Start, a.End = nil, nil
	if start, ok := ParseTimestamp(a.StartRaw, loc); ok {
		a.Start = &start
	}
	if end, ok := ParseTimestamp(a.EndRaw, loc); ok {
		a.End = &end
	}
	a.Status = ParseStatus(a.StatusRaw)
	a.Notes = strings.TrimSpace(a.Notes)
	if a.Client != nil {
		a.Client.Normalize()
	}
	if a.Service != nil {
		a.Service.Normalize()
	}
	if a.Barber != nil {
		a.Barber.Normalize()
	}
}

// Date is the YYYY-MM-DD part of the start, or "" without a start.
func (a Appointment) Date() string {
	if a.Start == nil {
		return ""
	}
	return a.Start.Format("2006-01-02")
}

func (a Appointment) DateLabel() string {
	if a.Start == nil {
		return Missing
	}
	return a.Start.Format("2006-01-02")
}

func (a Appointment) TimeLabel() string {
	if a.Start == nil {
		return Missing
	}
	return a.Start.Format("15:04")
}

func (a Appointment) ClientName() string {
	if a.Client == nil || a.Client.FirstName == "" {
		return ""
	}
	return a.Client.DisplayName()
}

func (a Appointment) ClientPhone() string {
	if a.Client == nil {
		return ""
	}
	return a.Client.Phone
}

func (a Appointment) ServiceName() string {
	if a.Service == nil {
		return ""
	}
	return a.Service.Name
}

func (a Appointment) BarberName() string {
	if a.Barber == nil || a.Barber.FirstName == "" {
		return "Sin asignar"
	}
	return a.Barber.DisplayName()
}

// Price is the embedded service price, or nil.
func (a Appointment) Price() *float64 {
	if a.Service == nil {
		return nil
	}
	return a.Service.Price
}

// SessionUser is the payload /auth/login answers with.
type SessionUser struct {
	UserID  *int64 `json:"userId,omitempty"`
	Email   string `json:"email"`
	Role    string `json:"rol"`
	Message string `json:"mensaje,omitempty"`
}

func (u *SessionUser) Normalize() {
	u.Email = strings.TrimSpace(u.Email)
	u.Role = strings.ToUpper(strings.TrimSpace(u.Role))
}

func (u SessionUser) ID() int64 {
	if u.UserID == nil {
		return 0
	}
	return *u.UserID
}

// FormatEuros renders a price with two decimals, the way the tables show it.
func FormatEuros(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64) + " €"
}

// Or returns value, or Missing when it is blank.
func Or(value string) string {
	if strings.TrimSpace(value) == "" {
		return Missing
	}
	return value
}

func joinName(first, last string) string {
	name := strings.TrimSpace(first)
	if last = strings.TrimSpace(last); last != "" {
		if name == "" {
			return last
		}
		name += " " + last
	}
	return name
}

func boolPtr(v bool) *bool { return &v }
