package barber

import (
	"errors"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// FieldError is one failed rule on a form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Field+" "+e.Message)
	}
	return strings.Join(parts, "; ")
}

// Validate runs the struct tags and returns ValidationErrors, or nil.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: ruleMessage(fe)})
	}
	return out
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "es obligatorio"
	case "gt":
		return "debe ser mayor que " + fe.Param()
	case "email":
		return "no es un email válido"
	case "datetime":
		return "no tiene un formato válido"
	case "oneof":
		return "no es un valor permitido"
	default:
		return "no es válido"
	}
}

type ClientForm struct {
	ID        int64  `form:"id" json:"-"`
	FirstName string `form:"nombre" json:"nombre" validate:"required"`
	LastName  string `form:"apellidos" json:"apellidos"`
	Phone     string `form:"telefono" json:"telefono" validate:"required"`
	Email     string `form:"email" json:"email" validate:"required,email"`
	Notes     string `form:"notas" json:"notas"`
}

type ServiceForm struct {
	ID          int64   `form:"id" json:"-"`
	Name        string  `form:"nombre" json:"nombre" validate:"required"`
	DurationMin int     `form:"duracionMin" json:"duracionMin" validate:"gt=0"`
	Price       float64 `form:"precio" json:"precio" validate:"gt=0"`

	// Raw inputs, so a rejected form can be shown again as typed.
	DurationRaw string `form:"-" json:"-"`
	PriceRaw    string `form:"-" json:"-"`
}

type EmployeeForm struct {
	ID        int64  `form:"id" json:"-"`
	FirstName string `form:"nombre" json:"nombre" validate:"required"`
	LastName  string `form:"apellidos" json:"apellidos"`
	Email     string `form:"email" json:"email" validate:"required,email"`
	Phone     string `form:"telefono" json:"telefono"`
	Password  string `form:"password" json:"passwordHash,omitempty" validate:"required_if=ID 0"`
	Role      string `form:"rol" json:"rol" validate:"omitempty,oneof=ADMIN JEFE EMPLEADO BECARIO"`
}

type AppointmentForm struct {
	ClientID  int64  `form:"clienteId" validate:"gt=0"`
	ServiceID int64  `form:"servicioId" validate:"gt=0"`
	BarberID  int64  `form:"barberoId"`
	Date      string `form:"fecha" validate:"required,datetime=2006-01-02"`
	Time      string `form:"hora" validate:"required,datetime=15:04"`
	Notes     string `form:"notas"`
}

type idRef struct {
	ID int64 `json:"id"`
}

// AppointmentPayload is the body POST /citas expects.
type AppointmentPayload struct {
	Client  idRef  `json:"cliente"`
	Service idRef  `json:"servicio"`
	Barber  *idRef `json:"barbero"`
	Start   string `json:"fechaHoraInicio"`
	Notes   string `json:"notas"`
}

// Start joins the date and time inputs the way the backend expects them.
func (f AppointmentForm) Start() string {
	return f.Date + "T" + f.Time + ":00"
}

func (f AppointmentForm) Payload() AppointmentPayload {
	payload := AppointmentPayload{
		Client:  idRef{ID: f.ClientID},
		Service: idRef{ID: f.ServiceID},
		Start:   f.Start(),
		Notes:   f.Notes,
	}
	if f.BarberID > 0 {
		payload.Barber = &idRef{ID: f.BarberID}
	}
	return payload
}

// FormValues is the subset of url.Values the form readers need.
type FormValues interface {
	Get(key string) string
}

func ReadClientForm(values FormValues) ClientForm {
	return ClientForm{
		ID:        parseID(values.Get("id")),
		FirstName: strings.TrimSpace(values.Get("nombre")),
		LastName:  strings.TrimSpace(values.Get("apellidos")),
		Phone:     strings.TrimSpace(values.Get("telefono")),
		Email:     strings.TrimSpace(values.Get("email")),
		Notes:     strings.TrimSpace(values.Get("notas")),
	}
}

func ReadServiceForm(values FormValues) ServiceForm {
	form := ServiceForm{
		ID:          parseID(values.Get("id")),
		Name:        strings.TrimSpace(values.Get("nombre")),
		DurationRaw: strings.TrimSpace(values.Get("duracionMin")),
		PriceRaw:    strings.TrimSpace(values.Get("precio")),
	}
	if n, err := strconv.Atoi(form.DurationRaw); err == nil {
		form.DurationMin = n
	}
	if p, err := strconv.ParseFloat(strings.ReplaceAll(form.PriceRaw, ",", "."), 64); err == nil {
		form.Price = p
	}
	return form
}

func ReadEmployeeForm(values FormValues) EmployeeForm {
	return EmployeeForm{
		ID:        parseID(values.Get("id")),
		FirstName: strings.TrimSpace(values.Get("nombre")),
		LastName:  strings.TrimSpace(values.Get("apellidos")),
		Email:     strings.TrimSpace(values.Get("email")),
		Phone:     strings.TrimSpace(values.Get("telefono")),
		Password:  values.Get("password"),
		Role:      strings.ToUpper(strings.TrimSpace(values.Get("rol"))),
	}
}

func ReadAppointmentForm(values FormValues) AppointmentForm {
	return AppointmentForm{
		ClientID:  parseID(values.Get("clienteId")),
		ServiceID: parseID(values.Get("servicioId")),
		BarberID:  parseID(values.Get("barberoId")),
		Date:      strings.TrimSpace(values.Get("fecha")),
		Time:      strings.TrimSpace(values.Get("hora")),
		Notes:     strings.TrimSpace(values.Get("notas")),
	}
}

// ClientFormFrom prefills the edit form.
func ClientFormFrom(c Client) ClientForm {
	return ClientForm{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName, Phone: c.Phone, Email: c.Email, Notes: c.Notes}
}

func ServiceFormFrom(s Service) ServiceForm {
	form := ServiceForm{ID: s.ID, Name: s.Name}
	if s.DurationMin != nil {
		form.DurationMin = *s.DurationMin
		form.DurationRaw = strconv.Itoa(*s.DurationMin)
	}
	if s.Price != nil {
		form.Price = *s.Price
		form.PriceRaw = strconv.FormatFloat(*s.Price, 'f', 2, 64)
	}
	return form
}

func EmployeeFormFrom(e Employee) EmployeeForm {
	return EmployeeForm{ID: e.ID, FirstName: e.FirstName, LastName: e.LastName, Email: e.Email, Phone: e.Phone, Role: e.Role}
}

func parseID(raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < 0 {
		return 0
	}
	return id
}
