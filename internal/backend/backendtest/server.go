// Package backendtest is an in-memory stand-in for the barbershop REST API.
// It speaks the same JSON contract and records every request it receives.
package backendtest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tacbarber/barberdesk/internal/barber"
)

type Request struct {
	Method string
	Path   string
	Query  string
	Body   string
}

type account struct {
	password string
	user     barber.SessionUser
}

type failure struct {
	status int
	body   string
}

type Server struct {
	*httptest.Server

	mu           sync.Mutex
	requests     []Request
	failures     map[string]failure
	accounts     map[string]account
	resetTokens  map[string]string
	nextID       int64
	appointments []barber.Appointment
	clients      []barber.Client
	services     []barber.Service
	employees    []barber.Employee
}

func New() *Server {
	s := &Server{
		failures:    make(map[string]failure),
		accounts:    make(map[string]account),
		resetTokens: make(map[string]string),
		nextID:      100,
	}
	s.Server = httptest.NewServer(s.routes())
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("POST /auth/solicitar-recuperacion", s.requestReset)
	mux.HandleFunc("GET /auth/validar-token", s.validateToken)
	mux.HandleFunc("POST /auth/resetear-password", s.resetPassword)

	mux.HandleFunc("GET /citas", s.listAppointments)
	mux.HandleFunc("POST /citas", s.createAppointment)
	mux.HandleFunc("GET /citas/{id}", s.getAppointment)
	mux.HandleFunc("PUT /citas/{id}/{action}", s.transitionAppointment)
	mux.HandleFunc("DELETE /citas/{id}", s.deleteAppointment)

	mux.HandleFunc("GET /clientes", s.listClients)
	mux.HandleFunc("POST /clientes", s.createClient)
	mux.HandleFunc("GET /clientes/{id}", s.getClient)
	mux.HandleFunc("PUT /clientes/{id}", s.updateClient)
	mux.HandleFunc("PUT /clientes/{id}/{action}", s.toggleClient)
	mux.HandleFunc("DELETE /clientes/{id}", s.deleteClient)

	mux.HandleFunc("GET /servicios", s.listServices)
	mux.HandleFunc("POST /servicios", s.createService)
	mux.HandleFunc("GET /servicios/{id}", s.getService)
	mux.HandleFunc("PUT /servicios/{id}", s.updateService)
	mux.HandleFunc("PUT /servicios/{id}/{action}", s.toggleService)
	mux.HandleFunc("DELETE /servicios/{id}", s.deleteService)

	mux.HandleFunc("GET /empleados", s.listEmployees)
	mux.HandleFunc("POST /empleados", s.createEmployee)
	mux.HandleFunc("GET /empleados/{id}", s.getEmployee)
	mux.HandleFunc("PUT /empleados/{id}", s.updateEmployee)
	mux.HandleFunc("PUT /empleados/{id}/{action}", s.toggleEmployee)
	mux.HandleFunc("DELETE /empleados/{id}", s.deleteEmployee)

	return s.record(mux)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: string(body)})
		fail, failing := s.failures[r.Method+" "+r.URL.Path]
		s.mu.Unlock()

		if failing {
			http.Error(w, fail.body, fail.status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Fail makes every request matching method and path answer with status.
func (s *Server) Fail(method, path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, body: body}
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// RequestsTo counts recorded requests whose method and path match.
func (s *Server) RequestsTo(method, path string) int {
	count := 0
	for _, req := range s.Requests() {
		if req.Method == method && req.Path == path {
			count++
		}
	}
	return count
}

func (s *Server) AddAccount(email, password, role string) barber.SessionUser {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	user := barber.SessionUser{UserID: &id, Email: email, Role: role, Message: "Login correcto"}
	s.accounts[strings.ToLower(email)] = account{password: password, user: user}
	return user
}

// IssueResetToken registers a recovery token for email, as if the mail was sent.
func (s *Server) IssueResetToken(email, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetTokens[token] = strings.ToLower(email)
}

func (s *Server) AddClient(c barber.Client) barber.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.newID()
	}
	s.clients = append(s.clients, c)
	return c
}

func (s *Server) AddService(svc barber.Service) barber.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.ID == 0 {
		svc.ID = s.newID()
	}
	s.services = append(s.services, svc)
	return svc
}

func (s *Server) AddEmployee(e barber.Employee) barber.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == 0 {
		e.ID = s.newID()
	}
	s.employees = append(s.employees, e)
	return e
}

func (s *Server) AddAppointment(a barber.Appointment) barber.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		a.ID = s.newID()
	}
	s.appointments = append(s.appointments, a)
	return a
}

func (s *Server) Clients() []barber.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]barber.Client(nil), s.clients...)
}

func (s *Server) Services() []barber.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]barber.Service(nil), s.services...)
}

func (s *Server) Employees() []barber.Employee {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]barber.Employee(nil), s.employees...)
}

func (s *Server) Appointments() []barber.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]barber.Appointment(nil), s.appointments...)
}

func (s *Server) newID() int64 {
	s.nextID++
	return s.nextID
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "cuerpo inválido", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	acc, ok := s.accounts[strings.ToLower(strings.TrimSpace(creds.Email))]
	s.mu.Unlock()
	if !ok || acc.password != creds.Password {
		http.Error(w, "Credenciales incorrectas", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, acc.user)
}

func (s *Server) requestReset(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Email) == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	_, ok := s.accounts[strings.ToLower(strings.TrimSpace(body.Email))]
	s.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) validateToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	_, ok := s.resetTokens[token]
	s.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" || body.Password == "" {
		http.Error(w, "Token o contraseña inválidos", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	email, ok := s.resetTokens[body.Token]
	if !ok {
		http.Error(w, "Token inválido o expirado", http.StatusBadRequest)
		return
	}
	delete(s.resetTokens, body.Token)
	acc := s.accounts[email]
	acc.password = body.Password
	s.accounts[email] = acc
	w.WriteHeader(http.StatusOK)
}

func (s *Server) listAppointments(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("fecha")
	barberID, _ := strconv.ParseInt(r.URL.Query().Get("barberoId"), 10, 64)

	s.mu.Lock()
	out := make([]barber.Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		if date != "" && !strings.HasPrefix(a.StartRaw, date) {
			continue
		}
		if barberID > 0 && (a.Barber == nil || a.Barber.ID != barberID) {
			continue
		}
		out = append(out, a)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.appointments {
		if a.ID == id {
			writeJSON(w, http.StatusOK, a)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) createAppointment(w http.ResponseWriter, r *http.Request) {
	var payload barber.AppointmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "cuerpo inválido", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	client := findClient(s.clients, payload.Client.ID)
	service := findService(s.services, payload.Service.ID)
	if client == nil || service == nil {
		http.Error(w, "Cliente o servicio no encontrado", http.StatusBadRequest)
		return
	}
	appt := barber.Appointment{
		ID:        s.newID(),
		StartRaw:  payload.Start,
		StatusRaw: string(barber.StatusPending),
		Notes:     payload.Notes,
		Client:    client,
		Service:   service,
	}
	if payload.Barber != nil {
		for i := range s.employees {
			if s.employees[i].ID == payload.Barber.ID {
				emp := s.employees[i]
				appt.Barber = &emp
			}
		}
	}
	if start, err := time.Parse("2006-01-02T15:04:05", payload.Start); err == nil && service.DurationMin != nil {
		appt.EndRaw = start.Add(time.Duration(*service.DurationMin) * time.Minute).Format("2006-01-02T15:04:05")
	}
	s.appointments = append(s.appointments, appt)
	writeJSON(w, http.StatusCreated, appt)
}

func (s *Server) transitionAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	action, ok := barber.ParseStatusAction(r.PathValue("action"))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	next := map[barber.StatusAction]barber.Status{
		barber.ActionConfirm:  barber.StatusConfirmed,
		barber.ActionComplete: barber.StatusCompleted,
		barber.ActionCancel:   barber.StatusCancelled,
	}[action]

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			s.appointments[i].StatusRaw = string(next)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) deleteAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.appointments {
		if s.appointments[i].ID == id {
			s.appointments = append(s.appointments[:i], s.appointments[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	onlyActive := onlyActiveParam(r)
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	s.mu.Lock()
	out := make([]barber.Client, 0, len(s.clients))
	for _, c := range s.clients {
		if onlyActive && !c.IsActive() {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(c.FirstName+" "+c.LastName+" "+c.Email), q) {
			continue
		}
		out = append(out, c)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := findClient(s.clients, id); c != nil {
		writeJSON(w, http.StatusOK, c)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var form barber.ClientForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil || form.FirstName == "" {
		http.Error(w, "El nombre es obligatorio", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	active := true
	c := barber.Client{
		ID: s.newID(), FirstName: form.FirstName, LastName: form.LastName, Phone: form.Phone,
		Email: form.Email, Notes: form.Notes, Active: &active, CreatedAt: time.Now().Format("2006-01-02T15:04:05"),
	}
	s.clients = append(s.clients, c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) updateClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var form barber.ClientForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "cuerpo inválido", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.clients {
		if s.clients[i].ID == id {
			c := &s.clients[i]
			c.FirstName, c.LastName, c.Phone, c.Email, c.Notes = form.FirstName, form.LastName, form.Phone, form.Email, form.Notes
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) toggleClient(w http.ResponseWriter, r *http.Request) {
	id, active, ok := toggleParams(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.clients {
		if s.clients[i].ID == id {
			s.clients[i].Active = &active
			writeJSON(w, http.StatusOK, s.clients[i])
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) deleteClient(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.clients {
		if s.clients[i].ID == id {
			deleted := s.clients[i]
			s.clients = append(s.clients[:i], s.clients[i+1:]...)
			writeJSON(w, http.StatusOK, deleted)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) listServices(w http.ResponseWriter, r *http.Request) {
	onlyActive := onlyActiveParam(r)
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))
	s.mu.Lock()
	out := make([]barber.Service, 0, len(s.services))
	for _, svc := range s.services {
		if onlyActive && !svc.IsActive() {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(svc.Name), q) {
			continue
		}
		out = append(out, svc)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc := findService(s.services, id); svc != nil {
		writeJSON(w, http.StatusOK, svc)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) createService(w http.ResponseWriter, r *http.Request) {
	var form barber.ServiceForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil || form.Name == "" {
		http.Error(w, "El nombre es obligatorio", http.StatusBadRequest)
		return
	}
	if form.DurationMin <= 0 {
		http.Error(w, "La duración debe ser mayor que 0", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	active := true
	duration, price := form.DurationMin, form.Price
	svc := barber.Service{ID: s.newID(), Name: form.Name, DurationMin: &duration, Price: &price, Active: &active}
	s.services = append(s.services, svc)
	writeJSON(w, http.StatusCreated, svc)
}

func (s *Server) updateService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var form barber.ServiceForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "cuerpo inválido", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.services {
		if s.services[i].ID == id {
			svc := &s.services[i]
			duration, price := form.DurationMin, form.Price
			svc.Name, svc.DurationMin, svc.Price = form.Name, &duration, &price
			writeJSON(w, http.StatusOK, svc)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) toggleService(w http.ResponseWriter, r *http.Request) {
	id, active, ok := toggleParams(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.services {
		if s.services[i].ID == id {
			s.services[i].Active = &active
			writeJSON(w, http.StatusOK, s.services[i])
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) deleteService(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.services {
		if s.services[i].ID == id {
			s.services = append(s.services[:i], s.services[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) listEmployees(w http.ResponseWriter, r *http.Request) {
	onlyActive := onlyActiveParam(r)
	s.mu.Lock()
	out := make([]barber.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		if onlyActive && !e.IsActive() {
			continue
		}
		out = append(out, e)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.employees {
		if e.ID == id {
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) createEmployee(w http.ResponseWriter, r *http.Request) {
	var form barber.EmployeeForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil || form.FirstName == "" || form.Password == "" {
		http.Error(w, "Nombre y contraseña obligatorios", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	active := true
	role := form.Role
	if role == "" {
		role = "EMPLEADO"
	}
	e := barber.Employee{ID: s.newID(), FirstName: form.FirstName, LastName: form.LastName, Email: form.Email, Phone: form.Phone, Role: role, Active: &active}
	s.employees = append(s.employees, e)
	writeJSON(w, http.StatusCreated, e)
}

func (s *Server) updateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var form barber.EmployeeForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		http.Error(w, "cuerpo inválido", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.employees {
		if s.employees[i].ID == id {
			e := &s.employees[i]
			e.FirstName, e.LastName, e.Email, e.Phone = form.FirstName, form.LastName, form.Email, form.Phone
			if form.Role != "" {
				e.Role = form.Role
			}
			writeJSON(w, http.StatusOK, e)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) toggleEmployee(w http.ResponseWriter, r *http.Request) {
	id, active, ok := toggleParams(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.employees {
		if s.employees[i].ID == id {
			s.employees[i].Active = &active
			writeJSON(w, http.StatusOK, s.employees[i])
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.employees {
		if s.employees[i].ID == id {
			s.employees = append(s.employees[:i], s.employees[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func findClient(clients []barber.Client, id int64) *barber.Client {
	for i := range clients {
		if clients[i].ID == id {
			c := clients[i]
			return &c
		}
	}
	return nil
}

func findService(services []barber.Service, id int64) *barber.Service {
	for i := range services {
		if services[i].ID == id {
			svc := services[i]
			return &svc
		}
	}
	return nil
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		w.WriteHeader(http.StatusNotFound)
		return 0, false
	}
	return id, true
}

func toggleParams(w http.ResponseWriter, r *http.Request) (int64, bool, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return 0, false, false
	}
	action, ok := barber.ParseActiveAction(r.PathValue("action"))
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return 0, false, false
	}
	return id, action == barber.ActionActivate, true
}

// onlyActiveParam mirrors the backend default of soloActivos=true.
func onlyActiveParam(r *http.Request) bool {
	raw := r.URL.Query().Get("soloActivos")
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	return err != nil || v
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
