package barber

import "strings"

// Status is the lifecycle tag of an appointment as the backend spells it.
type Status string

const (
	StatusPending   Status = "PENDIENTE"
	StatusConfirmed Status = "CONFIRMADA"
	StatusCompleted Status = "COMPLETADA"
	StatusCancelled Status = "CANCELADA"
)

// Statuses lists the known statuses in display order.
var Statuses = []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

// ParseStatus uppercases the raw tag. An empty tag means PENDIENTE; unknown
// tags are kept as-is so callers can still display them.
func ParseStatus(raw string) Status {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return StatusPending
	}
	return Status(value)
}

func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CSSClass is used by the templates for the status badge.
func (s Status) CSSClass() string {
	return "estado-" + strings.ToLower(string(s))
}

// StatusAction is a transition the backend exposes under /citas/{id}/{action}.
type StatusAction string

const (
	ActionConfirm  StatusAction = "confirmar"
	ActionComplete StatusAction = "completar"
	ActionCancel   StatusAction = "cancelar"
)

func ParseStatusAction(raw string) (StatusAction, bool) {
	switch StatusAction(strings.ToLower(strings.TrimSpace(raw))) {
	case ActionConfirm:
		return ActionConfirm, true
	case ActionComplete:
		return ActionComplete, true
	case ActionCancel:
		return ActionCancel, true
	}
	return "", false
}

// ActiveAction toggles the active flag of clients, services and employees.
type ActiveAction string

const (
	ActionActivate   ActiveAction = "activar"
	ActionDeactivate ActiveAction = "desactivar"
)

func ParseActiveAction(raw string) (ActiveAction, bool) {
	switch ActiveAction(strings.ToLower(strings.TrimSpace(raw))) {
	case ActionActivate:
		return ActionActivate, true
	case ActionDeactivate:
		return ActionDeactivate, true
	}
	return "", false
}

// ToggleFor returns the action that flips the given active flag.
func ToggleFor(active bool) ActiveAction {
	if active {
		return ActionDeactivate
	}
	return ActionActivate
}
