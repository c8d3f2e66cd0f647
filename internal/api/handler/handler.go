package handler

import "custody-tracker/internal/service"

// Handler aggregate of every handler
type Handler struct {
	Auth   *AuthHandler
	User   *UserHandler
	Person *PersonHandler
	Event  *EventHandler
	Alert  *AlertHandler
	Lookup *LookupHandler
	Health *HealthHandler
}

// NewHandler builds the aggregate
func NewHandler(svc *service.Service, checks map[string]HealthCheck) *Handler {
	return &Handler{
		Auth:   NewAuthHandler(svc.Auth),
		User:   NewUserHandler(svc.User),
		Person: NewPersonHandler(svc.Person),
		Event:  NewEventHandler(svc.Event),
		Alert:  NewAlertHandler(svc.Alert),
		Lookup: NewLookupHandler(svc.Lookup),
		Health: NewHealthHandler(checks),
	}
}
