package client

import (
	"context"

	"github.com/dmitrijs2005/hospivibe/internal/client/models"
)

// Client is the typed contract for every backend REST endpoint.
type Client interface {
	Login(ctx context.Context, email, password string, role models.Role) (*models.AuthResponse, error)
	Register(ctx context.Context, name, email, password string, role models.Role) (*models.AuthResponse, error)

	// Profile returns the signed-in user as the backend currently sees it.
	Profile(ctx context.Context) (*models.User, error)
	// CompleteOnboarding returns the updated user when the backend sends one,
	// nil otherwise.
	CompleteOnboarding(ctx context.Context) (*models.User, error)

	ListAppointments(ctx context.Context) ([]models.Appointment, error)
	CreateAppointment(ctx context.Context, a models.NewAppointment) (*models.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, upd models.AppointmentUpdate) (*models.Appointment, error)
	ListUsers(ctx context.Context, role models.Role) ([]models.User, error)

	ListPatients(ctx context.Context) ([]models.PatientRecord, error)
	AddPatient(ctx context.Context, p models.PatientRecord) (*models.PatientRecord, error)
	UpdatePatient(ctx context.Context, p models.PatientRecord) (*models.PatientRecord, error)
	ShiftStats(ctx context.Context) (*models.ShiftSummary, error)

	Ping(ctx context.Context) error
	Close() error
}

// TokenSource supplies the bearer token for protected calls. An empty token
// means there is no session.
type TokenSource interface {
	AccessToken() string
}
