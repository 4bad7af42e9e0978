package services

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/hospivibe/internal/client/client"
	"github.com/dmitrijs2005/hospivibe/internal/client/forms"
	"github.com/dmitrijs2005/hospivibe/internal/client/models"
)

// AppointmentService covers scheduling for patients and the doctor's
// follow-up on appointments.
type AppointmentService struct {
	client client.Client
	auth   *AuthService
	forms  *forms.Validator
}

func NewAppointmentService(c client.Client, auth *AuthService, fv *forms.Validator) *AppointmentService {
	return &AppointmentService{client: c, auth: auth, forms: fv}
}

func (s *AppointmentService) authorize(action models.Action) error {
	return s.auth.Snapshot().Authorize(action)
}

// List returns the appointments visible to the signed-in user. The backend
// filters them by role.
func (s *AppointmentService) List(ctx context.Context) ([]models.Appointment, error) {
	if err := s.authorize(models.ActionListAppointments); err != nil {
		return nil, err
	}
	out, err := s.client.ListAppointments(ctx)
	return out, s.auth.HandleError(ctx, err)
}

// Schedule validates f and books the appointment. Invalid input returns
// forms.ValidationErrors without contacting the backend.
func (s *AppointmentService) Schedule(ctx context.Context, f forms.Appointment) (*models.Appointment, error) {
	if err := s.authorize(models.ActionScheduleAppointment); err != nil {
		return nil, err
	}
	req, err := s.forms.ValidateAppointment(f)
	if err != nil {
		return nil, err
	}
	out, err := s.client.CreateAppointment(ctx, req)
	return out, s.auth.HandleError(ctx, err)
}

func (s *AppointmentService) Cancel(ctx context.Context, id string) (*models.Appointment, error) {
	if err := s.authorize(models.ActionCancelAppointment); err != nil {
		return nil, err
	}
	if err := requireID(id); err != nil {
		return nil, err
	}
	out, err := s.client.UpdateAppointment(ctx, id, models.AppointmentUpdate{Status: models.StatusCancelled})
	return out, s.auth.HandleError(ctx, err)
}

// Complete marks an appointment completed. Non-empty notes are attached as
// doctor notes.
func (s *AppointmentService) Complete(ctx context.Context, id, notes string) (*models.Appointment, error) {
	if err := s.authorize(models.ActionCompleteAppointment); err != nil {
		return nil, err
	}
	if err := requireID(id); err != nil {
		return nil, err
	}
	upd := models.AppointmentUpdate{Status: models.StatusCompleted}
	if notes = strings.TrimSpace(notes); notes != "" {
		upd.DoctorNotes = &notes
	}
	out, err := s.client.UpdateAppointment(ctx, id, upd)
	return out, s.auth.HandleError(ctx, err)
}

// Doctors lists the doctors a patient can book with.
func (s *AppointmentService) Doctors(ctx context.Context) ([]models.User, error) {
	if err := s.authorize(models.ActionListDoctors); err != nil {
		return nil, err
	}
	out, err := s.client.ListUsers(ctx, models.RoleDoctor)
	return out, s.auth.HandleError(ctx, err)
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return forms.ValidationErrors{"id": "is required"}
	}
	return nil
}

// Upcoming returns scheduled appointments, in the order given.
func Upcoming(list []models.Appointment) []models.Appointment {
	out := make([]models.Appointment, 0, len(list))
	for _, a := range list {
		if a.Status == models.StatusScheduled {
			out = append(out, a)
		}
	}
	return out
}

// CountByStatus tallies appointments per status.
func CountByStatus(list []models.Appointment) map[models.AppointmentStatus]int {
	out := make(map[models.AppointmentStatus]int, 3)
	for _, a := range list {
		out[a.Status]++
	}
	return out
}
