package services

import (
	"context"
	"sort"

	"github.com/dmitrijs2005/hospivibe/internal/client/client"
	"github.com/dmitrijs2005/hospivibe/internal/client/forms"
	"github.com/dmitrijs2005/hospivibe/internal/client/models"
)

// NurseService manages patient monitoring records and the shift summary.
type NurseService struct {
	client client.Client
	auth   *AuthService
	forms  *forms.Validator
}

func NewNurseService(c client.Client, auth *AuthService, fv *forms.Validator) *NurseService {
	return &NurseService{client: c, auth: auth, forms: fv}
}

// Patients returns the nurse's patient records, highest priority first.
func (s *NurseService) Patients(ctx context.Context) ([]models.PatientRecord, error) {
	if err := s.auth.Snapshot().Authorize(models.ActionManagePatients); err != nil {
		return nil, err
	}
	out, err := s.client.ListPatients(ctx)
	if err != nil {
		return nil, s.auth.HandleError(ctx, err)
	}
	SortByPriority(out)
	return out, nil
}

func (s *NurseService) AddPatient(ctx context.Context, f forms.PatientIntake) (*models.PatientRecord, error) {
	if err := s.auth.Snapshot().Authorize(models.ActionManagePatients); err != nil {
		return nil, err
	}
	rec, err := s.forms.ValidatePatient(f)
	if err != nil {
		return nil, err
	}
	out, err := s.client.AddPatient(ctx, rec)
	return out, s.auth.HandleError(ctx, err)
}

// UpdatePatient replaces the record id with the validated form.
func (s *NurseService) UpdatePatient(ctx context.Context, id string, f forms.PatientIntake) (*models.PatientRecord, error) {
	if err := s.auth.Snapshot().Authorize(models.ActionManagePatients); err != nil {
		return nil, err
	}
	if err := requireID(id); err != nil {
		return nil, err
	}
	rec, err := s.forms.ValidatePatient(f)
	if err != nil {
		return nil, err
	}
	rec.ID = id
	out, err := s.client.UpdatePatient(ctx, rec)
	return out, s.auth.HandleError(ctx, err)
}

func (s *NurseService) Shift(ctx context.Context) (*models.ShiftSummary, error) {
	if err := s.auth.Snapshot().Authorize(models.ActionViewShiftStats); err != nil {
		return nil, err
	}
	out, err := s.client.ShiftStats(ctx)
	return out, s.auth.HandleError(ctx, err)
}

// SortByPriority orders records High, Normal, Low; ties keep their order.
func SortByPriority(list []models.PatientRecord) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Priority.Rank() < list[j].Priority.Rank()
	})
}

// CountByPatientStatus tallies records per monitoring status.
func CountByPatientStatus(list []models.PatientRecord) map[models.PatientStatus]int {
	out := make(map[models.PatientStatus]int, len(models.PatientStatuses))
	for _, p := range list {
		out[p.Status]++
	}
	return out
}
