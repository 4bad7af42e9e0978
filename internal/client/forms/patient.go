package forms

import "github.com/dmitrijs2005/hospivibe/internal/client/models"

type PatientIntake struct {
	Name     string `json:"name" validate:"required"`
	Room     string `json:"room" validate:"required"`
	Status   string `json:"status" validate:"required,patientstatus"`
	Priority string `json:"priority" validate:"required,oneof=High Normal Low"`
	Notes    string `json:"notes"`
}

// ValidatePatient checks the intake form. Empty status and priority default
// to Stable and Normal.
func (fv *Validator) ValidatePatient(f PatientIntake) (models.PatientRecord, error) {
	if f.Status == "" {
		f.Status = string(models.PatientStable)
	}
	if f.Priority == "" {
		f.Priority = string(models.PriorityNormal)
	}
	if err := fv.Struct(f); err != nil {
		return models.PatientRecord{}, err
	}
	return models.PatientRecord{
		Name:     f.Name,
		Room:     f.Room,
		Status:   models.PatientStatus(f.Status),
		Priority: models.Priority(f.Priority),
		Notes:    f.Notes,
	}, nil
}
