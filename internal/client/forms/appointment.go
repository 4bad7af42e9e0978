package forms

import (
	"strings"

	"github.com/dmitrijs2005/hospivibe/internal/client/models"
)

type Appointment struct {
	DoctorID string `json:"doctor_id" validate:"required"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02,notpast"`
	Time     string `json:"time" validate:"required,oneof=09:00 10:30 14:00 15:45"`
	Reason   string `json:"reason" validate:"required"`
}

func (fv *Validator) ValidateAppointment(f Appointment) (models.NewAppointment, error) {
	f.Reason = strings.TrimSpace(f.Reason)
	if err := fv.Struct(f); err != nil {
		return models.NewAppointment{}, err
	}
	return models.NewAppointment{DoctorID: f.DoctorID, Date: f.Date, Time: f.Time, Reason: f.Reason}, nil
}
