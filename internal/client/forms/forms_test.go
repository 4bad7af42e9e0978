package forms

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/hospivibe/internal/client/models"
)

func fixedNow() time.Time {
	return time.Date(2026, time.October, 18, 15, 4, 0, 0, time.UTC)
}

func requireFieldErrors(t *testing.T, err error, fields ...string) ValidationErrors {
	t.Helper()
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	for _, f := range fields {
		assert.Contains(t, verrs, f)
	}
	assert.Len(t, verrs, len(fields), "unexpected fields: %v", verrs)
	return verrs
}

func TestValidateLogin(t *testing.T) {
	v := New(fixedNow)

	role, err := v.ValidateLogin(Login{Email: "nurse@x.com", Password: "pw123", Role: "nurse"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleNurse, role)

	role, err = v.ValidateLogin(Login{Email: "pat@x.com", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, models.RolePatient, role, "role defaults to patient")

	_, err = v.ValidateLogin(Login{})
	verrs := requireFieldErrors(t, err, "email", "password")
	assert.Equal(t, "is required", verrs["email"])

	_, err = v.ValidateLogin(Login{Email: "not-an-email", Password: "x", Role: "janitor"})
	verrs = requireFieldErrors(t, err, "email", "role")
	assert.Equal(t, "must be a valid email address", verrs["email"])
}

func TestValidateSignup_RequiresName(t *testing.T) {
	v := New(fixedNow)

	_, err := v.ValidateSignup(Signup{Email: "a@x.com", Password: "pw"})
	requireFieldErrors(t, err, "name")

	role, err := v.ValidateSignup(Signup{Name: "Ann", Email: "a@x.com", Password: "pw", Role: "Doctor"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleDoctor, role)
}

func TestValidateAppointment(t *testing.T) {
	v := New(fixedNow)

	tests := []struct {
		name   string
		form   Appointment
		fields []string
	}{
		{"ok today", Appointment{DoctorID: "d1", Date: "2026-10-18", Time: "09:00", Reason: "checkup"}, nil},
		{"ok future", Appointment{DoctorID: "d1", Date: "2027-01-02", Time: "15:45", Reason: "x"}, nil},
		{"past date", Appointment{DoctorID: "d1", Date: "2026-10-17", Time: "09:00", Reason: "x"}, []string{"date"}},
		{"bad date", Appointment{DoctorID: "d1", Date: "18/10/2026", Time: "09:00", Reason: "x"}, []string{"date"}},
		{"bad slot", Appointment{DoctorID: "d1", Date: "2026-10-19", Time: "11:00", Reason: "x"}, []string{"time"}},
		{"blank reason", Appointment{DoctorID: "d1", Date: "2026-10-19", Time: "10:30", Reason: "   "}, []string{"reason"}},
		{"empty", Appointment{}, []string{"doctor_id", "date", "time", "reason"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.ValidateAppointment(tc.form)
			if len(tc.fields) == 0 {
				require.NoError(t, err)
				assert.Equal(t, tc.form.DoctorID, got.DoctorID)
				return
			}
			requireFieldErrors(t, err, tc.fields...)
		})
	}
}

func TestValidateAppointment_Messages(t *testing.T) {
	v := New(fixedNow)

	_, err := v.ValidateAppointment(Appointment{DoctorID: "d1", Date: "2026-01-01", Time: "08:00", Reason: "x"})
	verrs := requireFieldErrors(t, err, "date", "time")
	assert.Equal(t, "must not be in the past", verrs["date"])
	assert.Equal(t, "must be one of 09:00, 10:30, 14:00, 15:45", verrs["time"])
	assert.Equal(t, "date: must not be in the past; time: must be one of 09:00, 10:30, 14:00, 15:45", err.Error())
}

func TestValidatePatient(t *testing.T) {
	v := New(fixedNow)

	rec, err := v.ValidatePatient(PatientIntake{Name: "Ann", Room: "101"})
	require.NoError(t, err)
	assert.Equal(t, models.PatientStable, rec.Status)
	assert.Equal(t, models.PriorityNormal, rec.Priority)

	rec, err = v.ValidatePatient(PatientIntake{Name: "Bob", Room: "7", Status: "Needs Attention", Priority: "High", Notes: "BP"})
	require.NoError(t, err)
	assert.Equal(t, models.PatientNeedsAttention, rec.Status)
	assert.Equal(t, "BP", rec.Notes)

	_, err = v.ValidatePatient(PatientIntake{Status: "Dead", Priority: "Urgent"})
	requireFieldErrors(t, err, "name", "room", "status", "priority")
}
