package models

import (
	"encoding/json"
	"time"
)

type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TimeSlots are the bookable appointment start times.
var TimeSlots = []string{"09:00", "10:30", "14:00", "15:45"}

// DateLayout is the wire format of appointment dates.
const DateLayout = "2006-01-02"

type Appointment struct {
	ID          string            `json:"id"`
	PatientID   string            `json:"patient_id"`
	DoctorID    string            `json:"doctor_id"`
	Patient     *UserSummary      `json:"patient,omitempty"`
	Doctor      *UserSummary      `json:"doctor,omitempty"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Reason      string            `json:"reason"`
	Status      AppointmentStatus `json:"status"`
	DoctorNotes string            `json:"doctor_notes,omitempty"`
	CreatedAt   *time.Time        `json:"created_at,omitempty"`
}

func (a *Appointment) UnmarshalJSON(data []byte) error {
	type plain Appointment
	aux := struct {
		*plain
		MongoID   string `json:"_id"`
		CreatedAt any    `json:"created_at"`
	}{plain: (*plain)(a)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = aux.MongoID
	}
	if s, ok := aux.CreatedAt.(string); ok {
		a.CreatedAt = parseTimestamp(s)
	}
	return nil
}

// parseTimestamp accepts RFC 3339 and the RFC 1123 form Flask emits.
func parseTimestamp(s string) *time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC1123, time.RFC1123Z} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// Day parses the appointment date in loc.
func (a *Appointment) Day(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, a.Date, loc)
}

// NewAppointment is the create request body.
type NewAppointment struct {
	DoctorID string `json:"doctor_id"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Reason   string `json:"reason"`
}

// AppointmentUpdate is the PUT body; DoctorNotes is sent only when set.
type AppointmentUpdate struct {
	Status      AppointmentStatus `json:"status,omitempty"`
	DoctorNotes *string           `json:"doctor_notes,omitempty"`
}
