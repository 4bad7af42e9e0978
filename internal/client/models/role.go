package models

import (
	"fmt"
	"strings"
)

// Role is the closed set of account categories.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RoleNurse   Role = "nurse"
	RolePatient Role = "patient"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleAdmin, RoleDoctor, RoleNurse, RolePatient}

// ErrInvalidRole is returned by ParseRole for values outside Roles.
type ErrInvalidRole struct {
	Value string
}

func (e *ErrInvalidRole) Error() string {
	return fmt.Sprintf("invalid role %q", e.Value)
}

// ParseRole converts s (case-insensitive) to a Role.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", &ErrInvalidRole{Value: s}
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleNurse, RolePatient:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Title is the human-readable role name.
func (r Role) Title() string {
	switch r {
	case RoleAdmin:
		return "Administrator"
	case RoleDoctor:
		return "Doctor"
	case RoleNurse:
		return "Nurse"
	case RolePatient:
		return "Patient"
	}
	return string(r)
}

// Description is the one-line summary shown during signup and onboarding.
func (r Role) Description() string {
	switch r {
	case RoleAdmin:
		return "Manage hospital staff, departments and overall operations"
	case RoleDoctor:
		return "Review appointments, record notes and follow your patients"
	case RoleNurse:
		return "Monitor patients, administer medication and hand over shifts"
	case RolePatient:
		return "Schedule appointments and follow your care"
	}
	return ""
}

// Action is something a role may do from its dashboard.
type Action string

const (
	ActionScheduleAppointment Action = "schedule_appointment"
	ActionCancelAppointment   Action = "cancel_appointment"
	ActionListDoctors         Action = "list_doctors"
	ActionCompleteAppointment Action = "complete_appointment"
	ActionAddDoctorNotes      Action = "add_doctor_notes"
	ActionListAppointments    Action = "list_appointments"
	ActionManagePatients      Action = "manage_patients"
	ActionViewShiftStats      Action = "view_shift_stats"
	ActionViewStaff           Action = "view_staff"
)

var permissions = map[Role][]Action{
	RolePatient: {ActionListAppointments, ActionScheduleAppointment, ActionCancelAppointment, ActionListDoctors},
	RoleDoctor:  {ActionListAppointments, ActionCompleteAppointment, ActionAddDoctorNotes, ActionCancelAppointment},
	RoleNurse:   {ActionManagePatients, ActionViewShiftStats},
	RoleAdmin:   {ActionListAppointments, ActionViewStaff, ActionListDoctors},
}

// Can reports whether the role is allowed to perform a.
func (r Role) Can(a Action) bool {
	for _, allowed := range permissions[r] {
		if allowed == a {
			return true
		}
	}
	return false
}

// Actions returns the actions permitted to the role.
func (r Role) Actions() []Action {
	out := make([]Action, len(permissions[r]))
	copy(out, permissions[r])
	return out
}
