package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"admin", RoleAdmin, false},
		{"Doctor", RoleDoctor, false},
		{" nurse ", RoleNurse, false},
		{"patient", RolePatient, false},
		{"janitor", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRole(tc.in)
			if tc.wantErr {
				var invalid *ErrInvalidRole
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, tc.in, invalid.Value)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestRole_Permissions(t *testing.T) {
	assert.True(t, RolePatient.Can(ActionScheduleAppointment))
	assert.False(t, RoleDoctor.Can(ActionScheduleAppointment))
	assert.True(t, RoleDoctor.Can(ActionAddDoctorNotes))
	assert.False(t, RolePatient.Can(ActionAddDoctorNotes))
	assert.True(t, RoleNurse.Can(ActionManagePatients))
	assert.False(t, RoleAdmin.Can(ActionManagePatients))
	assert.True(t, RoleAdmin.Can(ActionViewStaff))
	assert.False(t, Role("ghost").Can(ActionListAppointments))
}

func TestRole_ActionsIsACopy(t *testing.T) {
	a := RoleNurse.Actions()
	require.NotEmpty(t, a)
	a[0] = ActionViewStaff
	assert.False(t, RoleNurse.Can(ActionViewStaff))
}

func TestRole_TitlesAndDescriptions(t *testing.T) {
	for _, r := range Roles {
		assert.NotEmpty(t, r.Title())
		assert.NotEmpty(t, r.Description())
		assert.True(t, r.Valid())
	}
}
