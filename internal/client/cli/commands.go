package cli

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/hospivibe/internal/client/models"
	"github.com/dmitrijs2005/hospivibe/internal/client/services"
)

// command is one CLI verb shared by the REPL and the cobra subcommands.
type command struct {
	name    string
	usage   string
	summary string
	// visible reports whether help should offer the command in this state.
	visible func(s services.Snapshot) bool
	run     func(ctx context.Context, args []string) error
}

func always(services.Snapshot) bool { return true }

func signedOut(s services.Snapshot) bool { return !s.IsAuthenticated }

func signedIn(s services.Snapshot) bool { return s.IsAuthenticated }

func onboarding(s services.Snapshot) bool { return s.State == services.StateNeedsOnboarding }

func ready(s services.Snapshot) bool { return s.State == services.StateReady }

func allowed(action models.Action) func(services.Snapshot) bool {
	return func(s services.Snapshot) bool { return s.Authorize(action) == nil }
}

func (a *App) commands() []command {
	return []command{
		{"login", "login", "sign in to your account", signedOut, a.Login},
		{"signup", "signup", "create a new account", signedOut, a.Signup},
		{"onboard", "onboard", "finish setting up your account", onboarding, a.Onboard},
		{"dashboard", "dashboard", "show your dashboard", ready, a.Dashboard},
		{"appointments", "appointments", "list your appointments", allowed(models.ActionListAppointments), a.Appointments},
		{"doctors", "doctors", "list doctors", allowed(models.ActionListDoctors), a.Doctors},
		{"schedule", "schedule", "book an appointment", allowed(models.ActionScheduleAppointment), a.Schedule},
		{"cancel", "cancel <id>", "cancel an appointment", allowed(models.ActionCancelAppointment), a.Cancel},
		{"complete", "complete <id>", "complete an appointment with notes", allowed(models.ActionCompleteAppointment), a.Complete},
		{"patients", "patients", "list patient records", allowed(models.ActionManagePatients), a.Patients},
		{"add-patient", "add-patient", "add a patient record", allowed(models.ActionManagePatients), a.AddPatient},
		{"update-patient", "update-patient <id>", "update a patient record", allowed(models.ActionManagePatients), a.UpdatePatient},
		{"shift", "shift", "show shift statistics", allowed(models.ActionViewShiftStats), a.Shift},
		{"status", "status", "show session status", always, a.Status},
		{"metrics", "metrics", "show request metrics", always, a.Metrics},
		{"version", "version", "show build information", always, a.Version},
		{"logout", "logout", "sign out", signedIn, a.Logout},
	}
}

func (a *App) available() []string {
	snap := a.auth.Snapshot()
	var names []string
	for _, c := range a.commands() {
		if c.visible(snap) {
			names = append(names, c.name)
		}
	}
	return names
}

// dispatch runs the named command and reports whether it exists. Errors
// are logged and shown to the user.
func (a *App) dispatch(ctx context.Context, name string, args []string) (bool, error) {
	for _, c := range a.commands() {
		if c.name != name {
			continue
		}
		err := c.run(ctx, args)
		if err != nil {
			a.log.Debug(ctx, "command failed", "command", name, "error", err)
			a.printf("Error: %s", userMessage(err))
		}
		return true, err
	}
	return false, nil
}

func (a *App) status() string {
	snap := a.auth.Snapshot()
	s := ""
	if snap.User != nil {
		s = snap.User.Name + " " + string(snap.User.Role) + " "
	}
	if mode := a.Mode(); mode != "" {
		s += string(mode)
	}
	if s == "" {
		return ""
	}
	return "(" + strings.TrimSpace(s) + ")"
}
