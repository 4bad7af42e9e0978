package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/hospivibe/internal/client/client"
	"github.com/dmitrijs2005/hospivibe/internal/client/models"
	"github.com/dmitrijs2005/hospivibe/internal/client/routes"
)

// Panel is one independently loaded block of a dashboard. A panel whose
// fetch failed carries Err and no lines.
type Panel struct {
	Title string
	Lines []string
	Err   error
}

type Dashboard struct {
	Greeting string
	Role     models.Role
	Panels   []Panel
}

// DashboardProvider loads the dashboard for one role.
type DashboardProvider interface {
	Load(ctx context.Context) (*Dashboard, error)
}

// NewDashboardProvider returns the provider for role.
func NewDashboardProvider(role models.Role, c client.Client, auth *AuthService, now func() time.Time) (DashboardProvider, error) {
	if now == nil {
		now = time.Now
	}
	b := dashboardBase{client: c, auth: auth, now: now}
	switch role {
	case models.RoleAdmin:
		return &AdminDashboard{b}, nil
	case models.RoleDoctor:
		return &DoctorDashboard{b}, nil
	case models.RoleNurse:
		return &NurseDashboard{b}, nil
	case models.RolePatient:
		return &PatientDashboard{b}, nil
	}
	return nil, &models.ErrInvalidRole{Value: string(role)}
}

// Greeting picks the salutation for the hour of t.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good Morning"
	case h < 18:
		return "Good Afternoon"
	default:
		return "Good Evening"
	}
}

type panelSpec struct {
	title string
	load  func(ctx context.Context) ([]string, error)
}

type dashboardBase struct {
	client client.Client
	auth   *AuthService
	now    func() time.Time
}

func (b dashboardBase) load(ctx context.Context, role models.Role, specs ...panelSpec) (*Dashboard, error) {
	snap := b.auth.Snapshot()
	switch snap.Route(routes.Dashboard) {
	case routes.Login:
		return nil, client.ErrAuthRequired
	case routes.Onboarding:
		return nil, ErrOnboardingRequired
	}
	if snap.Role() != role {
		return nil, fmt.Errorf("%w: %s dashboard", ErrNotPermitted, role)
	}

	panels := make([]Panel, len(specs))
	var g errgroup.Group
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			lines, err := spec.load(ctx)
			panels[i] = Panel{Title: spec.title, Lines: lines, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	for _, p := range panels {
		if errors.Is(p.Err, client.ErrUnauthorized) {
			_ = b.auth.HandleError(ctx, p.Err)
			break
		}
	}

	name := ""
	if snap.User != nil {
		name = snap.User.Name
	}
	return &Dashboard{
		Greeting: fmt.Sprintf("%s, %s", Greeting(b.now()), name),
		Role:     role,
		Panels:   panels,
	}, nil
}

func (b dashboardBase) today() string {
	return b.now().Format(models.DateLayout)
}

type AdminDashboard struct{ dashboardBase }

func (d *AdminDashboard) Load(ctx context.Context) (*Dashboard, error) {
	return d.load(ctx, models.RoleAdmin,
		panelSpec{"Staff overview", d.staff},
		panelSpec{"Appointments", d.appointments},
	)
}

func (d *AdminDashboard) staff(ctx context.Context) ([]string, error) {
	var lines []string
	for _, r := range []models.Role{models.RoleDoctor, models.RoleNurse, models.RolePatient} {
		users, err := d.client.ListUsers(ctx, r)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("%ss: %d", r.Title(), len(users)))
	}
	return lines, nil
}

func (d *AdminDashboard) appointments(ctx context.Context) ([]string, error) {
	list, err := d.client.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	counts := CountByStatus(list)
	lines := []string{fmt.Sprintf("Total: %d", len(list))}
	for _, s := range []models.AppointmentStatus{models.StatusScheduled, models.StatusCompleted, models.StatusCancelled} {
		lines = append(lines, fmt.Sprintf("%s: %d", s, counts[s]))
	}
	return lines, nil
}

type DoctorDashboard struct{ dashboardBase }

// recentNotesLimit caps the "Recent patient notes" panel.
const recentNotesLimit = 5

// Load fetches the appointment list once and builds every panel from it.
func (d *DoctorDashboard) Load(ctx context.Context) (*Dashboard, error) {
	list := sync.OnceValues(func() ([]models.Appointment, error) {
		return d.client.ListAppointments(ctx)
	})
	from := func(build func([]models.Appointment) []string) func(context.Context) ([]string, error) {
		return func(context.Context) ([]string, error) {
			l, err := list()
			if err != nil {
				return nil, err
			}
			return build(l), nil
		}
	}
	return d.load(ctx, models.RoleDoctor,
		panelSpec{"Today's appointments", from(d.todays)},
		panelSpec{"Patient overview", from(d.overview)},
		panelSpec{"Recent patient notes", from(d.notes)},
	)
}

func (d *DoctorDashboard) todays(list []models.Appointment) []string {
	today := d.today()
	var lines []string
	for _, a := range Upcoming(list) {
		if a.Date != today {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s [%s]", a.Time, personName(a.Patient, a.PatientID), a.Reason, a.ID))
	}
	if len(lines) == 0 {
		lines = []string{"No appointments today"}
	}
	return lines
}

func (d *DoctorDashboard) overview(list []models.Appointment) []string {
	patients := make(map[string]struct{})
	for _, a := range list {
		patients[a.PatientID] = struct{}{}
	}
	counts := CountByStatus(list)
	return []string{
		fmt.Sprintf("Patients: %d", len(patients)),
		fmt.Sprintf("Scheduled: %d", counts[models.StatusScheduled]),
		fmt.Sprintf("Completed: %d", counts[models.StatusCompleted]),
	}
}

// notes lists the notes of completed appointments, newest first.
func (d *DoctorDashboard) notes(list []models.Appointment) []string {
	var done []models.Appointment
	for _, a := range list {
		if a.Status == models.StatusCompleted && strings.TrimSpace(a.DoctorNotes) != "" {
			done = append(done, a)
		}
	}
	sort.SliceStable(done, func(i, j int) bool {
		if done[i].Date != done[j].Date {
			return done[i].Date > done[j].Date
		}
		return done[i].Time > done[j].Time
	})
	if len(done) > recentNotesLimit {
		done = done[:recentNotesLimit]
	}
	lines := make([]string, 0, len(done))
	for _, a := range done {
		lines = append(lines, fmt.Sprintf("%s %s: %s", a.Date, personName(a.Patient, a.PatientID), strings.TrimSpace(a.DoctorNotes)))
	}
	if len(lines) == 0 {
		lines = []string{"No recent notes"}
	}
	return lines
}

type NurseDashboard struct{ dashboardBase }

func (d *NurseDashboard) Load(ctx context.Context) (*Dashboard, error) {
	return d.load(ctx, models.RoleNurse,
		panelSpec{"Patient monitoring", d.monitoring},
		panelSpec{"Shift summary", d.shift},
	)
}

func (d *NurseDashboard) monitoring(ctx context.Context) ([]string, error) {
	list, err := d.client.ListPatients(ctx)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return []string{"No patients assigned"}, nil
	}
	SortByPriority(list)
	lines := make([]string, 0, len(list)+1)
	lines = append(lines, statusSummary(len(list), CountByPatientStatus(list)))
	for _, p := range list {
		lines = append(lines, fmt.Sprintf("[%s] %s, room %s: %s", p.Priority, p.Name, p.Room, p.Status))
	}
	return lines, nil
}

// statusSummary renders the total and then the counts most severe first,
// skipping empty statuses.
func statusSummary(total int, counts map[models.PatientStatus]int) string {
	order := []models.PatientStatus{models.PatientCritical, models.PatientNeedsAttention, models.PatientImproving, models.PatientStable}
	parts := []string{fmt.Sprintf("Patients: %d", total)}
	for _, s := range order {
		if n := counts[s]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", s, n))
		}
	}
	return strings.Join(parts, ", ")
}

func (d *NurseDashboard) shift(ctx context.Context) ([]string, error) {
	sum, err := d.client.ShiftStats(ctx)
	if err != nil {
		return nil, err
	}
	lines := []string{
		fmt.Sprintf("Patients attended: %d", sum.Stats.PatientsAttended),
		fmt.Sprintf("Medications administered: %d", sum.Stats.MedicationsAdministered),
		fmt.Sprintf("Vitals recorded: %d", sum.Stats.VitalsRecorded),
		fmt.Sprintf("Notes updated: %d", sum.Stats.NotesUpdated),
	}
	for _, n := range sum.Notes {
		lines = append(lines, "Note: "+n)
	}
	return lines, nil
}

type PatientDashboard struct{ dashboardBase }

func (d *PatientDashboard) Load(ctx context.Context) (*Dashboard, error) {
	return d.load(ctx, models.RolePatient,
		panelSpec{"Upcoming appointments", d.upcoming},
	)
}

func (d *PatientDashboard) upcoming(ctx context.Context) ([]string, error) {
	list, err := d.client.ListAppointments(ctx)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, a := range Upcoming(list) {
		lines = append(lines, fmt.Sprintf("%s %s with %s: %s [%s]", a.Date, a.Time, personName(a.Doctor, a.DoctorID), a.Reason, a.ID))
	}
	if len(lines) == 0 {
		lines = []string{"No upcoming appointments"}
	}
	return lines, nil
}

func personName(u *models.UserSummary, fallback string) string {
	if u != nil && u.Name != "" {
		return u.Name
	}
	return fallback
}
