package services

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/hospivibe/internal/client/client"
	"github.com/dmitrijs2005/hospivibe/internal/client/models"
	"github.com/dmitrijs2005/hospivibe/internal/client/routes"
	"github.com/dmitrijs2005/hospivibe/internal/logging"
)

// ---- fake client ----

type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	// loginGate, when set, blocks Login until it is closed.
	loginGate chan struct{}

	LoginResp *models.AuthResponse
	LoginErr  error

	RegisterResp *models.AuthResponse
	RegisterErr  error

	OnboardingUser *models.User
	OnboardingErr  error

	ProfileUser *models.User
	ProfileErr  error

	Appointments    []models.Appointment
	AppointmentsErr error
	Created         *models.Appointment
	CreateErr       error
	LastCreate      models.NewAppointment
	Updated         *models.Appointment
	UpdateErr       error
	LastUpdateID    string
	LastUpdate      models.AppointmentUpdate

	Users    map[models.Role][]models.User
	UsersErr error

	Patients    []models.PatientRecord
	PatientsErr error
	LastPatient models.PatientRecord
	PatientErr  error
	Shift       *models.ShiftSummary
	ShiftErr    error
}

func newFakeClient() *fakeClient {
	return &fakeClient{calls: make(map[string]int)}
}

func (f *fakeClient) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeClient) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeClient) Login(ctx context.Context, email, password string, role models.Role) (*models.AuthResponse, error) {
	f.hit("login")
	if f.loginGate != nil {
		<-f.loginGate
	}
	return f.LoginResp, f.LoginErr
}

func (f *fakeClient) Register(ctx context.Context, name, email, password string, role models.Role) (*models.AuthResponse, error) {
	f.hit("register")
	return f.RegisterResp, f.RegisterErr
}

func (f *fakeClient) Profile(ctx context.Context) (*models.User, error) {
	f.hit("profile")
	if f.ProfileErr != nil {
		return nil, f.ProfileErr
	}
	return f.ProfileUser, nil
}

func (f *fakeClient) CompleteOnboarding(ctx context.Context) (*models.User, error) {
	f.hit("onboarding")
	return f.OnboardingUser, f.OnboardingErr
}

func (f *fakeClient) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	f.hit("appointments")
	return f.Appointments, f.AppointmentsErr
}

func (f *fakeClient) CreateAppointment(ctx context.Context, a models.NewAppointment) (*models.Appointment, error) {
	f.hit("create_appointment")
	f.LastCreate = a
	return f.Created, f.CreateErr
}

func (f *fakeClient) UpdateAppointment(ctx context.Context, id string, upd models.AppointmentUpdate) (*models.Appointment, error) {
	f.hit("update_appointment")
	f.LastUpdateID, f.LastUpdate = id, upd
	return f.Updated, f.UpdateErr
}

func (f *fakeClient) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	f.hit("users:" + string(role))
	return f.Users[role], f.UsersErr
}

func (f *fakeClient) ListPatients(ctx context.Context) ([]models.PatientRecord, error) {
	f.hit("patients")
	out := make([]models.PatientRecord, len(f.Patients))
	copy(out, f.Patients)
	return out, f.PatientsErr
}

func (f *fakeClient) AddPatient(ctx context.Context, p models.PatientRecord) (*models.PatientRecord, error) {
	f.hit("add_patient")
	f.LastPatient = p
	if f.PatientErr != nil {
		return nil, f.PatientErr
	}
	p.ID = "p-new"
	return &p, nil
}

func (f *fakeClient) UpdatePatient(ctx context.Context, p models.PatientRecord) (*models.PatientRecord, error) {
	f.hit("update_patient")
	f.LastPatient = p
	if f.PatientErr != nil {
		return nil, f.PatientErr
	}
	return &p, nil
}

func (f *fakeClient) ShiftStats(ctx context.Context) (*models.ShiftSummary, error) {
	f.hit("shift")
	return f.Shift, f.ShiftErr
}

func (f *fakeClient) Ping(ctx context.Context) error { return nil }
func (f *fakeClient) Close() error                   { return nil }

// ---- fake store ----

type memStore struct {
	mu       sync.Mutex
	sess     *models.Session
	saves    int
	SaveErr  error
	LoadErr  error
	ClearErr error
	cleared  int
}

func (m *memStore) Save(ctx context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.saves++
	m.sess = s.Clone()
	return nil
}

func (m *memStore) Load(ctx context.Context) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.sess.Clone(), nil
}

func (m *memStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.sess = nil
	return nil
}

func (m *memStore) stored() *models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.Clone()
}

// ---- fixtures ----

type recordingNavigator struct {
	mu     sync.Mutex
	routes []routes.Route
}

func (n *recordingNavigator) Navigate(r routes.Route) {
	n.mu.Lock()
	n.routes = append(n.routes, r)
	n.mu.Unlock()
}

func (n *recordingNavigator) last() routes.Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.routes) == 0 {
		return ""
	}
	return n.routes[len(n.routes)-1]
}

func testLogger() (logging.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil))), &buf
}

var fixedNow = time.Date(2026, time.October, 18, 9, 30, 0, 0, time.UTC)

type harness struct {
	client *fakeClient
	store  *memStore
	nav    *recordingNavigator
	logs   *bytes.Buffer
	auth   *AuthService
}

func newHarness(t *testing.T, opts ...AuthOption) *harness {
	t.Helper()
	h := &harness{client: newFakeClient(), store: &memStore{}, nav: &recordingNavigator{}}
	var log logging.Logger
	log, h.logs = testLogger()
	opts = append([]AuthOption{WithNavigator(h.nav), WithClock(func() time.Time { return fixedNow })}, opts...)
	h.auth = NewAuthService(h.client, h.store, log, opts...)
	return h
}

func user(id string, role models.Role, onboarded bool) *models.User {
	return &models.User{ID: id, Name: "User " + id, Email: id + "@x.com", Role: role, OnboardingComplete: onboarded}
}

// signIn puts the harness into a signed-in state through the public API.
func (h *harness) signIn(t *testing.T, u *models.User, token string) {
	t.Helper()
	h.client.LoginResp = &models.AuthResponse{AccessToken: token, User: u}
	h.client.LoginErr = nil
	if _, err := h.auth.Login(context.Background(), u.Email, "Passw0rd1", u.Role); err != nil {
		t.Fatalf("sign in: %v", err)
	}
}

func unauthorized() error {
	return &client.APIError{Status: 401, Message: "Token has expired"}
}
