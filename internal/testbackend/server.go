// Package testbackend is an in-memory implementation of the HospiVibe REST
// API used by the client's tests. It follows the real backend's routes,
// status codes and error messages closely enough to exercise the client end
// to end through httptest.
package testbackend

import (
	"net/http"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/hospivibe/internal/client/models"
	"github.com/dmitrijs2005/hospivibe/internal/common"
)

const (
	ctxUserKey = "user"
	tokenTTL   = 30 * time.Minute
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	hasDigit     = regexp.MustCompile(`\d`)
	hasLetter    = regexp.MustCompile(`[a-zA-Z]`)
)

type account struct {
	models.User
	passwordHash []byte
}

type fault struct {
	status  int
	message string
}

// Server holds the fake backend state. All methods are safe for concurrent
// use.
type Server struct {
	e      *echo.Echo
	secret []byte
	now    func() time.Time

	mu           sync.Mutex
	accounts     map[string]*account
	byEmail      map[string]string
	appointments map[string]*models.Appointment
	patients     map[string]*models.PatientRecord
	shift        models.ShiftSummary
	faults       map[string][]fault
	calls        map[string]int
}

type Option func(*Server)

// WithClock overrides the time source used for tokens and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

func New(opts ...Option) *Server {
	s := &Server{
		e:            echo.New(),
		secret:       []byte("test-backend-secret"),
		now:          time.Now,
		accounts:     map[string]*account{},
		byEmail:      map[string]string{},
		appointments: map[string]*models.Appointment{},
		patients:     map[string]*models.PatientRecord{},
		faults:       map[string][]fault{},
		calls:        map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}

	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Use(s.track)

	s.e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	api := s.e.Group("/api")
	api.POST("/auth/register", s.register)
	api.POST("/auth/login", s.login)

	auth := s.authenticate
	api.GET("/user/profile", s.profile, auth)
	api.POST("/user/onboarding", s.completeOnboarding, auth)
	api.GET("/users", s.listUsers, auth)
	api.GET("/appointments", s.listAppointments, auth)
	api.POST("/appointments", s.createAppointment, auth)
	api.PUT("/appointments/:id", s.updateAppointment, auth)

	nurseOnly := s.requireRole(models.RoleNurse, "Only nurses can access patient records")
	api.GET("/nurse/patients", s.listPatients, auth, nurseOnly)
	api.POST("/nurse/patients", s.addPatient, auth, nurseOnly)
	api.PUT("/nurse/patients/:id", s.updatePatient, auth, nurseOnly)
	api.GET("/nurse/shift-stats", s.shiftStats, auth, nurseOnly)

	return s
}

// Handler returns the HTTP handler to mount in an httptest.Server.
func (s *Server) Handler() http.Handler {
	return s.e
}

// FailNext makes the next request to method+path (an echo route such as
// "/api/appointments/:id") answer with status and {"error": message}.
// Calls queue up.
func (s *Server) FailNext(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.faults[key] = append(s.faults[key], fault{status: status, message: message})
}

// Calls returns how many requests reached method+path.
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+path]
}

// SeedUser creates an account directly and returns it.
func (s *Server) SeedUser(name, email, password string, role models.Role, onboarded bool) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a := &account{
		User:         models.User{ID: uuid.NewString(), Name: name, Email: email, Role: role, OnboardingComplete: onboarded},
		passwordHash: hash,
	}
	s.accounts[a.ID] = a
	s.byEmail[email] = a.ID
	return a.User
}

// User returns the stored account for id.
func (s *Server) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.User{}, false
	}
	return a.User, true
}

// SetOnboarded changes the stored onboarding flag of an existing account.
func (s *Server) SetOnboarded(id string, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[id]; ok {
		a.OnboardingComplete = done
	}
}

// TokenFor issues a valid access token for an existing user id.
func (s *Server) TokenFor(userID string) string {
	u, ok := s.User(userID)
	if !ok {
		return ""
	}
	tok, err := GenerateToken(u.ID, string(u.Role), s.secret, s.now(), tokenTTL)
	if err != nil {
		panic(err)
	}
	return tok
}

// SetShiftNotes replaces the handover notes returned by shift-stats.
func (s *Server) SetShiftNotes(notes ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shift.Notes = append([]string(nil), notes...)
}

func errorJSON(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

func (s *Server) track(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := c.Request().Method + " " + c.Path()

		s.mu.Lock()
		s.calls[key]++
		var f *fault
		if queued := s.faults[key]; len(queued) > 0 {
			f = &queued[0]
			s.faults[key] = queued[1:]
		}
		s.mu.Unlock()

		if f != nil {
			return errorJSON(c, f.status, f.message)
		}
		return next(c)
	}
}

func (s *Server) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, err := common.BearerToken(c.Request().Header.Get(common.AuthorizationHeader))
		if err != nil {
			return errorJSON(c, http.StatusUnauthorized, "Invalid token")
		}
		userID, err := UserIDFromToken(token, s.secret, s.now())
		if err != nil {
			return errorJSON(c, http.StatusUnauthorized, "Invalid token")
		}
		u, ok := s.User(userID)
		if !ok {
			return errorJSON(c, http.StatusNotFound, "User not found")
		}
		c.Set(ctxUserKey, u)
		return next(c)
	}
}

func (s *Server) requireRole(role models.Role, message string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if currentUser(c).Role != role {
				return errorJSON(c, http.StatusForbidden, message)
			}
			return next(c)
		}
	}
}

func currentUser(c echo.Context) models.User {
	u, _ := c.Get(ctxUserKey).(models.User)
	return u
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" || req.Role == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing required fields")
	}
	if !emailPattern.MatchString(req.Email) {
		return errorJSON(c, http.StatusBadRequest, "Invalid email format")
	}
	if len(req.Password) < 8 || !hasDigit.MatchString(req.Password) || !hasLetter.MatchString(req.Password) {
		return errorJSON(c, http.StatusBadRequest, "Password must be at least 8 characters long and contain at least one number and one letter")
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid role")
	}

	s.mu.Lock()
	_, exists := s.byEmail[req.Email]
	s.mu.Unlock()
	if exists {
		return errorJSON(c, http.StatusBadRequest, "Email already registered")
	}

	u := s.SeedUser(req.Name, req.Email, req.Password, role, false)
	token, err := GenerateToken(u.ID, string(u.Role), s.secret, s.now(), tokenTTL)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"message":      "User registered successfully",
		"access_token": token,
		"token_type":   "bearer",
		"user": map[string]any{
			"id":    u.ID,
			"name":  u.Name,
			"email": u.Email,
			"role":  u.Role,
		},
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing required fields")
	}

	s.mu.Lock()
	var a *account
	if id, ok := s.byEmail[req.Email]; ok {
		cp := *s.accounts[id]
		a = &cp
	}
	s.mu.Unlock()

	if a == nil || bcrypt.CompareHashAndPassword(a.passwordHash, []byte(req.Password)) != nil {
		return errorJSON(c, http.StatusUnauthorized, "Invalid credentials")
	}

	token, err := GenerateToken(a.ID, string(a.Role), s.secret, s.now(), tokenTTL)
	if err != nil {
		return errorJSON(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"user":         a.User,
	})
}

func (s *Server) profile(c echo.Context) error {
	u := currentUser(c)
	return c.JSON(http.StatusOK, map[string]any{
		"_id":                 u.ID,
		"name":                u.Name,
		"email":               u.Email,
		"role":                u.Role,
		"onboarding_complete": u.OnboardingComplete,
	})
}

// completeOnboarding answers 404 when nothing changes, as the real backend
// does for an account that is already onboarded.
func (s *Server) completeOnboarding(c echo.Context) error {
	u := currentUser(c)

	s.mu.Lock()
	a := s.accounts[u.ID]
	already := a.OnboardingComplete
	a.OnboardingComplete = true
	s.mu.Unlock()

	if already {
		return errorJSON(c, http.StatusNotFound, "User not found")
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Onboarding completed successfully"})
}

func (s *Server) listUsers(c echo.Context) error {
	role := c.QueryParam("role")
	if role == "" {
		return errorJSON(c, http.StatusBadRequest, "Role parameter is required")
	}

	s.mu.Lock()
	out := make([]map[string]any, 0)
	for _, a := range s.accounts {
		if string(a.Role) != role {
			continue
		}
		out = append(out, map[string]any{
			"_id":                 a.ID,
			"name":                a.Name,
			"email":               a.Email,
			"role":                a.Role,
			"onboarding_complete": a.OnboardingComplete,
		})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i]["name"].(string) < out[j]["name"].(string) })
	return c.JSON(http.StatusOK, out)
}

func (s *Server) summary(id string) *models.UserSummary {
	a, ok := s.accounts[id]
	if !ok {
		return nil
	}
	return &models.UserSummary{ID: a.ID, Name: a.Name, Email: a.Email}
}

func (s *Server) listAppointments(c echo.Context) error {
	u := currentUser(c)

	s.mu.Lock()
	out := make([]map[string]any, 0)
	for _, a := range s.appointments {
		if u.Role == models.RolePatient && a.PatientID != u.ID {
			continue
		}
		if u.Role == models.RoleDoctor && a.DoctorID != u.ID {
			continue
		}
		out = append(out, map[string]any{
			"_id":          a.ID,
			"patient_id":   a.PatientID,
			"doctor_id":    a.DoctorID,
			"patient":      s.summary(a.PatientID),
			"doctor":       s.summary(a.DoctorID),
			"date":         a.Date,
			"time":         a.Time,
			"reason":       a.Reason,
			"status":       a.Status,
			"doctor_notes": a.DoctorNotes,
			"created_at":   a.CreatedAt,
		})
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		ki := out[i]["date"].(string) + out[i]["time"].(string)
		kj := out[j]["date"].(string) + out[j]["time"].(string)
		return ki < kj
	})
	return c.JSON(http.StatusOK, out)
}

func (s *Server) createAppointment(c echo.Context) error {
	u := currentUser(c)
	if u.Role != models.RolePatient {
		return errorJSON(c, http.StatusForbidden, "Only patients can schedule appointments")
	}

	var req models.NewAppointment
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.DoctorID == "" || req.Date == "" || req.Time == "" || req.Reason == "" {
		return errorJSON(c, http.StatusBadRequest, "Missing required fields")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.accounts[req.DoctorID]
	if !ok || doc.Role != models.RoleDoctor {
		return errorJSON(c, http.StatusNotFound, "Doctor not found")
	}
	for _, a := range s.appointments {
		if a.DoctorID == req.DoctorID && a.Date == req.Date && a.Time == req.Time && a.Status != models.StatusCancelled {
			return errorJSON(c, http.StatusConflict, "This time slot is already booked")
		}
	}

	created := s.now().UTC()
	a := &models.Appointment{
		ID:        uuid.NewString(),
		PatientID: u.ID,
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Time:      req.Time,
		Reason:    req.Reason,
		Status:    models.StatusScheduled,
		CreatedAt: &created,
	}
	s.appointments[a.ID] = a

	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Appointment scheduled successfully",
		"appointment": map[string]any{
			"id":         a.ID,
			"patient_id": a.PatientID,
			"doctor_id":  a.DoctorID,
			"date":       a.Date,
			"time":       a.Time,
			"reason":     a.Reason,
			"status":     a.Status,
		},
	})
}

type appointmentUpdateRequest struct {
	Status      *string `json:"status"`
	DoctorNotes *string `json:"doctor_notes"`
}

func (s *Server) updateAppointment(c echo.Context) error {
	u := currentUser(c)

	var req appointmentUpdateRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Status == nil && req.DoctorNotes == nil {
		return errorJSON(c, http.StatusBadRequest, "No fields to update provided")
	}
	if req.Status != nil && !models.AppointmentStatus(*req.Status).Valid() {
		return errorJSON(c, http.StatusBadRequest, "Invalid status")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.appointments[c.Param("id")]
	if !ok {
		return errorJSON(c, http.StatusNotFound, "Appointment not found")
	}

	switch u.Role {
	case models.RoleDoctor:
		if a.DoctorID != u.ID {
			return errorJSON(c, http.StatusForbidden, "Unauthorized")
		}
	case models.RolePatient:
		if a.PatientID != u.ID {
			return errorJSON(c, http.StatusForbidden, "Unauthorized")
		}
		if req.DoctorNotes != nil {
			return errorJSON(c, http.StatusForbidden, "Patients cannot add doctor notes")
		}
	}

	if req.Status != nil {
		a.Status = models.AppointmentStatus(*req.Status)
	}
	if req.DoctorNotes != nil {
		a.DoctorNotes = *req.DoctorNotes
	}

	return c.JSON(http.StatusOK, map[string]string{"message": "Appointment updated successfully"})
}

func (s *Server) listPatients(c echo.Context) error {
	s.mu.Lock()
	out := make([]models.PatientRecord, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, *p)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Room < out[j].Room })
	return c.JSON(http.StatusOK, out)
}

func validPatient(p models.PatientRecord) string {
	if p.Name == "" || p.Room == "" || p.Status == "" || p.Priority == "" {
		return "Missing required fields"
	}
	return ""
}

func (s *Server) addPatient(c echo.Context) error {
	var p models.PatientRecord
	if err := c.Bind(&p); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if msg := validPatient(p); msg != "" {
		return errorJSON(c, http.StatusBadRequest, msg)
	}

	p.ID = uuid.NewString()

	s.mu.Lock()
	s.patients[p.ID] = &p
	s.shift.Stats.PatientsAttended++
	s.mu.Unlock()

	return c.JSON(http.StatusCreated, p)
}

func (s *Server) updatePatient(c echo.Context) error {
	var p models.PatientRecord
	if err := c.Bind(&p); err != nil {
		return errorJSON(c, http.StatusBadRequest, "Invalid request body")
	}
	if msg := validPatient(p); msg != "" {
		return errorJSON(c, http.StatusBadRequest, msg)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	existing, ok := s.patients[id]
	if !ok {
		return errorJSON(c, http.StatusNotFound, "Patient not found")
	}
	if existing.Notes != p.Notes {
		s.shift.Stats.NotesUpdated++
	}
	p.ID = id
	s.patients[id] = &p

	return c.JSON(http.StatusOK, p)
}

func (s *Server) shiftStats(c echo.Context) error {
	s.mu.Lock()
	summary := s.shift
	summary.Notes = append([]string{}, s.shift.Notes...)
	s.mu.Unlock()

	return c.JSON(http.StatusOK, summary)
}
