package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/dmitrijs2005/hospivibe/internal/client/models"
	"github.com/dmitrijs2005/hospivibe/internal/common"
	"github.com/dmitrijs2005/hospivibe/internal/logging"
)

const maxErrorBody = 64 << 10

// HTTPClient implements Client over the backend's JSON REST API.
type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	limiter *rate.Limiter
	metrics *Metrics
	log     logging.Logger

	mu     sync.RWMutex
	tokens TokenSource
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

// WithTimeout bounds every request, including reading the response.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

// WithRateLimit applies a client-side token bucket to outgoing requests.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

func WithMetrics(m *Metrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) { c.tokens = ts }
}

// NewHTTPClient builds a client for the API rooted at baseURL,
// e.g. "http://127.0.0.1:5000".
func NewHTTPClient(baseURL string, log logging.Logger, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", baseURL)
	}

	c := &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetTokenSource attaches the session that owns the bearer token. It is set
// after construction because the auth service itself depends on the client.
func (c *HTTPClient) SetTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *HTTPClient) token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.tokens == nil {
		return ""
	}
	return c.tokens.AccessToken()
}

// call describes one request.
type call struct {
	op        string
	method    string
	path      string
	query     url.Values
	body      any
	protected bool
}

// do sends the request and returns the raw 2xx body. Non-2xx responses
// become *APIError; transport failures become ErrUnavailable.
func (c *HTTPClient) do(ctx context.Context, cl call) ([]byte, error) {
	var token string
	if cl.protected {
		token = c.token()
		if token == "" {
			return nil, ErrAuthRequired
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	u := *c.baseURL
	u.Path = u.Path + cl.path
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		b, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", cl.op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", cl.op, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(common.RequestIDHeader, requestID)
	if cl.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerScheme+" "+token)
	}

	log := c.log.With("operation", cl.op, "request_id", requestID)
	start := time.Now()

	resp, err := c.http.Do(req)
	c.observe(cl.op, resp, time.Since(start))
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		log.Warn(ctx, "backend request failed", "error", err)
		return nil, ErrUnavailable
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Warn(ctx, "reading backend response failed", "error", err)
		return nil, ErrUnavailable
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, data)}
		log.Debug(ctx, "backend rejected request", "status", resp.StatusCode, "message", apiErr.Message)
		return nil, apiErr
	}

	log.Debug(ctx, "backend request done", "status", resp.StatusCode)
	return data, nil
}

func (c *HTTPClient) observe(op string, resp *http.Response, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	code := "transport_error"
	if resp != nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	c.metrics.Requests.WithLabelValues(op, code).Inc()
	c.metrics.Duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// errorMessage extracts {error} or {message} from a failure body.
func errorMessage(status int, data []byte) string {
	if len(data) > maxErrorBody {
		data = data[:maxErrorBody]
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("request failed with status %d", status)
}

func decode[T any](op string, data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("decode %s response: %w", op, err)
	}
	return v, nil
}

// decodeEntity handles endpoints that answer either with the entity itself,
// with {key: entity, ...}, or with a bare {message}. The last case yields nil.
func decodeEntity[T any](op, key string, data []byte) (*T, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", op, err)
	}

	raw := json.RawMessage(data)
	if nested, ok := fields[key]; ok {
		raw = nested
	} else if _, hasID := fields["id"]; !hasID {
		if _, hasMongoID := fields["_id"]; !hasMongoID {
			return nil, nil
		}
	}

	v, err := decode[T](op, raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (c *HTTPClient) authenticate(ctx context.Context, op, path string, body any) (*models.AuthResponse, error) {
	data, err := c.do(ctx, call{op: op, method: http.MethodPost, path: path, body: body})
	if err != nil {
		return nil, err
	}
	resp, err := decode[models.AuthResponse](op, data)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" || resp.User == nil {
		return nil, fmt.Errorf("decode %s response: missing user or access token", op)
	}
	return &resp, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string, role models.Role) (*models.AuthResponse, error) {
	return c.authenticate(ctx, "login", "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
		"role":     string(role),
	})
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string, role models.Role) (*models.AuthResponse, error) {
	return c.authenticate(ctx, "register", "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"role":     string(role),
	})
}

func (c *HTTPClient) CompleteOnboarding(ctx context.Context) (*models.User, error) {
	data, err := c.do(ctx, call{op: "complete_onboarding", method: http.MethodPost, path: "/api/user/onboarding", protected: true})
	if err != nil {
		return nil, err
	}
	return decodeEntity[models.User]("complete_onboarding", "user", data)
}

func (c *HTTPClient) Profile(ctx context.Context) (*models.User, error) {
	data, err := c.do(ctx, call{op: "profile", method: http.MethodGet, path: "/api/user/profile", protected: true})
	if err != nil {
		return nil, err
	}
	u, err := decodeEntity[models.User]("profile", "user", data)
	if err != nil {
		return nil, err
	}
	if u == nil || u.ID == "" {
		return nil, fmt.Errorf("decode profile response: missing user")
	}
	return u, nil
}

func (c *HTTPClient) ListAppointments(ctx context.Context) ([]models.Appointment, error) {
	data, err := c.do(ctx, call{op: "list_appointments", method: http.MethodGet, path: "/api/appointments", protected: true})
	if err != nil {
		return nil, err
	}
	return decode[[]models.Appointment]("list_appointments", data)
}

func (c *HTTPClient) CreateAppointment(ctx context.Context, a models.NewAppointment) (*models.Appointment, error) {
	data, err := c.do(ctx, call{op: "create_appointment", method: http.MethodPost, path: "/api/appointments", body: a, protected: true})
	if err != nil {
		return nil, err
	}
	return decodeEntity[models.Appointment]("create_appointment", "appointment", data)
}

func (c *HTTPClient) UpdateAppointment(ctx context.Context, id string, upd models.AppointmentUpdate) (*models.Appointment, error) {
	data, err := c.do(ctx, call{op: "update_appointment", method: http.MethodPut, path: "/api/appointments/" + id, body: upd, protected: true})
	if err != nil {
		return nil, err
	}
	return decodeEntity[models.Appointment]("update_appointment", "appointment", data)
}

func (c *HTTPClient) ListUsers(ctx context.Context, role models.Role) ([]models.User, error) {
	data, err := c.do(ctx, call{op: "list_users", method: http.MethodGet, path: "/api/users", query: url.Values{"role": {string(role)}}, protected: true})
	if err != nil {
		return nil, err
	}
	return decode[[]models.User]("list_users", data)
}

func (c *HTTPClient) ListPatients(ctx context.Context) ([]models.PatientRecord, error) {
	data, err := c.do(ctx, call{op: "list_patients", method: http.MethodGet, path: "/api/nurse/patients", protected: true})
	if err != nil {
		return nil, err
	}
	return decode[[]models.PatientRecord]("list_patients", data)
}

func (c *HTTPClient) AddPatient(ctx context.Context, p models.PatientRecord) (*models.PatientRecord, error) {
	p.ID = ""
	data, err := c.do(ctx, call{op: "add_patient", method: http.MethodPost, path: "/api/nurse/patients", body: p, protected: true})
	if err != nil {
		return nil, err
	}
	return decodeEntity[models.PatientRecord]("add_patient", "patient", data)
}

func (c *HTTPClient) UpdatePatient(ctx context.Context, p models.PatientRecord) (*models.PatientRecord, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("update patient: empty id")
	}
	data, err := c.do(ctx, call{op: "update_patient", method: http.MethodPut, path: "/api/nurse/patients/" + p.ID, body: p, protected: true})
	if err != nil {
		return nil, err
	}
	return decodeEntity[models.PatientRecord]("update_patient", "patient", data)
}

func (c *HTTPClient) ShiftStats(ctx context.Context) (*models.ShiftSummary, error) {
	data, err := c.do(ctx, call{op: "shift_stats", method: http.MethodGet, path: "/api/nurse/shift-stats", protected: true})
	if err != nil {
		return nil, err
	}
	s, err := decode[models.ShiftSummary]("shift_stats", data)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Ping reports whether the backend answers HTTP at all. Any response below
// 500 counts as reachable since the API has no health route.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.String()+"/", nil)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	start := time.Now()
	resp, err := c.http.Do(req)
	c.observe("ping", resp, time.Since(start))
	if err != nil {
		return ErrUnavailable
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return ErrUnavailable
	}
	return nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
