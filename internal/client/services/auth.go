// Package services holds the client's application services: the auth state
// machine, the per-role dashboard providers, and the appointment, nurse and
// onboarding services the CLI drives.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/hospivibe/internal/client/client"
	"github.com/dmitrijs2005/hospivibe/internal/client/models"
	"github.com/dmitrijs2005/hospivibe/internal/client/routes"
	"github.com/dmitrijs2005/hospivibe/internal/client/session"
	"github.com/dmitrijs2005/hospivibe/internal/logging"
)

// AuthService is the session state machine.
//
// Contract:
//   - Restore: load the persisted session once at startup.
//   - Login / Signup: authenticate against the backend, persist the session.
//   - CompleteOnboarding: mark the signed-in user as onboarded.
//   - Refresh: reconcile the session user with the backend profile.
//   - Logout / Invalidate: drop the session locally and in the store.
//   - Snapshot / Subscribe / AccessToken: read access for the view layer and
//     the backend client.
//
// Login, Signup, CompleteOnboarding and Refresh never overlap; a second
// call while one is running fails with ErrOperationInProgress. A Logout
// while one of them is in flight wins: its result is dropped.
type AuthService struct {
	client client.Client
	store  session.Store
	log    logging.Logger

	nav                  Navigator
	now                  func() time.Time
	logoutOnUnauthorized bool

	mu      sync.Mutex
	state   State
	sess    *models.Session
	busy    bool
	// gen is bumped by every Logout so in-flight operations can tell that
	// the session they started from is gone.
	gen     uint64
	subs    map[int]func(Snapshot)
	nextSub int
}

type AuthOption func(*AuthService)

func WithNavigator(n Navigator) AuthOption {
	return func(a *AuthService) { a.nav = n }
}

// WithLogoutOnUnauthorized controls whether a 401 on a protected call ends
// the session. It is on by default.
func WithLogoutOnUnauthorized(on bool) AuthOption {
	return func(a *AuthService) { a.logoutOnUnauthorized = on }
}

func WithClock(now func() time.Time) AuthOption {
	return func(a *AuthService) { a.now = now }
}

// NewAuthService builds the state machine in StateUnauthenticated. Call
// Restore to pick up a persisted session.
func NewAuthService(c client.Client, store session.Store, log logging.Logger, opts ...AuthOption) *AuthService {
	a := &AuthService{
		client:               c,
		store:                store,
		log:                  log,
		now:                  time.Now,
		logoutOnUnauthorized: true,
		state:                StateUnauthenticated,
		subs:                 make(map[int]func(Snapshot)),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Restore reads the persisted session. A half-written or unreadable session
// is removed and treated as absent.
func (a *AuthService) Restore(ctx context.Context) error {
	sess, err := a.store.Load(ctx)
	if errors.Is(err, session.ErrIncomplete) || errors.Is(err, session.ErrCorrupt) {
		a.log.Warn(ctx, "discarding unusable stored session", "error", err)
		if cerr := a.store.Clear(ctx); cerr != nil {
			return fmt.Errorf("clear stored session: %w", cerr)
		}
		sess = nil
	} else if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	if sess != nil && session.Expired(sess.Token, a.now()) {
		a.log.Warn(ctx, "restored session token has expired", "user_id", sess.User.ID)
	}

	a.mu.Lock()
	a.sess = sess
	a.state = stateFor(sess)
	a.mu.Unlock()

	if sess != nil {
		a.log.Info(ctx, "session restored", "user_id", sess.User.ID, "role", sess.User.Role)
	}
	a.notify()
	return nil
}

// Login authenticates an existing account. On failure the previous state
// and session are kept and the backend error is returned unchanged.
func (a *AuthService) Login(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	gen, err := a.begin(StateAuthenticating)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Login(ctx, email, password, role)
	if err != nil {
		a.abort()
		return nil, err
	}
	return a.establish(ctx, resp, false, gen)
}

// Signup creates an account and signs it in. New accounts always need
// onboarding.
func (a *AuthService) Signup(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	gen, err := a.begin(StateAuthenticating)
	if err != nil {
		return nil, err
	}

	resp, err := a.client.Register(ctx, name, email, password, role)
	if err != nil {
		a.abort()
		return nil, err
	}
	return a.establish(ctx, resp, true, gen)
}

// CompleteOnboarding marks the signed-in user as onboarded. It is a no-op
// once onboarding is done and fails with client.ErrAuthRequired without a
// session.
func (a *AuthService) CompleteOnboarding(ctx context.Context) error {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return ErrOperationInProgress
	}
	switch a.state {
	case StateReady:
		a.mu.Unlock()
		return nil
	case StateNeedsOnboarding:
	default:
		a.mu.Unlock()
		return client.ErrAuthRequired
	}
	a.busy = true
	gen := a.gen
	a.mu.Unlock()

	updated, err := a.client.CompleteOnboarding(ctx)
	if err != nil {
		a.release()
		return a.HandleError(ctx, err)
	}

	a.mu.Lock()
	if a.gen != gen || a.sess == nil {
		a.busy = false
		a.mu.Unlock()
		return client.ErrAuthRequired
	}
	next := a.sess.Clone()
	if updated != nil && updated.ID == next.User.ID {
		*next.User = *updated
	}
	next.User.OnboardingComplete = true
	a.mu.Unlock()

	if err := a.store.Save(ctx, next); err != nil {
		a.release()
		return fmt.Errorf("persist session: %w", err)
	}

	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		return a.discardStale(ctx)
	}
	a.sess = next
	a.state = StateReady
	a.busy = false
	a.mu.Unlock()

	a.log.Info(ctx, "onboarding completed", "user_id", next.User.ID)
	a.notify()
	a.navigate(routes.Dashboard)
	return nil
}

// Logout drops the session from memory and from the store. It works from
// any state; a store failure is returned after memory is cleared.
func (a *AuthService) Logout(ctx context.Context) error {
	a.mu.Lock()
	a.sess = nil
	a.state = StateUnauthenticated
	a.gen++
	a.mu.Unlock()

	err := a.store.Clear(ctx)
	a.notify()
	a.navigate(routes.Login)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Refresh fetches the signed-in user's profile and adopts it, so a flag
// changed elsewhere (onboarding finished on another device) is picked up.
// On failure the session is left as it was; a 401 goes through HandleError.
func (a *AuthService) Refresh(ctx context.Context) error {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return ErrOperationInProgress
	}
	if a.sess == nil {
		a.mu.Unlock()
		return client.ErrAuthRequired
	}
	a.busy = true
	gen := a.gen
	current := a.sess.Clone()
	a.mu.Unlock()

	u, err := a.client.Profile(ctx)
	if err != nil {
		a.release()
		a.log.Warn(ctx, "profile refresh failed", "error", err)
		return a.HandleError(ctx, err)
	}
	if u.ID != current.User.ID || !u.Role.Valid() {
		a.release()
		a.log.Warn(ctx, "profile refresh returned an unexpected user", "user_id", u.ID, "role", u.Role)
		return ErrMalformedResponse
	}
	if *u == *current.User {
		a.release()
		return nil
	}

	next := current.Clone()
	*next.User = *u
	if err := a.store.Save(ctx, next); err != nil {
		a.release()
		a.log.Warn(ctx, "profile refresh not persisted", "error", err)
		return fmt.Errorf("persist session: %w", err)
	}

	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		return a.discardStale(ctx)
	}
	prev := a.state
	a.sess = next
	a.state = stateFor(next)
	a.busy = false
	changed := a.state != prev
	a.mu.Unlock()

	a.log.Info(ctx, "profile refreshed", "user_id", u.ID, "onboarded", u.OnboardingComplete)
	a.notify()
	if changed {
		a.navigate(routes.Landing(u.OnboardingComplete))
	}
	return nil
}

// Invalidate ends the session because the backend rejected it.
func (a *AuthService) Invalidate(ctx context.Context, cause error) {
	a.log.Warn(ctx, "session rejected by server, signing out", "cause", cause)
	if err := a.Logout(ctx); err != nil {
		a.log.Error(ctx, "failed to clear rejected session", "error", err)
	}
}

// HandleError inspects an error from a protected call and invalidates the
// session on 401 when configured to. err is returned unchanged.
func (a *AuthService) HandleError(ctx context.Context, err error) error {
	if err != nil && a.logoutOnUnauthorized && errors.Is(err, client.ErrUnauthorized) {
		a.Invalidate(ctx, err)
	}
	return err
}

func (a *AuthService) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

func (a *AuthService) snapshotLocked() Snapshot {
	s := Snapshot{
		State:           a.state,
		IsAuthenticated: a.state == StateNeedsOnboarding || a.state == StateReady,
	}
	if a.sess != nil && a.sess.User != nil {
		u := *a.sess.User
		s.User = &u
		s.OnboardingComplete = u.OnboardingComplete
	}
	return s
}

// Subscribe registers fn to receive a snapshot after every transition and
// returns a function that removes it.
func (a *AuthService) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subs[id] = fn
	a.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.subs, id)
			a.mu.Unlock()
		})
	}
}

// AccessToken implements client.TokenSource.
func (a *AuthService) AccessToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sess == nil {
		return ""
	}
	return a.sess.Token
}

// begin claims the service for one operation and returns the session
// generation it started from.
func (a *AuthService) begin(to State) (uint64, error) {
	a.mu.Lock()
	if a.busy {
		a.mu.Unlock()
		return 0, ErrOperationInProgress
	}
	a.busy = true
	a.state = to
	gen := a.gen
	a.mu.Unlock()

	a.notify()
	return gen, nil
}

// abort ends a failed Login or Signup, settling on whatever session is
// current (untouched, or nil after a concurrent Logout).
func (a *AuthService) abort() {
	a.mu.Lock()
	a.busy = false
	a.state = stateFor(a.sess)
	a.mu.Unlock()

	a.notify()
}

func (a *AuthService) release() {
	a.mu.Lock()
	a.busy = false
	a.mu.Unlock()
}

// discardStale ends an operation whose result was saved after a Logout
// and removes that result from the store again.
func (a *AuthService) discardStale(ctx context.Context) error {
	a.mu.Lock()
	a.busy = false
	a.state = stateFor(a.sess)
	a.mu.Unlock()

	if err := a.store.Clear(ctx); err != nil {
		a.log.Error(ctx, "failed to clear session saved after logout", "error", err)
	}
	a.notify()
	return client.ErrAuthRequired
}

func (a *AuthService) generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gen
}

func (a *AuthService) establish(ctx context.Context, resp *models.AuthResponse, fresh bool, gen uint64) (*models.User, error) {
	if resp == nil || resp.User == nil || resp.AccessToken == "" || !resp.User.Role.Valid() {
		a.abort()
		return nil, ErrMalformedResponse
	}
	if a.generation() != gen {
		a.abort()
		return nil, client.ErrAuthRequired
	}

	u := *resp.User
	if fresh {
		u.OnboardingComplete = false
	}
	next := &models.Session{User: &u, Token: resp.AccessToken}

	if err := a.store.Save(ctx, next); err != nil {
		a.abort()
		return nil, fmt.Errorf("persist session: %w", err)
	}

	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		return nil, a.discardStale(ctx)
	}
	a.sess = next
	a.state = stateFor(next)
	a.busy = false
	a.mu.Unlock()

	a.log.Info(ctx, "signed in", "user_id", u.ID, "role", u.Role, "onboarded", u.OnboardingComplete)
	a.notify()
	a.navigate(routes.Landing(u.OnboardingComplete))

	out := u
	return &out, nil
}

func (a *AuthService) notify() {
	a.mu.Lock()
	snap := a.snapshotLocked()
	fns := make([]func(Snapshot), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (a *AuthService) navigate(r routes.Route) {
	if a.nav != nil {
		a.nav.Navigate(r)
	}
}
