package services

import (
	"fmt"

	"github.com/dmitrijs2005/hospivibe/internal/client/client"
	"github.com/dmitrijs2005/hospivibe/internal/client/models"
	"github.com/dmitrijs2005/hospivibe/internal/client/routes"
)

// State is the position of the auth state machine.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticating
	StateNeedsOnboarding
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticating:
		return "authenticating"
	case StateNeedsOnboarding:
		return "needs-onboarding"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// stateFor derives the settled state from a session.
func stateFor(s *models.Session) State {
	switch {
	case !s.Valid():
		return StateUnauthenticated
	case s.User.OnboardingComplete:
		return StateReady
	default:
		return StateNeedsOnboarding
	}
}

// Snapshot is a read-only view of the auth state. User is a copy.
type Snapshot struct {
	State              State
	User               *models.User
	IsAuthenticated    bool
	OnboardingComplete bool
}

// Route resolves wanted through the route guards for this snapshot.
func (s Snapshot) Route(wanted routes.Route) routes.Route {
	return routes.Guard(s.IsAuthenticated, s.OnboardingComplete, wanted)
}

// Role returns the signed-in user's role, or "" without a user.
func (s Snapshot) Role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// Navigator moves the view layer to a route after a transition.
type Navigator interface {
	Navigate(r routes.Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(r routes.Route)

func (f NavigatorFunc) Navigate(r routes.Route) { f(r) }

// Authorize checks that the snapshot may perform action: a session, finished
// onboarding and a role that grants it.
func (s Snapshot) Authorize(action models.Action) error {
	switch {
	case !s.IsAuthenticated:
		return client.ErrAuthRequired
	case !s.OnboardingComplete:
		return ErrOnboardingRequired
	case !s.Role().Can(action):
		return fmt.Errorf("%w: %s", ErrNotPermitted, action)
	}
	return nil
}
