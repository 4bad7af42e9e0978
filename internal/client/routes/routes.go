// Package routes names the screens of the client and decides which one may
// actually be shown for a given authentication status.
package routes

type Route string

const (
	Login      Route = "/login"
	Signup     Route = "/signup"
	Onboarding Route = "/onboarding"
	Dashboard  Route = "/dashboard"
	Schedule   Route = "/schedule"
)

// All lists every known route.
var All = []Route{Login, Signup, Onboarding, Dashboard, Schedule}

func (r Route) String() string {
	return string(r)
}

// Protected reports whether r requires a session.
func (r Route) Protected() bool {
	switch r {
	case Onboarding, Dashboard, Schedule:
		return true
	}
	return false
}

// Landing is where a freshly authenticated user goes.
func Landing(onboarded bool) Route {
	if onboarded {
		return Dashboard
	}
	return Onboarding
}

// Guard returns the route to display when wanted is requested.
//
//   - Login and Signup are always reachable.
//   - Protected routes send unauthenticated users to Login.
//   - Dashboard and Schedule send users who have not onboarded to Onboarding.
//   - Onboarding sends users who already onboarded to Dashboard.
//
// Unknown routes resolve like Dashboard.
func Guard(authenticated, onboarded bool, wanted Route) Route {
	switch wanted {
	case Login, Signup:
		return wanted
	case Onboarding, Dashboard, Schedule:
	default:
		wanted = Dashboard
	}

	if !authenticated {
		return Login
	}
	if wanted == Onboarding {
		if onboarded {
			return Dashboard
		}
		return Onboarding
	}
	if !onboarded {
		return Onboarding
	}
	return wanted
}
