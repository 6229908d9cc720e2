// Package gate decides which view may render for a given session state.
package gate

import "icc-assistant/internal/session"

// Route is the view the client should present next
type Route int

const (
	// RouteLoading shows a neutral wait while the boot verify runs.
	// Deciding here would flash the login view before the verify lands.
	RouteLoading Route = iota
	// RouteLogin is the entry view for unauthenticated sessions
	RouteLogin
	// RouteChat is the protected question/answer view
	RouteChat
)

func (r Route) String() string {
	switch r {
	case RouteLoading:
		return "loading"
	case RouteChat:
		return "chat"
	default:
		return "login"
	}
}

// Decide maps session state to a route. Callers re-evaluate after every
// session change so a mid-session expiry redirects immediately.
func Decide(snap session.Snapshot) Route {
	if snap.Loading() {
		return RouteLoading
	}
	if snap.Authenticated() {
		return RouteChat
	}
	return RouteLogin
}
