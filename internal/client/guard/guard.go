package guard

import (
	"roadside-rescue/internal/client/session"
)

const (
	PageRoot              = "/"
	PageLogin             = "/login"
	PageRegister          = "/register"
	PageDriverDashboard   = "/driver-dashboard"
	PageMechanicDashboard = "/mechanic-dashboard"
	PageDashboard         = "/dashboard"
)

// maxHops bounds redirect chains. Every chain in the table settles in three.
const maxHops = 8

// Decision is the outcome of checking one page.
type Decision struct {
	Allow    bool
	Redirect string
}

func allow() Decision               { return Decision{Allow: true} }
func redirect(page string) Decision { return Decision{Redirect: page} }

// Guard gates pages on the current session.
type Guard struct {
	session *session.Store
}

func New(store *session.Store) *Guard {
	return &Guard{session: store}
}

// DashboardFor returns the landing page for a role, or "" if the role is
// not recognised.
func DashboardFor(role string) string {
	switch session.NormalizeRole(role) {
	case session.RoleDriver:
		return PageDriverDashboard
	case session.RoleMechanic:
		return PageMechanicDashboard
	}
	return ""
}

// Protected admits a logged-in user, and when requiredRole is set, only
// one holding that role.
func (g *Guard) Protected(path, requiredRole string) Decision {
	if !g.session.LoggedIn() {
		return redirect(PageLogin)
	}
	if requiredRole == "" {
		return allow()
	}

	role := session.NormalizeRole(g.session.Role())
	if role == requiredRole {
		return allow()
	}
	if role == "" {
		g.session.Logout()
		return redirect(PageLogin)
	}
	return redirect(DashboardFor(role))
}

// Public sends authenticated users to their dashboard.
func (g *Guard) Public(path string) Decision {
	if !g.session.LoggedIn() {
		return allow()
	}
	if session.NormalizeRole(g.session.Role()) == session.RoleMechanic {
		return redirect(PageMechanicDashboard)
	}
	return redirect(PageDriverDashboard)
}

// Check applies the route table to a single page.
func (g *Guard) Check(path string) Decision {
	switch path {
	case PageRoot:
		return redirect(PageLogin)
	case PageLogin, PageRegister:
		return g.Public(path)
	case PageDriverDashboard:
		return g.Protected(path, session.RoleDriver)
	case PageMechanicDashboard:
		return g.Protected(path, session.RoleMechanic)
	case PageDashboard:
		if d := g.Protected(path, ""); !d.Allow {
			return d
		}
		if session.NormalizeRole(g.session.Role()) == session.RoleMechanic {
			return redirect(PageMechanicDashboard)
		}
		return redirect(PageDriverDashboard)
	}
	return redirect(PageLogin)
}

// Resolve follows redirects until it reaches a page the session may view.
func (g *Guard) Resolve(path string) string {
	for i := 0; i < maxHops; i++ {
		d := g.Check(path)
		if d.Allow {
			return path
		}
		path = d.Redirect
	}
	return PageLogin
}
