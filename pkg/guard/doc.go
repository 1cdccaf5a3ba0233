// Package guard protects HTTP routes based on the current session.
//
// A Guard wraps handlers with three checks:
//
//   - RequireAuth lets authenticated sessions through. Anonymous requests
//     have their URL remembered as the return URL (except "/") and are sent
//     to the login page.
//   - GuestOnly lets anonymous sessions through and sends authenticated
//     ones to the events page. It protects login and registration.
//   - RequireRole lets sessions whose account holds one of the roles
//     through. Anonymous requests go to the login page; others go to the
//     dashboard with error=insufficient-permissions.
//
// Browsers receive 302 redirects. Clients that send Accept: application/json
// receive 401 or 403 with a JSON body naming the redirect target.
//
// Usage:
//
//	g := guard.New(manager, guard.WithReturnURLs(bridge))
//	r.With(g.GuestOnly).Post("/auth/login", login)
//	r.With(g.RequireAuth).Get("/dashboard", dashboard)
//	r.With(g.RequireRole(account.RoleAdmin)).Delete("/events/{id}", deleteEvent)
package guard
