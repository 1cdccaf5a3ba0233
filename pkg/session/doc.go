// Package session implements the client-side session lifecycle: a single
// current Session held in a reactive State, an absolute expiry enforced by
// a single-shot Timer, an activity Monitor that stamps the last interaction
// and a Manager that composes them with durable persistence.
//
// Lifecycle:
//
//	mgr := session.New(accounts,
//		session.WithConfig(cfg),
//		session.WithPersister(bridge),
//		session.WithNavigator(nav),
//		session.WithSignalSource(bus),
//		session.WithLogger(log),
//	)
//	mgr.Start(ctx) // restore, arm the timer, start observing activity
//	defer mgr.Close()
//
//	if err := mgr.Login(ctx, "admin", "admin123"); errors.Is(err, session.ErrInvalidCredential) {
//		// the session is unchanged
//	}
//
// A session lasts Config.Timeout (30 minutes by default) from login or from
// the last explicit Refresh. Activity updates the account's LastActivity
// stamp only; it never extends the expiry. When the timer fires the session
// becomes anonymous, the durable record is cleared and the Navigator is
// asked to show the login surface with ReasonSessionExpired.
//
// Every transition and its persistence write happen under one lock, so the
// durable record always reflects the latest transition.
package session
