// Package logger builds *slog.Logger instances from functional options and
// provides attribute helpers that keep key names consistent across packages.
//
// New picks a text or JSON handler, attaches static attributes and wraps the
// result in a decorator that pulls request-scoped values, such as a request
// id, out of context.Context on every record:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "eventhub"),
//		logger.WithContextValue("request_id", ctxKeyRequestID),
//	)
//	log.InfoContext(ctx, "login succeeded",
//		logger.Username("admin"),
//		logger.Expiry(session.Expiry),
//	)
//
// Components that accept an optional logger should default to Discard().
//
// Error and Errors produce empty attributes for nil errors, so they can be
// passed unconditionally:
//
//	log.Warn("storage fault", logger.Error(err))
package logger
