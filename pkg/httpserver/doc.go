// Package httpserver runs the local HTTP surface with graceful shutdown,
// configurable timeouts, health-check handlers and slog logging.
//
// Run binds the listener before serving, so address errors are reported
// synchronously and Addr is available to start hooks. Request contexts are
// cancelled as soon as shutdown begins, which lets long-lived streaming
// handlers (server-sent events) return instead of holding Shutdown until its
// deadline.
//
// # Usage
//
//	var cfg httpserver.Config
//	config.MustLoad(&cfg)
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	r.Get("/health/live", httpserver.HealthCheckHandler(log))
//	r.Get("/health/ready", httpserver.HealthCheckHandler(log, backend.Healthcheck))
//
//	if err := srv.Run(ctx, r); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// # Errors
//
// Run wraps listen and serve errors with ErrStart, Shutdown wraps shutdown
// errors with ErrShutdown.
package httpserver
