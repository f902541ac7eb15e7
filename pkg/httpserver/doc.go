// Package httpserver runs an http.Handler with graceful shutdown.
//
// Run listens, serves and blocks until the context is cancelled, SIGINT or
// SIGTERM arrives, or Shutdown is called; in-flight requests then get the
// shutdown timeout to finish. Header size and header read time are capped by
// default.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//	    log.Error("server failed", logger.Error(err))
//	}
//
// HealthCheckHandler serves liveness ("ALIVE") and readiness ("READY" or
// "NOT_READY") checks from a list of Check functions.
package httpserver
