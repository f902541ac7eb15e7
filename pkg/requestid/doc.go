// Package requestid tags every HTTP request with a correlation id.
//
// Middleware keeps a client supplied X-Request-ID when it is 1 to 128 ASCII
// letters, digits, dashes or underscores and replaces anything else with a
// fresh UUID. The id is echoed in the response header and stored in the
// request context, where FromContext and LoggerExtractor find it:
//
//	log := logger.New(logger.WithContextExtractors(requestid.LoggerExtractor()))
//	r := chi.NewRouter()
//	r.Use(requestid.Middleware)
package requestid
