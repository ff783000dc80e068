// Package middlewares provides the HTTP middleware the application stacks
// in front of its handlers.
//
//	app := examdesk.New(
//	    examdesk.WithLogger(logger.New(cfg, middlewares.RequestIDExtractor())),
//	    examdesk.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.Recover(),
//	        middlewares.Timeout(10*time.Second),
//	        middlewares.I18n(bundle),
//	        middlewares.CSRF(),
//	    ),
//	)
//
// RequestID goes first so every later log line carries request_id.
// Recover sits before Timeout to catch panics from the handler goroutine's
// caller. CSRF runs after I18n so its error page is translated.
//
// Recover and Timeout return typed errors (PanicError, TimeoutError) which
// the application's ErrorHandler maps to a response.
package middlewares
