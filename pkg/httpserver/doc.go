// Package httpserver wraps net/http with graceful shutdown, environment
// driven timeouts and health probe handlers.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// Run returns after the context is cancelled or SIGINT/SIGTERM arrives and
// in-flight requests have drained or the shutdown timeout has passed.
package httpserver
