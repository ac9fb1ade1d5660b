// Package httpserver wraps net/http with graceful shutdown and environment
// configuration for the alert API.
//
// Run blocks until the context is cancelled or an interrupt/TERM signal
// arrives, then drains in-flight requests within the shutdown timeout. The
// write timeout defaults to zero because the dispatch module streams alerts
// over long-lived SSE connections.
//
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
package httpserver
