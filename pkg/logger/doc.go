// Package logger provides a thin factory around log/slog plus typed attribute
// helpers for the identifiers used across the alert delivery pipeline.
//
// All components in this module accept a *slog.Logger through functional
// options and fall back to slog.Default(), so the factory is a convenience,
// not a requirement:
//
//	log := logger.New(logger.WithProduction("alertkit"))
//	logger.SetAsDefault(log)
//
// The attribute helpers keep log keys consistent between components:
//
//	log.Info("notification sent",
//	    logger.NotificationID(n.ID),
//	    logger.Channel(n.Channel),
//	    logger.Attempt(n.Attempts),
//	)
package logger
