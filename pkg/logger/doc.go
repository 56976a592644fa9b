// Package logger builds log/slog loggers.
//
// New returns a logger whose handler is wrapped by LogHandlerDecorator, which
// adds attributes pulled from the context of every *Context call. Packages
// that own request-scoped values expose a LoggerExtractor:
//
//	log := logger.New(
//		logger.WithEnvironment(environment.Production, "mango"),
//		logger.WithConfig(cfg),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			session.LoggerExtractor(),
//		),
//	)
//
// The attribute helpers (Error, UserID, Component, Event, ...) keep key names
// uniform across packages.
package logger
