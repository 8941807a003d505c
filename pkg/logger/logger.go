// Package logger builds the structured loggers used throughout cc0. Every
// subsystem receives a *zap.SugaredLogger scoped to its own service name so
// that log lines from the stores, the buffer cache, and the TAC engine can
// be told apart without threading a prefix string through every call site.
package logger

import (
	"go.uber.org/zap"
)

// New builds a production-configured *zap.SugaredLogger tagged with the
// given service name. The returned logger is safe to share across the
// lifetime of a single pipeline instance; callers are responsible for
// calling Sync before process exit.
func New(service string) *zap.SugaredLogger {
	base, err := zap.NewProduction()
	if err != nil {
		// zap.NewProduction only fails on a broken encoder/sink config,
		// which never happens with the default config used here.
		base = zap.NewNop()
	}

	return base.Sugar().With("service", service)
}

// NewDevelopment builds a development-configured logger, with
// human-readable console output and debug-level verbosity. The CLI drivers
// use New, including for their `-debug` sessions.
func NewDevelopment(service string) *zap.SugaredLogger {
	base, err := zap.NewDevelopment()
	if err != nil {
		base = zap.NewNop()
	}

	return base.Sugar().With("service", service)
}

// Nop returns a logger that discards everything, used by tests and by
// components that weren't handed an explicit logger.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
