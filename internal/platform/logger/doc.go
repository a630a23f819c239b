// Package logger provides structured logging for the application.
//
// It builds log/slog loggers with a configurable level and format and
// carries request-scoped loggers through context.Context.
package logger
