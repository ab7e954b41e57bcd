// Package logger provides structured logging for tinykv.
//
// It wraps the standard library log/slog:
//
//   - logger.go: handler construction, global level, default logger
//   - redact.go: masking of stored payloads in log attributes
//
// Features:
//
//   - JSON and text output formats
//   - Log level filtering, adjustable at runtime
//   - Stored values never appear in log output
package logger
