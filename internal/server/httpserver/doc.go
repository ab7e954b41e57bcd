// Package httpserver provides the operational HTTP server for tinykv.
//
// The server is optional and only exposes read-only endpoints:
//
//   - GET /health: liveness, build version and key count
//   - GET /metrics: Prometheus exposition
//
// Every request passes through the RequestID, Recover and AccessLog
// middlewares.
package httpserver
