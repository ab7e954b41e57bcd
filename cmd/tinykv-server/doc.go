// Package main provides the entry point for tinykv-server.
//
// The server provides:
//
//   - A Redis-compatible RESP endpoint (PING, ECHO, SET, GET)
//   - An optional HTTP endpoint with /health and Prometheus /metrics
//   - Log level hot reload when the config file changes
//
// Usage:
//
//	tinykv-server [flags]
//	tinykv-server -config /path/to/config.yaml
//	tinykv-server -addr 0.0.0.0:6380
//
// Configuration sources, lowest priority first: defaults, the config file,
// a .env file in the working directory, TINYKV_* environment variables and
// the -addr flag.
package main
