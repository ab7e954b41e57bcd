// Package redisserver provides the Redis protocol compatible server for tinykv.
//
// This package implements the RESP2 subset tinykv needs, using only the Go
// standard library for the wire codec:
//
//   - resp.go: frame decoder (arrays of bulk strings) and reply encoder
//   - command.go: command classification, validation and execution
//   - server.go: listener and per-connection command loop
//
// Supported commands: PING, ECHO, SET (with PX/EX), GET.
package redisserver
