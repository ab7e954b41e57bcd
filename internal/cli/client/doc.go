// Package client provides a RESP client for tinykv-cli.
//
// A Client holds one TCP connection. Requests are encoded as RESP arrays of
// bulk strings and replies are decoded with github.com/tidwall/resp, so the
// client speaks to any Redis-compatible server.
package client
