// Package command provides CLI command definitions for tinykv-cli.
//
// This package defines all CLI commands using urfave/cli/v2:
//
//   - root.go: App, global flags, raw and interactive modes
//   - kv.go: ping, echo, set and get
//
// Each command dials the server, sends one request and prints the reply
// with the formatter selected by --output.
package command
