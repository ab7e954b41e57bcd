// Package repl provides interactive mode for tinykv-cli.
//
//   - repl.go: main loop and line dispatch
//   - split.go: argument splitting with quotes and escapes
//   - completer.go: command name completion used by help
//   - history.go: command history persistence
package repl
