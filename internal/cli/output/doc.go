// Package output provides reply formatting for tinykv-cli.
//
//   - formatter.go: Formatter interface and factory
//   - text.go: redis-cli style text output
//   - json.go: JSON output for scripting
package output
