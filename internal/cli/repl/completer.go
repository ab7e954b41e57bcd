package repl

import (
	"sort"
	"strings"
)

// Completer provides command completion for the REPL.
type Completer struct {
	commands map[string]string
}

// NewCompleter creates a new Completer.
func NewCompleter() *Completer {
	return &Completer{
		commands: map[string]string{
			"ping": "PING",
			"echo": "ECHO message",
			"set":  "SET key value [PX milliseconds | EX seconds]",
			"get":  "GET key",
			"help": "help [prefix]",
			"exit": "leave interactive mode",
			"quit": "leave interactive mode",
		},
	}
}

// Complete returns the sorted command names that start with prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	sort.Strings(suggestions)
	return suggestions
}

// Usage returns the usage line for a command name.
func (c *Completer) Usage(name string) string {
	return c.commands[name]
}
