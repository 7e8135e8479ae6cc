package repl

import "strings"

// Completer suggests commands for a typed prefix.
type Completer struct {
	commands []string
}

// NewCompleter returns a Completer over the REPL's command set.
func NewCompleter() *Completer {
	return &Completer{
		commands: []string{
			"begin",
			"get",
			"insert",
			"commit",
			"discard",
			"snapshot get",
			"version",
			"stats",
			"help",
			"exit", "quit",
		},
	}
}

// Complete returns the commands starting with prefix.
func (c *Completer) Complete(prefix string) []string {
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
