package security

import (
	"strings"
)

// ShellCommandAnalyzer finds shell constructs the blacklist cannot see into.
type ShellCommandAnalyzer struct {
	operators []string
}

// NewShellCommandAnalyzer creates a new shell analyzer.
func NewShellCommandAnalyzer() *ShellCommandAnalyzer {
	return &ShellCommandAnalyzer{
		operators: []string{"&&", "||", ";", "|", "`", "$(", "\n"},
	}
}

// Operators returns the shell operators that appear in cmdStr, in the order
// they are checked. The command blacklist only looks at the start of the
// text, so whatever follows one of these goes unchecked.
func (sa *ShellCommandAnalyzer) Operators(cmdStr string) []string {
	var found []string
	for _, op := range sa.operators {
		if strings.Contains(cmdStr, op) {
			found = append(found, op)
		}
	}
	return found
}
