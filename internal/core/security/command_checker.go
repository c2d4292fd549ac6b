package security

import "strings"

// BlockedCommandChecker matches command text against blocked entries.
type BlockedCommandChecker struct{}

// NewBlockedCommandChecker creates a new command checker.
func NewBlockedCommandChecker() *BlockedCommandChecker {
	return &BlockedCommandChecker{}
}

// Match returns the first entry of blocked that command starts with. An entry
// matches when it equals the first whitespace-separated token, or when the
// command begins with the entry followed by a space (multi-word entries such
// as "git push"). blocked is expected in precedence order (see ParseBlacklist).
func (bc *BlockedCommandChecker) Match(command string, blocked []string) (string, bool) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return "", false
	}
	first := fields[0]

	for _, entry := range blocked {
		if first == entry || strings.HasPrefix(command, entry+" ") {
			return entry, true
		}
	}
	return "", false
}
