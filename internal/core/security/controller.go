package security

import (
	"context"
	"fmt"

	"github.com/Lin-Jiong-HDU/shellgate/internal/logger"
	"github.com/sirupsen/logrus"
)

// Reason classifies a rejected check.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonUnauthorized     Reason = "unauthorized"
	ReasonCommandBlocked   Reason = "command_blocked"
	ReasonDirectoryBlocked Reason = "directory_blocked"
)

// CheckResult represents the result of a security check.
type CheckResult struct {
	Allowed bool
	Reason  Reason
	// Match is the blacklist entry (command checks) or the rejected path
	// (directory checks).
	Match string
}

// Message returns a short description of the outcome.
func (r *CheckResult) Message() string {
	switch r.Reason {
	case ReasonUnauthorized:
		return "principal is not in the allow-list"
	case ReasonCommandBlocked:
		return fmt.Sprintf("command blocked: %s", r.Match)
	case ReasonDirectoryBlocked:
		return fmt.Sprintf("access denied: %s", r.Match)
	}
	return "allowed"
}

// Gate coordinates all security checks.
type Gate struct {
	authorizer    *Authorizer
	store         *BlacklistStore
	commandCheck  *BlockedCommandChecker
	pathChecker   *PathAccessChecker
	shellAnalyzer *ShellCommandAnalyzer
}

// NewGate creates a new gate.
func NewGate(authorizer *Authorizer, store *BlacklistStore) *Gate {
	return &Gate{
		authorizer:    authorizer,
		store:         store,
		commandCheck:  NewBlockedCommandChecker(),
		pathChecker:   NewPathAccessChecker(),
		shellAnalyzer: NewShellCommandAnalyzer(),
	}
}

// IsAuthorized reports whether principal may use the gateway.
func (g *Gate) IsAuthorized(principal string) bool {
	return g.authorizer.IsAuthorized(principal)
}

// CheckPrincipal checks principal against the allow-list.
func (g *Gate) CheckPrincipal(principal string) *CheckResult {
	if !g.authorizer.IsAuthorized(principal) {
		return &CheckResult{Allowed: false, Reason: ReasonUnauthorized}
	}
	return &CheckResult{Allowed: true}
}

// IsCommandBlocked returns the blacklist entry command starts with, if any.
func (g *Gate) IsCommandBlocked(ctx context.Context, command string) (string, bool) {
	return g.commandCheck.Match(command, g.store.LoadBlockedCommands(ctx))
}

// IsDirectoryBlocked reports whether path is, or is under, a blocked directory.
func (g *Gate) IsDirectoryBlocked(ctx context.Context, path string) bool {
	return g.pathChecker.IsRestricted(path, g.store.LoadBlockedDirectories(ctx))
}

// CheckCommand performs the full check that must pass before command runs:
// authorization first, then the command blacklist.
func (g *Gate) CheckCommand(ctx context.Context, principal, command string) *CheckResult {
	if result := g.CheckPrincipal(principal); !result.Allowed {
		return result
	}

	if entry, blocked := g.IsCommandBlocked(ctx, command); blocked {
		return &CheckResult{Allowed: false, Reason: ReasonCommandBlocked, Match: entry}
	}

	if ops := g.shellAnalyzer.Operators(command); len(ops) > 0 {
		logger.WithFields(logrus.Fields{
			"principal": principal,
			"operators": ops,
		}).Debug("compound-command-checked-by-prefix-only")
	}

	return &CheckResult{Allowed: true}
}

// CheckDirectory checks path against the directory blacklist.
func (g *Gate) CheckDirectory(ctx context.Context, path string) *CheckResult {
	if g.IsDirectoryBlocked(ctx, path) {
		return &CheckResult{Allowed: false, Reason: ReasonDirectoryBlocked, Match: path}
	}
	return &CheckResult{Allowed: true}
}
