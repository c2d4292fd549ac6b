package core

import (
	"errors"
	"fmt"
)

// Request failures. Each is turned into a reply at the transport boundary;
// none of them is retried.
var (
	ErrUnauthorized    = errors.New("unauthorized")
	ErrAccessDenied    = errors.New("access denied")
	ErrCommandBlocked  = errors.New("command blocked")
	ErrNotFound        = errors.New("directory not found")
	ErrTimedOut        = errors.New("command timed out")
	ErrExecutionFailed = errors.New("execution failed")
)

// BlockedCommandError reports the blacklist entry that rejected a command.
type BlockedCommandError struct {
	Entry string
}

func (e *BlockedCommandError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCommandBlocked, e.Entry)
}

func (e *BlockedCommandError) Is(target error) bool {
	return target == ErrCommandBlocked
}
