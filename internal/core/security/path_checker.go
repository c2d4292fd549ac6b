package security

import (
	"github.com/Lin-Jiong-HDU/shellgate/internal/core/paths"
)

// PathAccessChecker checks directories against blocked entries.
type PathAccessChecker struct{}

// NewPathAccessChecker creates a new path checker.
func NewPathAccessChecker() *PathAccessChecker {
	return &PathAccessChecker{}
}

// IsRestricted reports whether checkPath is a blocked directory or lies
// under one. Both sides are home-expanded and cleaned independently; no
// symlinks are resolved.
func (pc *PathAccessChecker) IsRestricted(checkPath string, blocked []string) bool {
	normalized := paths.Normalize(checkPath)

	for _, entry := range blocked {
		if paths.Within(normalized, paths.Normalize(entry)) {
			return true
		}
	}
	return false
}
