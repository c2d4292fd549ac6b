package security

import "strings"

// Authorizer checks principals against the configured allow-list.
type Authorizer struct {
	allowed map[string]struct{}
}

// NewAuthorizer creates an authorizer. Blank entries are ignored, so an
// allow-list of only blanks behaves like an empty one.
func NewAuthorizer(allowedUsers []string) *Authorizer {
	allowed := make(map[string]struct{}, len(allowedUsers))
	for _, id := range allowedUsers {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		allowed[id] = struct{}{}
	}
	return &Authorizer{allowed: allowed}
}

// Unrestricted reports whether every principal is allowed.
func (a *Authorizer) Unrestricted() bool {
	return len(a.allowed) == 0
}

// IsAuthorized reports whether principal may use the gateway.
func (a *Authorizer) IsAuthorized(principal string) bool {
	if a.Unrestricted() {
		return true
	}
	_, ok := a.allowed[strings.TrimSpace(principal)]
	return ok
}
