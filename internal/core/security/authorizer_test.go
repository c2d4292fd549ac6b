package security

import "testing"

func TestAuthorizer_IsAuthorized(t *testing.T) {
	tests := []struct {
		name      string
		allowed   []string
		principal string
		want      bool
	}{
		{"empty allow-list allows anyone", nil, "1234", true},
		{"blank entries are ignored", []string{" ", ""}, "1234", true},
		{"member", []string{"42", "7"}, "42", true},
		{"non-member", []string{"42"}, "43", false},
		{"entries are trimmed", []string{" 42 "}, "42", true},
		{"empty principal with restriction", []string{"42"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAuthorizer(tt.allowed)
			if got := a.IsAuthorized(tt.principal); got != tt.want {
				t.Errorf("IsAuthorized(%q) = %v, want %v", tt.principal, got, tt.want)
			}
		})
	}
}
