package domain

import (
	"fmt"
	"strings"
)

// Role is who is using the app. It is chosen at startup and passed
// explicitly to whatever needs it.
type Role int

const (
	RoleVisitor Role = iota
	RoleCollector
)

func (r Role) String() string {
	switch r {
	case RoleCollector:
		return "collector"
	default:
		return "visitor"
	}
}

// CanComment reports whether the role may post album comments
func (r Role) CanComment() bool {
	return r == RoleCollector
}

// ParseRole accepts "visitor" or "collector" (case-insensitive)
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "visitor":
		return RoleVisitor, nil
	case "collector":
		return RoleCollector, nil
	default:
		return RoleVisitor, fmt.Errorf("unknown role %q", s)
	}
}
