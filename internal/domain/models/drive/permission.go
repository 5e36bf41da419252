package drive

import (
	"fmt"
	"strings"
)

// PermissionLevel is a delegated capability on a folder or file.
// Levels are totally ordered: read < write < admin.
type PermissionLevel string

const (
	PermissionRead  PermissionLevel = "read"
	PermissionWrite PermissionLevel = "write"
	// PermissionAdmin is full control (delete, manage content). Older clients send "full".
	PermissionAdmin PermissionLevel = "admin"
)

// PermissionLevels lists every valid level in ascending order
var PermissionLevels = []PermissionLevel{PermissionRead, PermissionWrite, PermissionAdmin}

// ParsePermissionLevel normalizes a client supplied level.
// Accepts read|write|admin and the legacy alias full, case-insensitive.
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "read":
		return PermissionRead, nil
	case "write":
		return PermissionWrite, nil
	case "admin", "full":
		return PermissionAdmin, nil
	default:
		return "", fmt.Errorf("invalid permission %q (supported: read, write, admin)", s)
	}
}

// Valid reports whether p is one of the three known levels
func (p PermissionLevel) Valid() bool {
	return p.rank() > 0
}

func (p PermissionLevel) rank() int {
	switch p {
	case PermissionRead:
		return 1
	case PermissionWrite:
		return 2
	case PermissionAdmin:
		return 3
	default:
		return 0
	}
}

// Satisfies reports whether p is at least the required level
func (p PermissionLevel) Satisfies(required PermissionLevel) bool {
	return p.Valid() && p.rank() >= required.rank()
}

// MaxPermission returns the more permissive of two levels.
// An invalid or empty level loses to any valid one.
func MaxPermission(a, b PermissionLevel) PermissionLevel {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// Decision is the outcome of a permission evaluation
type Decision bool

const (
	Deny  Decision = false
	Allow Decision = true
)

func (d Decision) String() string {
	if d {
		return "allow"
	}
	return "deny"
}
