// internal/app/system/authz/requirement.go

// Package authz defines the permission vocabulary and the requirement
// evaluator used by the route gate. Evaluation is pure set arithmetic:
// no request state, no database, no clock.
package authz

// Mode selects how a requirement's permission list combines.
type Mode int

const (
	// ModeAll requires every listed permission to be granted.
	ModeAll Mode = iota
	// ModeAny requires at least one listed permission to be granted.
	ModeAny
)

// Requirement is the permission rule attached to a route table entry.
// Construct with AllOf or AnyOf so the mode tag is never left ambiguous.
type Requirement struct {
	Mode        Mode
	Permissions []string
}

// AllOf returns a requirement satisfied only when every named permission
// is present in the caller's granted set.
func AllOf(perms ...string) Requirement {
	return Requirement{Mode: ModeAll, Permissions: perms}
}

// AnyOf returns a requirement satisfied when at least one named permission
// is present in the caller's granted set.
func AnyOf(perms ...string) Requirement {
	return Requirement{Mode: ModeAny, Permissions: perms}
}

// Evaluate reports whether the granted permission set satisfies the
// requirement. A granted set containing the override permission satisfies
// every requirement, whatever its contents.
func Evaluate(req Requirement, granted []string) bool {
	set := make(map[string]struct{}, len(granted))
	for _, p := range granted {
		set[p] = struct{}{}
	}
	if _, ok := set[Override]; ok {
		return true
	}

	switch req.Mode {
	case ModeAny:
		for _, p := range req.Permissions {
			if _, ok := set[p]; ok {
				return true
			}
		}
		return false
	default: // ModeAll
		for _, p := range req.Permissions {
			if _, ok := set[p]; !ok {
				return false
			}
		}
		return true
	}
}

// HasOverride reports whether the granted set contains the override
// permission. The gate uses this for its admin fast path before any
// route matching happens.
func HasOverride(granted []string) bool {
	for _, p := range granted {
		if p == Override {
			return true
		}
	}
	return false
}
