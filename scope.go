package gitscope

import "fmt"

// Scope selects which configuration file a variable is read from or
// written to.
type Scope int

const (
	// ScopeDeFacto is the merged, read-only view where local values override
	// global values. Writes requested against it are redirected to local.
	ScopeDeFacto Scope = iota
	// ScopeLocal is the per-repository config (.git/config).
	ScopeLocal
	// ScopeGlobal is the per-user config (~/.gitconfig or the XDG location).
	ScopeGlobal
)

// String implements fmt.Stringer.
func (s Scope) String() string {
	switch s {
	case ScopeDeFacto:
		return "de_facto"
	case ScopeLocal:
		return "local"
	case ScopeGlobal:
		return "global"
	default:
		return fmt.Sprintf("scope(%d)", int(s))
	}
}

// ParseScope parses a scope name. Both de_facto and de-facto are accepted.
func ParseScope(s string) (Scope, error) {
	switch s {
	case "de_facto", "de-facto", "defacto":
		return ScopeDeFacto, nil
	case "local":
		return ScopeLocal, nil
	case "global":
		return ScopeGlobal, nil
	default:
		return ScopeDeFacto, fmt.Errorf("%w: %q", ErrUnknownScope, s)
	}
}

// sources reports which stores a read at this scope consults.
func (s Scope) sources() (local, global bool) {
	switch s {
	case ScopeLocal:
		return true, false
	case ScopeGlobal:
		return false, true
	default:
		return true, true
	}
}
