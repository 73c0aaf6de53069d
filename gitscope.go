package gitscope

import (
	"fmt"

	"github.com/gopasspw/gopass/pkg/debug"
	"github.com/gopasspw/gopass/pkg/set"

	"github.com/gitscope/gitscope/internal/gitcfg"
)

// Configs provides layered access to the git configuration store, merging or
// isolating the repository-local and the user-global scope.
//
// Every call re-resolves the repository and re-reads the store from scratch,
// there is no cached state between calls. Concurrency control is left to the
// underlying store's own file handling.
//
// Usage:
//
//	cs := gitscope.New()
//	snap, _ := cs.GetOrSet(gitscope.ScopeDeFacto, ".", "user.name")
//	prev, _ := cs.Local(".", gitscope.Assign("user.name", "louise"))
//	// later: replay prev to restore
//	_, _ = cs.Local(".", prev.Apply())
type Configs struct {
	// Store is the underlying config store. Defaults to a FileStore.
	Store Store
	// Notify receives non-fatal notices, e.g. when a write against the
	// de_facto scope is redirected to local. Defaults to a debug log line.
	Notify func(msg string)
}

// New returns a Configs backed by the default file store.
func New() *Configs {
	return &Configs{
		Store: &FileStore{},
	}
}

// Default is the package-level instance used by the GetOrSet, Local and
// Global shortcuts.
var Default = New()

// Read retrieves the variables named in names from the given scope at
// location and returns them as a Snapshot in the order of names. Names not
// set in any consulted scope yield absent entries, never errors. An empty
// names slice returns every resolved variable in sorted order.
//
// For ScopeDeFacto the global mapping is overlaid with the local one, local
// values win on collision. A location outside any repository makes the local
// mapping empty.
func (cs *Configs) Read(names []string, where Scope, location string) (*Snapshot, error) {
	wantLocal, wantGlobal := where.sources()

	var repo *Repository
	if wantLocal {
		r, err := Discover(location)
		if err != nil {
			// outside a repository the local scope is simply empty for reads
			debug.V(1).Log("reading without local scope: %s", err)
		} else {
			repo = r
		}
	}

	local, global, err := cs.Store.Get(repo)
	if err != nil {
		return nil, fmt.Errorf("failed to read config store: %w", err)
	}

	merged := make(map[string]string, len(local)+len(global))
	if wantGlobal {
		if err := overlay(merged, global); err != nil {
			return nil, err
		}
	}
	if wantLocal {
		if err := overlay(merged, local); err != nil {
			return nil, err
		}
	}

	if len(names) == 0 {
		keys := make([]string, 0, len(merged))
		for k := range merged {
			keys = append(keys, k)
		}

		entries := make([]Entry, 0, len(keys))
		for _, k := range set.Sorted(keys) {
			entries = append(entries, Entry{Name: k, Value: merged[k], Present: true})
		}

		return newSnapshot(entries), nil
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		v, found := merged[gitcfg.CanonicalKey(name)]
		entries = append(entries, Entry{Name: name, Value: v, Present: found})
	}

	return newSnapshot(entries), nil
}

// overlay copies src into dst, overwriting on collision, and enforces the
// scalar invariant: a store handing back several values for one variable is
// an unsupported condition, not a recoverable one.
func overlay(dst map[string]string, src map[string][]string) error {
	for k, vs := range src {
		if len(vs) > 1 {
			return fmt.Errorf("%w: %s resolves to %d values", ErrMultiValue, k, len(vs))
		}
		if len(vs) == 0 {
			continue
		}
		dst[k] = vs[0]
	}

	return nil
}

// Write applies vars to exactly one scope's storage. Each entry must carry a
// value (ModeSet) or the explicit unset marker (ModeUnset), names must be
// unique and the list non-empty.
//
// A write against ScopeDeFacto is redirected to ScopeLocal with a notice. A
// local write outside any repository fails with ErrNoRepository naming the
// location.
//
// Variables are applied independently and sequentially, there is no
// cross-variable transaction: a failure partway through leaves the earlier
// applications committed. Callers wanting restore capability capture a
// pre-write snapshot first, which GetOrSet does automatically.
func (cs *Configs) Write(vars []Var, where Scope, location string) error {
	if len(vars) == 0 {
		return fmt.Errorf("%w: no variables to write", ErrUsage)
	}

	seen := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		if v.Name == "" {
			return fmt.Errorf("%w: variable name must not be empty", ErrUsage)
		}
		if v.Mode == ModeQuery {
			return fmt.Errorf("%w: %s carries neither a value nor the unset marker", ErrUsage, v.Name)
		}
		key := gitcfg.CanonicalKey(v.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: duplicate variable %s", ErrUsage, v.Name)
		}
		seen[key] = struct{}{}
	}

	where = cs.writeScope(where)

	var repo *Repository
	if where == ScopeLocal {
		r, err := Discover(location)
		if err != nil {
			return err
		}
		repo = r
	}

	debug.Log("writing %d variables to %s scope", len(vars), where)

	return cs.Store.Set(repo, where == ScopeGlobal, vars)
}

// writeScope normalizes the target scope of a write. de_facto is not a
// physical store and never a legal write target, so it redirects to local.
func (cs *Configs) writeScope(where Scope) Scope {
	if where != ScopeDeFacto {
		return where
	}

	cs.notify("setting where = local")

	return ScopeLocal
}

func (cs *Configs) notify(msg string) {
	if cs.Notify != nil {
		cs.Notify(msg)

		return
	}

	debug.Log("%s", msg)
}

// GetOrSet is the combined entry point. If every argument is a bare name (or
// none are given) it performs a read and returns the snapshot. If any
// argument carries a value or the unset marker it captures the previous
// state of exactly the named variables at the effective write scope, applies
// the write and returns that pre-write snapshot, enabling restore by
// replaying snapshot.Apply().
//
// See Normalize for the accepted argument forms.
func (cs *Configs) GetOrSet(where Scope, location string, args ...any) (*Snapshot, error) {
	vars, isQuery, err := Normalize(args...)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(vars))
	for _, v := range vars {
		names = append(names, v.Name)
	}

	if isQuery {
		return cs.Read(names, where, location)
	}

	// the pre-write snapshot must be taken at the scope the write lands in,
	// otherwise replaying it would not restore that scope exactly
	effective := where
	if effective == ScopeDeFacto {
		effective = ScopeLocal
	}

	prev, err := cs.Read(names, effective, location)
	if err != nil {
		return nil, err
	}

	if err := cs.Write(vars, where, location); err != nil {
		return nil, err
	}

	return prev, nil
}

// Local is GetOrSet with the scope fixed to local.
func (cs *Configs) Local(location string, args ...any) (*Snapshot, error) {
	return cs.GetOrSet(ScopeLocal, location, args...)
}

// Global is GetOrSet with the scope fixed to global. The location is
// irrelevant for the global scope.
func (cs *Configs) Global(args ...any) (*Snapshot, error) {
	return cs.GetOrSet(ScopeGlobal, ".", args...)
}

// GetOrSet is a shortcut for Default.GetOrSet.
func GetOrSet(where Scope, location string, args ...any) (*Snapshot, error) {
	return Default.GetOrSet(where, location, args...)
}

// Local is a shortcut for Default.Local.
func Local(location string, args ...any) (*Snapshot, error) {
	return Default.Local(location, args...)
}

// Global is a shortcut for Default.Global.
func Global(args ...any) (*Snapshot, error) {
	return Default.Global(args...)
}
