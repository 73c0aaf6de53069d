package gitscope

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Entry is one variable in a Snapshot. Present is false for variables that
// were queried but not set in any consulted scope.
type Entry struct {
	Name    string
	Value   string
	Present bool
}

// Snapshot is an ordered, immutable name to value mapping captured by a
// read. It serves both as a query result and as the previous state returned
// by GetOrSet on the write path, so that replaying it restores the exact
// pre-write state.
//
// A Snapshot has no backing reference to the live store. Mutating the store
// after a read does not affect a previously returned Snapshot.
type Snapshot struct {
	entries []Entry
	index   map[string]int
}

func newSnapshot(entries []Entry) *Snapshot {
	s := &Snapshot{
		entries: entries,
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		if _, seen := s.index[e.Name]; !seen {
			s.index[e.Name] = i
		}
	}

	return s
}

// Get returns the value of name. The second return is false if name is not
// in the snapshot or was captured as absent.
func (s *Snapshot) Get(name string) (string, bool) {
	i, found := s.index[name]
	if !found || !s.entries[i].Present {
		return "", false
	}

	return s.entries[i].Value, true
}

// Entries returns a copy of all entries in capture order.
func (s *Snapshot) Entries() []Entry {
	return append([]Entry(nil), s.entries...)
}

// Names returns all variable names in capture order.
func (s *Snapshot) Names() []string {
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.Name)
	}

	return names
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	return len(s.entries)
}

// Apply converts the snapshot back into write arguments: present entries
// become assignments, absent entries become unsets. Passing the result to
// GetOrSet or Write at the same scope restores the captured state.
func (s *Snapshot) Apply() []Var {
	vars := make([]Var, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Present {
			vars = append(vars, Assign(e.Name, e.Value))

			continue
		}
		vars = append(vars, Remove(e.Name))
	}

	return vars
}

// Match returns a new snapshot holding only the entries whose name matches
// the given glob pattern. The dot is the separator, so "user.*" matches
// user.name but not remote.origin.url.
func (s *Snapshot) Match(pattern string) (*Snapshot, error) {
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	entries := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if g.Match(e.Name) {
			entries = append(entries, e)
		}
	}

	return newSnapshot(entries), nil
}

// String renders the snapshot as one name=value pair per line, with absent
// variables marked as <unset>.
func (s *Snapshot) String() string {
	var sb strings.Builder
	for _, e := range s.entries {
		if e.Present {
			fmt.Fprintf(&sb, "%s = %s\n", e.Name, e.Value)

			continue
		}
		fmt.Fprintf(&sb, "%s <unset>\n", e.Name)
	}

	return sb.String()
}
