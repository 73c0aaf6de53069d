// Package gitscope provides layered read and write access to git's
// configuration store, merging or isolating the repository-local and the
// user-global scope.
//
// # Scopes
//
// Three scopes exist:
//
//   - `local` - the per-repository config (.git/config)
//   - `global` - the per-user config ($XDG_CONFIG_HOME/git/config or ~/.gitconfig)
//   - `de_facto` - the merged, read-only view where local overrides global
//
// de_facto is a logical view, not a physical store. Writes requested against
// it are redirected to local with a non-fatal notice.
//
// # Reading and writing
//
// GetOrSet is the combined entry point. Bare names query, Assign and Remove
// arguments mutate:
//
//	snap, _ := gitscope.GetOrSet(gitscope.ScopeDeFacto, ".", "user.name", "user.email")
//	fmt.Print(snap)
//
//	prev, _ := gitscope.Local(".", gitscope.Assign("user.name", "louise"))
//
// The write path returns the pre-write state of exactly the written names.
// Replaying it restores that state, including unsetting names that had no
// prior value:
//
//	_, _ = gitscope.Local(".", prev.Apply())
//
// Absence of a queried variable is not an error, the snapshot carries an
// absent entry for it. Multi-valued variables are unsupported: a read that
// encounters one fails with ErrMultiValue.
//
// # Error handling
//
// Use errors.Is to detect the error categories:
//
//	if _, err := gitscope.Local("/tmp", gitscope.Assign("user.name", "x")); err != nil {
//		if errors.Is(err, gitscope.ErrNoRepository) {
//			// local writes need a repository at the given location
//		}
//	}
//
// # Limitations
//
//   - Writes across several variables in one call are applied sequentially
//     with no rollback, a failure partway through leaves earlier
//     applications committed.
//   - Include directives, credential helpers and scopes beyond local and
//     global are out of scope.
package gitscope
