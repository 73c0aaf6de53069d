package gitscope

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv returns a Configs backed by a fresh repository and an isolated
// global config file.
func testEnv(t *testing.T) (*Configs, string, string) {
	t.Helper()

	repoDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repoDir, ".git"), 0o700))

	globalPath := filepath.Join(t.TempDir(), "gitconfig")

	cs := &Configs{
		Store: &FileStore{GlobalConfig: globalPath},
	}

	return cs, repoDir, globalPath
}

func TestQueryAbsentVariable(t *testing.T) {
	t.Parallel()

	cs, repoDir, _ := testEnv(t)

	snap, err := cs.GetOrSet(ScopeDeFacto, repoDir, "color.branch")
	require.NoError(t, err)

	require.Equal(t, 1, snap.Len())
	_, ok := snap.Get("color.branch")
	assert.False(t, ok)
}

func TestLocalOverridesGlobal(t *testing.T) {
	t.Parallel()

	cs, repoDir, _ := testEnv(t)

	_, err := cs.Global(Assign("user.name", "global-louise"), Assign("core.pager", "less"))
	require.NoError(t, err)
	_, err = cs.Local(repoDir, Assign("user.name", "local-louise"))
	require.NoError(t, err)

	snap, err := cs.GetOrSet(ScopeDeFacto, repoDir, "user.name", "core.pager")
	require.NoError(t, err)

	v, ok := snap.Get("user.name")
	assert.True(t, ok)
	assert.Equal(t, "local-louise", v)

	// keys only present in global survive the overlay
	v, ok = snap.Get("core.pager")
	assert.True(t, ok)
	assert.Equal(t, "less", v)

	// isolated scopes see only their own value
	snap, err = cs.GetOrSet(ScopeGlobal, repoDir, "user.name")
	require.NoError(t, err)
	v, _ = snap.Get("user.name")
	assert.Equal(t, "global-louise", v)

	snap, err = cs.GetOrSet(ScopeLocal, repoDir, "user.name")
	require.NoError(t, err)
	v, _ = snap.Get("user.name")
	assert.Equal(t, "local-louise", v)
}

func TestFilterPreservesRequestOrder(t *testing.T) {
	t.Parallel()

	cs, repoDir, _ := testEnv(t)

	_, err := cs.Local(repoDir,
		Assign("alpha.a", "1"),
		Assign("beta.b", "2"),
		Assign("gamma.c", "3"),
	)
	require.NoError(t, err)

	snap, err := cs.GetOrSet(ScopeLocal, repoDir, "beta.b", "alpha.a", "gamma.c")
	require.NoError(t, err)

	assert.Equal(t, []string{"beta.b", "alpha.a", "gamma.c"}, snap.Names())
}

func TestReadAllReturnsEverythingSorted(t *testing.T) {
	t.Parallel()

	cs, repoDir, _ := testEnv(t)

	_, err := cs.Global(Assign("zeta.z", "26"))
	require.NoError(t, err)
	_, err = cs.Local(repoDir, Assign("alpha.a", "1"))
	require.NoError(t, err)

	snap, err := cs.GetOrSet(ScopeDeFacto, repoDir)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha.a", "zeta.z"}, snap.Names())
}

func TestFreshRepositoryScenario(t *testing.T) {
	t.Parallel()

	cs, repoDir, _ := testEnv(t)

	_, err := cs.Local(repoDir,
		Assign("user.name", "louise"),
		Assign("user.email", "louise@example.org"),
	)
	require.NoError(t, err)

	snap, err := cs.GetOrSet(ScopeLocal, repoDir, "user.name", "color.branch", "user.email")
	require.NoError(t, err)

	assert.Equal(t, []string{"user.name", "color.branch", "user.email"}, snap.Names())

	v, ok := snap.Get("user.name")
	assert.True(t, ok)
	assert.Equal(t, "louise", v)

	_, ok = snap.Get("color.branch")
	assert.False(t, ok)

	v, ok = snap.Get("user.email")
	assert.True(t, ok)
	assert.Equal(t, "louise@example.org", v)
}

func TestRestoreRoundTrip(t *testing.T) {
	t.Parallel()

	cs, repoDir, _ := testEnv(t)

	_, err := cs.Local(repoDir, Assign("user.name", "original"))
	require.NoError(t, err)

	// overwrite one existing and one previously unset variable
	prev, err := cs.Local(repoDir,
		Assign("user.name", "changed"),
		Assign("user.email", "changed@example.org"),
	)
	require.NoError(t, err)

	v, ok := prev.Get("user.name")
	assert.True(t, ok)
	assert.Equal(t, "original", v)
	_, ok = prev.Get("user.email")
	assert.False(t, ok, "pre-write snapshot must record user.email as absent")

	// replaying the snapshot restores the exact pre-write state
	_, err = cs.Local(repoDir, prev.Apply())
	require.NoError(t, err)

	snap, err := cs.GetOrSet(ScopeLocal, repoDir, "user.name", "user.email")
	require.NoError(t, err)

	v, ok = snap.Get("user.name")
	assert.True(t, ok)
	assert.Equal(t, "original", v)

	_, ok = snap.Get("user.email")
	assert.False(t, ok, "user.email must be unset again after restore")
}

func TestIdempotence(t *testing.T) {
	t.Parallel()

	cs, repoDir, _ := testEnv(t)

	_, err := cs.Local(repoDir, Assign("user.name", "louise"))
	require.NoError(t, err)
	_, err = cs.Local(repoDir, Assign("user.name", "louise"))
	require.NoError(t, err)

	snap, err := cs.GetOrSet(ScopeLocal, repoDir, "user.name")
	require.NoError(t, err)
	v, _ := snap.Get("user.name")
	assert.Equal(t, "louise", v)

	// unsetting an absent variable does not error
	_, err = cs.Local(repoDir, Remove("never.set"))
	require.NoError(t, err)
}

func TestDeFactoWriteRedirectsToLocal(t *testing.T) {
	t.Parallel()

	cs, repoDir, globalPath := testEnv(t)

	var notices []string
	cs.Notify = func(msg string) {
		notices = append(notices, msg)
	}

	_, err := cs.GetOrSet(ScopeDeFacto, repoDir, Assign("user.name", "louise"))
	require.NoError(t, err)

	assert.Equal(t, []string{"setting where = local"}, notices)

	// the value landed in the local scope, not the global one
	snap, err := cs.GetOrSet(ScopeLocal, repoDir, "user.name")
	require.NoError(t, err)
	v, ok := snap.Get("user.name")
	assert.True(t, ok)
	assert.Equal(t, "louise", v)

	_, err = os.Stat(globalPath)
	assert.True(t, os.IsNotExist(err), "global config must stay untouched")
}

func TestLocalWriteWithoutRepositoryFails(t *testing.T) {
	t.Parallel()

	cs, _, _ := testEnv(t)
	outside := t.TempDir()

	_, err := cs.Local(outside, Assign("user.name", "louise"))
	require.ErrorIs(t, err, ErrNoRepository)
	assert.Contains(t, err.Error(), outside)
}

func TestNonRepositoryDeFactoReadUsesGlobalOnly(t *testing.T) {
	t.Parallel()

	cs, _, _ := testEnv(t)
	outside := t.TempDir()

	_, err := cs.Global(Assign("user.name", "global-louise"))
	require.NoError(t, err)

	snap, err := cs.GetOrSet(ScopeDeFacto, outside, "user.name")
	require.NoError(t, err)

	v, ok := snap.Get("user.name")
	assert.True(t, ok)
	assert.Equal(t, "global-louise", v)
}

func TestMultiValueVariableFailsRead(t *testing.T) {
	t.Parallel()

	cs, repoDir, _ := testEnv(t)

	// files written by other tools may carry several values for one key
	cfg := filepath.Join(repoDir, ".git", "config")
	require.NoError(t, os.WriteFile(cfg, []byte("[remote \"origin\"]\n\tfetch = a\n\tfetch = b\n"), 0o600))

	_, err := cs.GetOrSet(ScopeLocal, repoDir, "remote.origin.fetch")
	require.ErrorIs(t, err, ErrMultiValue)
}

func TestWriteUsageErrors(t *testing.T) {
	t.Parallel()

	cs, repoDir, _ := testEnv(t)

	err := cs.Write(nil, ScopeLocal, repoDir)
	require.ErrorIs(t, err, ErrUsage)

	err = cs.Write([]Var{
		Assign("user.name", "a"),
		Assign("user.name", "b"),
	}, ScopeLocal, repoDir)
	require.ErrorIs(t, err, ErrUsage)

	// a bare query carries nothing to apply
	err = cs.Write([]Var{Query("user.name")}, ScopeLocal, repoDir)
	require.ErrorIs(t, err, ErrUsage)
}

func TestCaseInsensitiveLookup(t *testing.T) {
	t.Parallel()

	cs, repoDir, _ := testEnv(t)

	_, err := cs.Local(repoDir, Assign("User.Name", "louise"))
	require.NoError(t, err)

	snap, err := cs.GetOrSet(ScopeLocal, repoDir, "user.NAME")
	require.NoError(t, err)

	v, ok := snap.Get("user.NAME")
	assert.True(t, ok)
	assert.Equal(t, "louise", v)
}

func TestSnapshotIsDetachedFromStore(t *testing.T) {
	t.Parallel()

	cs, repoDir, _ := testEnv(t)

	_, err := cs.Local(repoDir, Assign("user.name", "before"))
	require.NoError(t, err)

	snap, err := cs.GetOrSet(ScopeLocal, repoDir, "user.name")
	require.NoError(t, err)

	_, err = cs.Local(repoDir, Assign("user.name", "after"))
	require.NoError(t, err)

	v, _ := snap.Get("user.name")
	assert.Equal(t, "before", v)
}

func TestParseScope(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Scope{
		"de_facto": ScopeDeFacto,
		"de-facto": ScopeDeFacto,
		"local":    ScopeLocal,
		"global":   ScopeGlobal,
	} {
		got, err := ParseScope(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseScope("worktree")
	require.ErrorIs(t, err, ErrUnknownScope)
}
