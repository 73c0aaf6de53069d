package gitscope

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gopasspw/gopass/pkg/appdir"
	"github.com/gopasspw/gopass/pkg/debug"

	"github.com/gitscope/gitscope/internal/gitcfg"
)

// Store is the underlying configuration store this layer delegates to.
// Parsing, file locking and on-disk storage are the store's concern.
//
// Get returns the full local and global variable mappings separately so the
// caller can merge or isolate them. repo may be nil, in which case the local
// mapping is empty. Values are slices because a store written by other tools
// may physically hold several values per key; the facade rejects those.
//
// Set applies the given variables to exactly one scope, selected by the
// global flag. ModeSet entries overwrite, ModeUnset entries remove, and
// removing an absent variable is a no-op. Variables are applied one at a
// time, a failure leaves earlier applications committed.
type Store interface {
	Get(repo *Repository) (local, global map[string][]string, err error)
	Set(repo *Repository, global bool, vars []Var) error
}

// FileStore is the default Store, backed by git config files on disk.
//
// The zero value is ready to use and resolves the usual file locations:
// <repo>/.git/config for the local scope and $XDG_CONFIG_HOME/git/config or
// ~/.gitconfig for the global scope.
type FileStore struct {
	// GlobalConfig overrides global config file discovery. Mainly for tests.
	GlobalConfig string
	// NoWrites prevents all writes to disk.
	NoWrites bool
}

// Get implements Store.
func (fs *FileStore) Get(repo *Repository) (map[string][]string, map[string][]string, error) {
	local := map[string][]string{}
	if repo != nil {
		if f, err := gitcfg.Load(repo.ConfigPath()); err == nil {
			local = f.Vars()
		} else {
			debug.V(1).Log("no local config at %s: %s", repo.ConfigPath(), err)
		}
	}

	global := map[string][]string{}
	if p := fs.findGlobalConfig(); p != "" {
		if f, err := gitcfg.Load(p); err == nil {
			global = f.Vars()
		} else {
			debug.V(1).Log("no global config at %s: %s", p, err)
		}
	}

	return local, global, nil
}

// Set implements Store.
func (fs *FileStore) Set(repo *Repository, global bool, vars []Var) error {
	path := ""
	switch {
	case global:
		path = fs.globalConfigForWrite()
	case repo != nil:
		path = repo.ConfigPath()
	default:
		return ErrNoRepository
	}

	f, err := gitcfg.Load(path)
	if err != nil {
		// a missing file is created on the first applied variable
		f = gitcfg.NewFile(path)
	}
	f.NoWrites = fs.NoWrites

	for _, v := range vars {
		switch v.Mode {
		case ModeSet:
			err = f.Set(v.Name, v.Value)
		case ModeUnset:
			err = f.Unset(v.Name)
		default:
			err = fmt.Errorf("%w: %s carries no value to apply", ErrUsage, v.Name)
		}
		if err != nil {
			return fmt.Errorf("failed to apply %s to %s: %w", v.Name, path, err)
		}
	}

	return nil
}

// findGlobalConfig returns the first existing global config file, trying the
// XDG location before the classic dotfile.
func (fs *FileStore) findGlobalConfig() string {
	for _, p := range fs.globalCandidates() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// globalConfigForWrite picks the file a global write goes to: the existing
// one if any, otherwise ~/.gitconfig is created.
func (fs *FileStore) globalConfigForWrite() string {
	if p := fs.findGlobalConfig(); p != "" {
		return p
	}

	candidates := fs.globalCandidates()

	return candidates[len(candidates)-1]
}

func (fs *FileStore) globalCandidates() []string {
	if fs.GlobalConfig != "" {
		return []string{fs.GlobalConfig}
	}

	return []string{
		filepath.Join(appdir.New("git").UserConfig(), "config"),
		filepath.Join(appdir.UserHome(), ".gitconfig"),
	}
}
