package gitscope

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
)

// Repository is a handle to a discovered git repository.
type Repository struct {
	// Root is the worktree root, the directory containing .git.
	Root string
	// GitDir is the resolved .git directory. For linked worktrees this is
	// the directory the .git pointer file refers to.
	GitDir string
}

// ConfigPath returns the location of the repository-local config file.
func (r *Repository) ConfigPath() string {
	return filepath.Join(r.GitDir, "config")
}

// Discover walks upwards from location until it finds a directory containing
// .git, either as a directory or as a "gitdir:" pointer file (linked
// worktrees). It returns ErrNoRepository, naming the location, when the walk
// reaches the filesystem root without a hit.
func Discover(location string) (*Repository, error) {
	dir, err := filepath.Abs(location)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", location, err)
	}

	for {
		gitDir, found := gitDirAt(dir)
		if found {
			debug.V(1).Log("found repository at %s (gitdir %s)", dir, gitDir)

			return &Repository{Root: dir, GitDir: gitDir}, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("%w at %s", ErrNoRepository, location)
		}
		dir = parent
	}
}

// gitDirAt checks whether dir contains a .git entry and resolves it to the
// actual git directory.
func gitDirAt(dir string) (string, bool) {
	candidate := filepath.Join(dir, ".git")

	fi, err := os.Stat(candidate)
	if err != nil {
		return "", false
	}

	if fi.IsDir() {
		return candidate, true
	}

	// linked worktree, .git is a file of the form "gitdir: <path>"
	buf, err := os.ReadFile(candidate)
	if err != nil {
		return "", false
	}

	content := strings.TrimSpace(string(buf))
	target, found := strings.CutPrefix(content, "gitdir: ")
	if !found {
		return "", false
	}

	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}

	return filepath.Clean(target), true
}
