// Package gitcfg reads and writes a single git config file from one scope.
// It supports the subset of the git-config syntax this module needs: sections,
// subsections, key-value pairs and comments. Include directives, conditional
// includes and environment overlays are not supported.
//
// The reference is https://git-scm.com/docs/git-config#_syntax.
package gitcfg

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
)

// "The variable names are case-insensitive, allow only alphanumeric
// characters and -, and must start with an alphabetic character."
var reValidKey = regexp.MustCompile(`^[a-z]+[a-z0-9-]*$`)

// File is a single git config file. It keeps the raw text alongside the
// parsed variables so that comments, ordering and whitespace survive a
// set or unset as far as possible.
//
// File is not safe for concurrent use. Callers must serialize access.
type File struct {
	// Path is the on-disk location. An empty path keeps the file in memory.
	Path string
	// NoWrites prevents flushing changes to disk. Used by tests.
	NoWrites bool

	raw  strings.Builder
	vars map[string][]string
}

// NewFile returns an empty File bound to the given path. The file is created
// on the first flushed change.
func NewFile(path string) *File {
	return &File{
		Path: path,
		vars: map[string][]string{},
	}
}

// Load reads and parses the config file at path.
func Load(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close() //nolint:errcheck

	f := Parse(fh)
	f.Path = path

	return f, nil
}

// Parse reads a config from r. It never fails, invalid lines are skipped.
func Parse(r io.Reader) *File {
	f := &File{
		vars: make(map[string][]string, 16),
	}

	lines := walk(r, func(ln *line) (string, bool) {
		f.vars[ln.key] = append(f.vars[ln.key], ln.value)

		return ln.full, true
	})

	f.raw.WriteString(strings.Join(lines, "\n"))
	if len(lines) > 0 {
		f.raw.WriteString("\n")
	}

	return f
}

// Get returns the first value of key.
func (f *File) Get(key string) (string, bool) {
	vs, found := f.vars[CanonicalKey(key)]
	if !found || len(vs) < 1 {
		return "", false
	}

	return vs[0], true
}

// GetAll returns all values of key. Config files written by other tools may
// carry several values for one key even though this module never writes them.
func (f *File) GetAll(key string) ([]string, bool) {
	vs, found := f.vars[CanonicalKey(key)]
	if !found {
		return nil, false
	}

	return vs, true
}

// IsSet returns true if key is present, even with an empty value.
func (f *File) IsSet(key string) bool {
	_, present := f.vars[CanonicalKey(key)]

	return present
}

// Vars returns a copy of all variables in this file.
func (f *File) Vars() map[string][]string {
	out := make(map[string][]string, len(f.vars))
	for k, vs := range f.vars {
		out[k] = append([]string(nil), vs...)
	}

	return out
}

// Set updates the first occurrence of key or inserts it into a matching
// section, creating the section if needed. The change is flushed to disk
// unless NoWrites is set or the file has no path.
func (f *File) Set(key, value string) error {
	ck := CanonicalKey(key)
	if ck == "" {
		return fmt.Errorf("invalid key: %s", key)
	}
	key = ck

	if f.vars == nil {
		f.vars = make(map[string][]string, 16)
	}

	if vs, found := f.vars[key]; found && len(vs) > 0 && vs[0] == value {
		debug.V(1).Log("%s already set to %q, not rewriting %s", key, value, f.Path)

		return nil
	}

	// only the first value is replaced, further values stay untouched
	vs, present := f.vars[key]
	if len(vs) == 0 {
		vs = make([]string, 1)
	}
	vs[0] = value
	f.vars[key] = vs

	if !present {
		return f.insert(key, value)
	}

	var done bool
	f.rewrite(func(ln *line) (string, bool) {
		if done || ln.key != key {
			return ln.full, true
		}
		done = true

		return formatKeyValue(ln.name, value, ln.comment), true
	})

	return f.flush()
}

// Unset removes key from the file. Removing an absent key is a no-op.
func (f *File) Unset(key string) error {
	key = CanonicalKey(key)

	if _, present := f.vars[key]; !present {
		return nil
	}

	delete(f.vars, key)

	f.rewrite(func(ln *line) (string, bool) {
		if ln.key != key {
			return ln.full, true
		}

		return "", false
	})

	return f.flush()
}

// Raw returns the current textual representation.
func (f *File) Raw() string {
	return f.raw.String()
}

// line is one parsed key-value line.
type line struct {
	key     string // canonical section[.subsection].name
	name    string // key name as written
	value   string
	comment string
	full    string // the unaltered line
}

// walk scans all lines of r, tracking the current section, and invokes cb for
// every valid key-value line. cb returns the replacement text for the line
// and whether to keep it at all. Comments, section headers and blank lines
// are kept unaltered. The returned slice is the resulting file content.
func walk(r io.Reader, cb func(*line) (string, bool)) []string {
	s := bufio.NewScanner(r)

	lines := make([]string, 0, 128)
	var section, subsection string
	for s.Scan() {
		full := s.Text()

		trimmed := strings.TrimSpace(full)

		switch {
		case trimmed == "", strings.HasPrefix(trimmed, "#"), strings.HasPrefix(trimmed, ";"):
			lines = append(lines, full)

			continue
		case strings.HasPrefix(trimmed, "["):
			if sec, subs, ok := parseSectionHeader(trimmed); ok {
				section, subsection = sec, subs
			}
			lines = append(lines, full)

			continue
		}

		k, v, found := strings.Cut(trimmed, "=")
		if !found {
			// bare boolean, key without value
			k = trimmed
			v = ""
		}
		name := strings.TrimSpace(k)
		lk := strings.ToLower(name)
		if !reValidKey.MatchString(lk) {
			debug.V(3).Log("skipping invalid key %q in line %q", lk, full)
			lines = append(lines, full)

			continue
		}

		value, comment := splitValueComment(strings.TrimSpace(v))

		fk := section + "."
		if subsection != "" {
			fk += subsection + "."
		}
		fk += lk

		text, keep := cb(&line{key: fk, name: name, value: value, comment: comment, full: full})
		if keep {
			lines = append(lines, text)
		}
	}

	return lines
}

// rewrite rebuilds the raw representation, passing every key-value line
// through cb.
func (f *File) rewrite(cb func(*line) (string, bool)) {
	lines := walk(strings.NewReader(f.raw.String()), cb)

	f.raw = strings.Builder{}
	f.raw.WriteString(strings.Join(lines, "\n"))
	if len(lines) > 0 {
		f.raw.WriteString("\n")
	}
}

// insert adds a new key to an existing matching section, or appends a new
// section at the end of the file.
func (f *File) insert(key, value string) error {
	wSection, wSubsection, wKey := SplitKey(key)

	s := bufio.NewScanner(strings.NewReader(f.raw.String()))

	lines := make([]string, 0, 128)
	var section, subsection string
	var written bool
	for s.Scan() {
		text := s.Text()
		lines = append(lines, text)

		if written {
			continue
		}

		trimmed := strings.TrimSpace(text)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		if strings.HasPrefix(trimmed, "[") {
			sec, subs, ok := parseSectionHeader(trimmed)
			if !ok {
				continue
			}
			section, subsection = sec, subs
		}

		if section != wSection || subsection != wSubsection {
			continue
		}

		lines = append(lines, formatKeyValue(wKey, value, ""))
		written = true
	}

	if !written {
		header := fmt.Sprintf("[%s]", wSection)
		if wSubsection != "" {
			header = fmt.Sprintf("[%s %q]", wSection, wSubsection)
		}
		lines = append(lines, header, formatKeyValue(wKey, value, ""))
	}

	f.raw = strings.Builder{}
	f.raw.WriteString(strings.Join(lines, "\n"))
	f.raw.WriteString("\n")

	return f.flush()
}

func (f *File) flush() error {
	if f.NoWrites || f.Path == "" {
		debug.V(3).Log("not writing changes (noWrites %t, path %q)", f.NoWrites, f.Path)

		return nil
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
	}

	if err := os.WriteFile(f.Path, []byte(f.raw.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write config to %s: %w", f.Path, err)
	}

	debug.V(1).Log("wrote config to %s", f.Path)

	return nil
}

func formatKeyValue(name, value, comment string) string {
	if comment != "" {
		comment = " " + comment
	}
	if strings.TrimSpace(value) == "" {
		return fmt.Sprintf("\t%s%s", name, comment)
	}

	return fmt.Sprintf("\t%s = %s%s", name, value, comment)
}

func parseSectionHeader(text string) (section, subsection string, ok bool) { //nolint:nonamedreturns
	text = strings.Trim(text, "[]")
	if text == "" {
		return "", "", false
	}

	wsp := strings.Index(text, " ")
	if wsp < 0 {
		return strings.ToLower(text), "", true
	}

	section = strings.ToLower(text[:wsp])
	subsection = text[wsp+1:]
	subsection = strings.ReplaceAll(subsection, "\\", "")
	subsection = strings.Trim(subsection, "\"")

	return section, subsection, true
}

// splitValueComment separates an inline comment from the value. Values may be
// quoted to protect comment characters and surrounding whitespace.
func splitValueComment(v string) (string, string) {
	if !strings.ContainsAny(v, "#;") {
		return strings.Trim(v, "\""), ""
	}

	var inQuotes bool
	for i, r := range v {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case '#', ';':
			if !inQuotes {
				value := strings.TrimSpace(v[:i])

				return strings.Trim(value, "\""), strings.TrimSpace(v[i:])
			}
		}
	}

	return strings.Trim(v, "\""), ""
}
