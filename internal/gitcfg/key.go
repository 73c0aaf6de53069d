package gitcfg

import "strings"

// SplitKey splits a fully qualified config key into section, optional
// subsection and key name. The subsection may itself contain dots, the
// section and key name must not.
//
// Examples:
//   - user.name -> section: user, key: name
//   - remote.gist.gopass.pw.url -> section: remote, subsection: gist.gopass.pw, key: url
func SplitKey(key string) (section, subsection, name string) { //nolint:nonamedreturns
	n := strings.Index(key, ".")
	if n > 0 {
		section = key[:n]
	}

	if m := strings.LastIndex(key, "."); n != m && m > 0 && len(key) > m+1 {
		subsection = key[n+1 : m]
		name = key[m+1:]

		return
	}

	name = key[n+1:]

	return
}

// CanonicalKey lowercases the section and key name while preserving the
// subsection's case, per the git-config rules. Keys without a section or
// name canonicalize to the empty string.
func CanonicalKey(key string) string {
	if key == "" {
		return ""
	}

	section, subsection, name := SplitKey(key)
	section = strings.ToLower(section)
	name = strings.ToLower(name)

	if section == "" || name == "" {
		return ""
	}

	if subsection == "" {
		return section + "." + name
	}

	return section + "." + subsection + "." + name
}
