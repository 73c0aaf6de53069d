package gitscope

import "fmt"

// Mode describes what a Var asks for: reading a value, setting one or
// removing one.
type Mode int

const (
	// ModeQuery reads the current value of a variable.
	ModeQuery Mode = iota
	// ModeSet assigns a value to a variable.
	ModeSet
	// ModeUnset removes a variable from its scope. Unlike setting an empty
	// string this deletes the entry entirely.
	ModeUnset
)

// Var is a single variable request. Build one with Query, Assign or Remove.
type Var struct {
	Name  string
	Value string
	Mode  Mode
}

// Query requests the current value of name.
func Query(name string) Var {
	return Var{Name: name, Mode: ModeQuery}
}

// Assign sets name to value.
func Assign(name, value string) Var {
	return Var{Name: name, Value: value, Mode: ModeSet}
}

// Remove unsets name.
func Remove(name string) Var {
	return Var{Name: name, Mode: ModeUnset}
}

// Normalize flattens a variadic argument list into an ordered Var list.
//
// Each argument may be a bare string (a query), a Var, or a single level of
// []string, []Var or []any whose elements follow the same rules. Slices
// nested inside slices and any other types are usage errors. Duplicate names
// pass through unchanged, later entries win at merge time.
//
// The second return is true iff every entry is a query, which is the signal
// for the read-only path in GetOrSet.
func Normalize(args ...any) ([]Var, bool, error) {
	vars := make([]Var, 0, len(args))

	for _, arg := range args {
		switch a := arg.(type) {
		case string:
			vars = append(vars, Query(a))
		case Var:
			vars = append(vars, a)
		case []string:
			for _, name := range a {
				vars = append(vars, Query(name))
			}
		case []Var:
			vars = append(vars, a...)
		case []any:
			for _, el := range a {
				switch e := el.(type) {
				case string:
					vars = append(vars, Query(e))
				case Var:
					vars = append(vars, e)
				default:
					return nil, false, fmt.Errorf("%w: lists must not be nested (got %T)", ErrUsage, el)
				}
			}
		default:
			return nil, false, fmt.Errorf("%w: unsupported argument type %T", ErrUsage, arg)
		}
	}

	isQuery := true
	for _, v := range vars {
		if v.Name == "" {
			return nil, false, fmt.Errorf("%w: variable name must not be empty", ErrUsage)
		}
		if v.Mode != ModeQuery {
			isQuery = false
		}
	}

	return vars, isQuery, nil
}
