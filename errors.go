package gitscope

import "errors"

var (
	// ErrUsage indicates malformed arguments: an unsupported argument type,
	// a nested list, an empty variable name or a duplicate write target.
	ErrUsage = errors.New("invalid arguments")
	// ErrNoRepository indicates a repository is required but none was found
	// at the given location.
	ErrNoRepository = errors.New("no repository found")
	// ErrMultiValue indicates the underlying store returned several values
	// for a single variable. This layer only supports scalar variables.
	ErrMultiValue = errors.New("variable has multiple values")
	// ErrUnknownScope indicates a scope string that could not be parsed.
	ErrUnknownScope = errors.New("unknown scope")
)
