// Command gitscope reads and writes git configuration variables across the
// local, global and merged de-facto scope.
//
// Usage:
//
//	gitscope [-scope de-facto|local|global] [-C dir] [key | key=value | key=]...
//
// Bare keys are queried, key=value sets, a trailing = with no value unsets.
// With no operands every resolved variable is printed.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/gitscope/gitscope"
)

func main() {
	scopeFlag := flag.String("scope", "de-facto", "config scope: de-facto, local or global")
	dirFlag := flag.String("C", ".", "resolve the repository from this directory")
	flag.Parse()

	where, err := gitscope.ParseScope(*scopeFlag)
	if err != nil {
		fail("%s", err)
	}

	args, query := parseOperands(flag.Args())

	cs := gitscope.New()
	cs.Notify = func(msg string) {
		color.New(color.FgYellow).Fprintf(os.Stderr, "notice: %s\n", msg)
	}

	snap, err := cs.GetOrSet(where, *dirFlag, args...)
	if err != nil {
		fail("%s", err)
	}

	// the pre-write snapshot is suppressed, only queries print
	if query {
		fmt.Print(snap)
	}
}

// parseOperands turns command line operands into GetOrSet arguments and
// reports whether the invocation is a pure query.
func parseOperands(operands []string) ([]any, bool) {
	args := make([]any, 0, len(operands))
	query := true

	for _, op := range operands {
		name, value, found := strings.Cut(op, "=")
		switch {
		case !found:
			args = append(args, name)
		case value == "":
			args = append(args, gitscope.Remove(name))
			query = false
		default:
			args = append(args, gitscope.Assign(name, value))
			query = false
		}
	}

	return args, query
}

func fail(format string, a ...any) {
	color.New(color.FgRed).Fprintf(os.Stderr, "error: "+format+"\n", a...)
	os.Exit(1)
}
