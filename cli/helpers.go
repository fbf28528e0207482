// ABOUTME: Shared helpers for CLI subcommands
// ABOUTME: Interspersed flag parsing, date formatting, and table writers
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/workspace"
)

// parseArgs parses flags that may appear before or after positional args and
// returns the positional args in order. Everything after a "--" terminator is
// positional.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if terminated(fs, args[:len(args)-len(rest)]) {
			return append(positional, rest...), nil
		}
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// terminated reports whether the parsed tokens ended with a "--" terminator
// rather than a "--" given as a flag's value.
func terminated(fs *flag.FlagSet, parsed []string) bool {
	n := len(parsed)
	if n == 0 || parsed[n-1] != "--" {
		return false
	}
	if n == 1 {
		return true
	}
	prev := parsed[n-2]
	if len(prev) < 2 || prev[0] != '-' || strings.Contains(prev, "=") {
		return true
	}
	f := fs.Lookup(strings.TrimLeft(prev, "-"))
	if f == nil {
		return true
	}
	if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
		return true
	}
	return false
}

func requireOne(positional []string, what string) (string, error) {
	if len(positional) != 1 || positional[0] == "" {
		return "", fmt.Errorf("%s required", what)
	}
	return positional[0], nil
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func formatDue(d *models.Date) string {
	if d == nil || d.IsZero() {
		return "-"
	}
	return d.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// keepGoing reports whether err is only a persistence failure, in which case
// the in-memory change happened and output should still be printed.
func keepGoing(err error) bool {
	return err == nil || errors.Is(err, workspace.ErrPersistence)
}

func flagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}
