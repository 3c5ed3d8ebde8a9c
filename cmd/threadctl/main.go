// Package main implements threadctl, a small command line client for a
// running threadflow server. It submits tasks and watches the completion
// history.
package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
)

// options holds flags shared by every command.
type options struct {
	Server  string `long:"server" short:"s" env:"THREADFLOW_SERVER" default:"http://localhost:8081" description:"Base URL of the threadflow server"`
	NoColor bool   `long:"no-color" description:"Disable colored output"`
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run parses args and executes the selected command, returning the exit code.
func run(args []string) int {
	var opts options
	parser := newParser(&opts)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return 0
		}
		return 1
	}
	return 0
}

// newParser wires the commands to a go-flags parser sharing opts.
func newParser(opts *options) *flags.Parser {
	parser := flags.NewParser(opts, flags.Default)
	_, _ = parser.AddCommand("submit",
		"Submit tasks",
		"Submit one or more tasks with the given payload and priority.",
		&submitCommand{opts: opts, out: os.Stdout})
	_, _ = parser.AddCommand("watch",
		"Watch completed tasks",
		"Poll the completion history and print tasks as they finish.",
		&watchCommand{opts: opts, out: os.Stdout})

	return parser
}
