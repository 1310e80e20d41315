// cmd/lamb is the command-line interface to lamb, an embeddable Scheme-family interpreter.
package main

import (
	"context"
	"os"

	"github.com/lamblisp/lamb/internal/cli"
	"github.com/lamblisp/lamb/internal/cli/cmd"
)

var commands = []cli.Command{
	cmd.Repl(),
	cmd.Eval(),
	cmd.Snapshot(),
}

// Entry point.
func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
