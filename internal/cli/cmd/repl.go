package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lamblisp/lamb/internal/cli"
	"github.com/lamblisp/lamb/internal/console"
	"github.com/lamblisp/lamb/internal/log"
	"github.com/lamblisp/lamb/internal/prelude"
	"github.com/lamblisp/lamb/internal/runtime"
	"github.com/lamblisp/lamb/internal/syntax"
)

// Repl is the interactive read-eval-print-loop command, the command/loop harness the design calls
// an external collaborator: build a VM, wire logging, run until the input is exhausted or the
// context is done.
func Repl() cli.Command {
	return &repl{}
}

type repl struct {
	raw bool
}

func (repl) Description() string {
	return "start an interactive read-eval-print loop"
}

func (r repl) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `
repl [ -raw ]

Start an interactive read-eval-print loop against stdin/stdout.`)

	return err
}

func (r *repl) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	fs.BoolVar(&r.raw, "raw", true, "put the terminal in raw mode, if stdin is a TTY")

	return fs
}

// Run evaluates one form at a time from stdin, printing each result to out and unbound/type/etc.
// errors to the VM's error port, until EOF. Read errors and Lisp-level errors are reported on the
// error port and the loop resumes; the only non-zero return is for a prelude that fails to load.
func (r *repl) Run(ctx context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	stdin := io.Reader(os.Stdin)
	stdout := out

	if r.raw {
		if con, err := console.New(os.Stdin, os.Stdout); err == nil {
			defer con.Restore()

			stdin = con.Reader()
			stdout = con.Writer()
		} else if !errors.Is(err, console.ErrNoTTY) {
			logger.Error("console: raw mode failed", "err", err)
		}
	}

	vm := runtime.Setup(
		runtime.WithLogger(logger),
		runtime.WithStdPorts(stdin, stdout, os.Stderr),
	)
	defer vm.Teardown()

	if err := prelude.Load(vm); err != nil {
		logger.Error("prelude: load failed", "err", err)
		return 2
	}

	reader := syntax.NewReader(vm, vm.Ports.Input.PortOf().Reader())
	errOut := vm.Ports.Error.PortOf().Writer()

	for {
		select {
		case <-ctx.Done():
			return 0
		default:
		}

		fmt.Fprint(stdout, "lamb> ")

		form, err := reader.Read()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(stdout)
			return 0
		} else if err != nil {
			fmt.Fprintf(errOut, "read-error: %s\n", err)
			continue
		}

		result, err := vm.Eval(form, vm.BaseEnv)

		var lispErr *runtime.LispError
		switch {
		case errors.As(err, &lispErr):
			fmt.Fprintf(errOut, ";; %s\n", lispErr.Error())
		case err != nil:
			fmt.Fprintf(errOut, ";; error: %s\n", err)
		case result == vm.Singletons.Void:
			// silently discarded, per this design's void/undef open question
		default:
			fmt.Fprintln(stdout, syntax.Write(vm, result, false))
		}

		vm.Step(1000)
	}
}
