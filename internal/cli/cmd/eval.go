package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/lamblisp/lamb/internal/cli"
	"github.com/lamblisp/lamb/internal/log"
	"github.com/lamblisp/lamb/internal/prelude"
	"github.com/lamblisp/lamb/internal/runtime"
	"github.com/lamblisp/lamb/internal/syntax"
)

// Eval runs a script file to completion, the non-interactive counterpart of Repl: load input,
// build a VM, run it, report the outcome with an exit code.
func Eval() cli.Command {
	return &evalCmd{log: log.DefaultLogger()}
}

type evalCmd struct {
	logLevel slog.Level
	log      *log.Logger
}

func (evalCmd) Description() string {
	return "evaluate a script file"
}

func (evalCmd) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `eval program.scm

Evaluates every form in program.scm in sequence and prints the value of the last one.`)

	return err
}

func (e *evalCmd) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("eval", flag.ExitOnError)
	fs.Func("loglevel", "set log `level`", func(s string) error {
		return e.logLevel.UnmarshalText([]byte(s))
	})

	return fs
}

func (e *evalCmd) Run(ctx context.Context, args []string, out io.Writer, logger *log.Logger) int {
	if len(args) == 0 {
		fmt.Fprintln(out, "eval: missing script argument")
		return 1
	}

	log.LogLevel.Set(e.logLevel)

	file, err := os.Open(args[0])
	if err != nil {
		logger.Error("eval: open failed", "file", args[0], "err", err)
		return 1
	}
	defer file.Close()

	vm := runtime.Setup(
		runtime.WithLogger(logger),
		runtime.WithStdPorts(os.Stdin, out, os.Stderr),
	)
	defer vm.Teardown()

	if err := prelude.Load(vm); err != nil {
		logger.Error("prelude: load failed", "err", err)
		return 2
	}

	forms, err := syntax.ReadAll(vm, file)
	if err != nil {
		logger.Error("eval: parse failed", "file", args[0], "err", err)
		return 1
	}

	rootDepth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(rootDepth)

	for _, form := range forms {
		vm.Heap.PushRoot(form)
	}

	var result *runtime.Cell

	for _, form := range forms {
		select {
		case <-ctx.Done():
			logger.Warn("eval: cancelled")
			return 2
		default:
		}

		result, err = vm.Eval(form, vm.BaseEnv)
		if err != nil {
			logger.Error("eval: error", "err", err)
			return 1
		}
	}

	if result != nil && result != vm.Singletons.Void {
		fmt.Fprintln(out, syntax.Write(vm, result, false))
	}

	return 0
}
