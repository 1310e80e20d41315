package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lamblisp/lamb/internal/cli"
	"github.com/lamblisp/lamb/internal/log"
	"github.com/lamblisp/lamb/internal/prelude"
	"github.com/lamblisp/lamb/internal/runtime"
	"github.com/lamblisp/lamb/internal/syntax"
)

// Snapshot loads a script and writes out a heap-image snapshot of every top-level binding it
// left behind. It exists mostly so the feature is reachable from the command line, not just from
// internal/syntax's tests.
func Snapshot() cli.Command {
	return &snapshotCmd{}
}

type snapshotCmd struct{}

func (snapshotCmd) Description() string {
	return "capture a heap-image snapshot of a script's top-level bindings"
}

func (snapshotCmd) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `snapshot program.scm

Evaluates program.scm and prints a snapshot of its top-level bindings in
internal/encoding's hex-record format.`)

	return err
}

func (snapshotCmd) FlagSet() *cli.FlagSet {
	return flag.NewFlagSet("snapshot", flag.ExitOnError)
}

func (snapshotCmd) Run(_ context.Context, args []string, out io.Writer, logger *log.Logger) int {
	if len(args) == 0 {
		fmt.Fprintln(out, "snapshot: missing script argument")
		return 1
	}

	file, err := os.Open(args[0])
	if err != nil {
		logger.Error("snapshot: open failed", "file", args[0], "err", err)
		return 1
	}
	defer file.Close()

	vm := runtime.Setup(runtime.WithLogger(logger))
	defer vm.Teardown()

	if err := prelude.Load(vm); err != nil {
		logger.Error("prelude: load failed", "err", err)
		return 2
	}

	forms, err := syntax.ReadAll(vm, file)
	if err != nil {
		logger.Error("snapshot: parse failed", "err", err)
		return 1
	}

	rootDepth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(rootDepth)

	for _, form := range forms {
		vm.Heap.PushRoot(form)
	}

	for _, form := range forms {
		if _, err := vm.Eval(form, vm.BaseEnv); err != nil {
			logger.Error("snapshot: eval failed", "err", err)
			return 1
		}
	}

	snap := syntax.Capture(vm, vm.BaseEnv)

	text, err := snap.MarshalText()
	if err != nil {
		logger.Error("snapshot: marshal failed", "err", err)
		return 1
	}

	_, err = out.Write(text)

	return boolToCode(err == nil)
}

func boolToCode(ok bool) int {
	if ok {
		return 0
	}

	return 1
}
