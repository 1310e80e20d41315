package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lamblisp/lamb/internal/cli/cmd"
	"github.com/lamblisp/lamb/internal/log"
)

// timeout bounds how long the end-to-end eval is allowed to run; a tail-recursive loop of any
// depth (scenario 2 of the design) must finish well under this.
const timeout = 2 * time.Second

type testHarness struct {
	*testing.T
}

func (testHarness) Context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// scriptFile writes src to a temp file and returns its path, for feeding to the eval command the
// same way a user would invoke `lamb eval program.scm`.
func (testHarness) scriptFile(src string) string {
	dir := os.TempDir()
	f, err := os.CreateTemp(dir, "lamb-*.scm")
	if err != nil {
		panic(err)
	}
	defer f.Close()

	if _, err := f.WriteString(src); err != nil {
		panic(err)
	}

	return f.Name()
}

// TestEvalScenarios runs the worked scenarios of this design's scenario table end-to-end through the
// `eval` command, exercising the whole pipeline: reader, prelude, evaluator/trampoline, printer.
func TestEvalScenarios(tt *testing.T) {
	t := testHarness{tt}

	tcs := []struct {
		name   string
		src    string
		expect string
	}{
		{
			name:   "arithmetic",
			src:    `(+ 1 2 3)`,
			expect: "6",
		},
		{
			name: "deep tail recursion does not overflow the host stack",
			src: `(define (count-down n) (if (= n 0) 0 (count-down (- n 1))))
			 (count-down 100000)`,
			expect: "0",
		},
		{
			name: "set! mutates the innermost frame only",
			src: `(let ((x 1))
			 (let ((x 2)) (set! x 3))
			 x)`,
			expect: "1",
		},
		{
			name:   "quasiquote with unquote and unquote-splicing",
			src:    "`(1 ,(+ 1 1) ,@(list 3 4) 5)",
			expect: "(1 2 3 4 5)",
		},
		{
			name: "define-macro swap",
			src: `(define-macro swap
			 (lambda (a b) ` + "`" + `(let ((t ,a)) (set! ,a ,b) (set! ,b t))))
			 (define x 1)
			 (define y 2)
			 (swap x y)
			 (list x y)`,
			expect: "(2 1)",
		},
	}

	for _, tc := range tcs {
		tc := tc

		tt.Run(tc.name, func(tt *testing.T) {
			ctx, cancel := t.Context()
			defer cancel()

			path := t.scriptFile(tc.src)
			defer os.Remove(path)

			var out bytes.Buffer

			logger := log.NewFormattedLogger(&bytes.Buffer{})
			log.LogLevel.Set(log.Error)

			code := cmd.Eval().Run(ctx, []string{path}, &out, logger)

			if code != 0 {
				tt.Fatalf("eval: exit code %d, output: %s", code, out.String())
			}

			if got := strings.TrimSpace(out.String()); got != tc.expect {
				tt.Errorf("eval %s: got %q, want %q", filepath.Base(path), got, tc.expect)
			}
		})
	}
}

// TestEvalCarOfEmptyList checks the design scenario 6: (car '()) is a type-error, reported as a
// non-zero exit rather than a panic.
func TestEvalCarOfEmptyList(tt *testing.T) {
	t := testHarness{tt}

	ctx, cancel := t.Context()
	defer cancel()

	path := t.scriptFile(`(car '())`)
	defer os.Remove(path)

	var out bytes.Buffer
	logger := log.NewFormattedLogger(&bytes.Buffer{})
	log.LogLevel.Set(log.Error)

	code := cmd.Eval().Run(ctx, []string{path}, &out, logger)

	if code == 0 {
		tt.Fatalf("eval: expected non-zero exit for (car '()), output: %s", out.String())
	}
}
