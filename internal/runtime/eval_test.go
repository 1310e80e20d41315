package runtime

// eval_test.go exercises the trampoline evaluator (eval.go) end to end against this design's
// scenario table, building forms directly as cells since this package cannot import the reader
// (internal/syntax imports internal/runtime, not the other way around).

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval_SelfEvaluatingAndArithmetic(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	form := vm.List(vm.symbol("+"), vm.NewInt(1), vm.NewInt(2), vm.NewInt(3))

	got, err := vm.Eval(form, vm.BaseEnv)
	require.NoError(tt, err)
	assert.Equal(tt, int64(6), got.Int())
}

func TestEval_IfTakesTrueBranch(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	form := vm.List(vm.symbol("if"), vm.Singletons.True, vm.NewInt(1), vm.NewInt(2))

	got, err := vm.Eval(form, vm.BaseEnv)
	require.NoError(tt, err)
	assert.Equal(tt, int64(1), got.Int())
}

func TestEval_IfTakesFalseBranch(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	form := vm.List(vm.symbol("if"), vm.Singletons.False, vm.NewInt(1), vm.NewInt(2))

	got, err := vm.Eval(form, vm.BaseEnv)
	require.NoError(tt, err)
	assert.Equal(tt, int64(2), got.Int())
}

func TestEval_QuoteReturnsArgumentUnevaluated(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	quoted := vm.List(vm.symbol("never-bound"), vm.NewInt(1))
	form := vm.List(vm.symbol("quote"), quoted)

	got, err := vm.Eval(form, vm.BaseEnv)
	require.NoError(tt, err)
	assert.True(tt, Eqv(got, quoted))
}

// TestEval_SetBangMutatesInnermostFrame checks set! frame-locality: set! inside a let only
// mutates the let's own frame, never the outer one.
func TestEval_SetBangMutatesInnermostFrame(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	x := vm.symbol("x")
	vm.Bind(vm.BaseEnv, x, vm.NewInt(0))

	// (let ((x 1)) (set! x 2) x)
	bindings := vm.List(vm.List(x, vm.NewInt(1)))
	body1 := vm.List(vm.symbol("set!"), x, vm.NewInt(2))
	body2 := x
	letForm := vm.List(vm.symbol("let"), bindings, body1, body2)

	got, err := vm.Eval(letForm, vm.BaseEnv)
	require.NoError(tt, err)
	assert.Equal(tt, int64(2), got.Int())

	outer, err := vm.Ref(vm.BaseEnv, x)
	require.NoError(tt, err)
	assert.Equal(tt, int64(0), outer.Int(), "set! inside let leaked into the outer frame")
}

// TestEval_TailRecursionDoesNotGrowGoStack drives a deeply tail-recursive Scheme loop through
// Eval and relies on Go's own stack-overflow behavior never triggering: if the trampoline failed
// to loop in place, this test would crash the test binary rather than fail an assertion.
func TestEval_TailRecursionDoesNotGrowGoStack(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	env := vm.PushFrame(vm.BaseEnv, 0)

	loop := vm.symbol("loop")
	n := vm.symbol("n")

	// (define (loop n) (if (= n 0) 'done (loop (- n 1))))
	formals := vm.List(n)
	test := vm.List(vm.symbol("="), n, vm.NewInt(0))
	thenExpr := vm.List(vm.symbol("quote"), vm.symbol("done"))
	elseExpr := vm.List(loop, vm.List(vm.symbol("-"), n, vm.NewInt(1)))
	ifExpr := vm.List(vm.symbol("if"), test, thenExpr, elseExpr)
	lambda := vm.List(vm.symbol("lambda"), formals, ifExpr)

	vm.Bind(env, loop, mustEval(tt, vm, lambda, env))

	call := vm.List(loop, vm.NewInt(100000))

	got, err := vm.Eval(call, env)
	require.NoError(tt, err)
	assert.Equal(tt, "done", got.Name())
}

func mustEval(tt *testing.T, vm *VM, expr, env *Cell) *Cell {
	tt.Helper()

	got, err := vm.Eval(expr, env)
	require.NoError(tt, err)

	return got
}

// TestEval_UndefInValuePositionRaisesTypeError checks the void/undef split: a binding whose
// value does not exist yet (here, a define with no value; the same state a letrec binding is in
// before its init form runs) is a type-error when referenced, where void would pass silently.
func TestEval_UndefInValuePositionRaisesTypeError(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	x := vm.symbol("x")

	_, err := vm.Eval(vm.List(vm.symbol("define"), x), vm.BaseEnv)
	require.NoError(tt, err)

	_, err = vm.Eval(x, vm.BaseEnv)
	require.Error(tt, err)
	assert.ErrorIs(tt, err, ErrType)
}

func TestEval_UnboundVariableRaisesError(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	_, err := vm.Eval(vm.symbol("never-bound-anywhere"), vm.BaseEnv)
	assert.Error(tt, err)
}

func TestEval_CarOfEmptyListRaisesTypeError(tt *testing.T) {
	tt.Parallel()

	vm := Setup()
	defer vm.Teardown()

	form := vm.List(vm.symbol("car"), vm.List(vm.symbol("quote"), vm.Singletons.Nil))

	_, err := vm.Eval(form, vm.BaseEnv)
	assert.ErrorIs(tt, err, ErrType)
}
