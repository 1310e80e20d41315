package syntax

// reader_test.go exercises the recursive-descent reader (reader.go) against this design's grammar.

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lamblisp/lamb/internal/runtime"
)

func TestReader_Atoms(tt *testing.T) {
	tt.Parallel()

	vm := runtime.Setup()
	defer vm.Teardown()

	forms, err := ReadString(vm, `42 foo "hi there" #t #f`)
	require.NoError(tt, err)
	require.Len(tt, forms, 5)

	assert.Equal(tt, "42", Write(vm, forms[0], false))
	assert.Equal(tt, "foo", Write(vm, forms[1], false))
	assert.Equal(tt, "hi there", Write(vm, forms[2], true))
	assert.True(tt, forms[3].Truthy())
	assert.False(tt, forms[4].Truthy())
}

func TestReader_NestedLists(tt *testing.T) {
	tt.Parallel()

	vm := runtime.Setup()
	defer vm.Teardown()

	forms, err := ReadString(vm, `(1 (2 3) 4)`)
	require.NoError(tt, err)
	require.Len(tt, forms, 1)

	assert.Equal(tt, "(1 (2 3) 4)", Write(vm, forms[0], false))
}

func TestReader_QuoteAbbreviations(tt *testing.T) {
	tt.Parallel()

	vm := runtime.Setup()
	defer vm.Teardown()

	tcs := []struct {
		src  string
		want string
	}{
		{"'x", "(quote x)"},
		{"`x", "(quasiquote x)"},
		{",x", "(unquote x)"},
		{",@x", "(unquote-splicing x)"},
	}

	// The leaf printer shows the expanded list; syntax.Write would restore the abbreviation.
	for _, tc := range tcs {
		forms, err := ReadString(vm, tc.src)
		require.NoError(tt, err, tc.src)
		require.Len(tt, forms, 1, tc.src)
		assert.Equal(tt, tc.want, vm.WriteString(forms[0], false), tc.src)
	}
}

func TestReader_CommentsAreSkipped(tt *testing.T) {
	tt.Parallel()

	vm := runtime.Setup()
	defer vm.Teardown()

	src := "; a line comment\n1 #| a block\ncomment |# 2 #;3 4"
	forms, err := ReadString(vm, src)
	require.NoError(tt, err)
	require.Len(tt, forms, 3)

	assert.Equal(tt, "1", Write(vm, forms[0], false))
	assert.Equal(tt, "2", Write(vm, forms[1], false))
	assert.Equal(tt, "4", Write(vm, forms[2], false))
}

func TestReader_SharpConstantsAfterWhitespace(tt *testing.T) {
	tt.Parallel()

	vm := runtime.Setup()
	defer vm.Teardown()

	// Leading whitespace routes these through the atmosphere scanner's '#' dispatch before
	// the token scanner sees them; the '#' must survive that hand-off.
	forms, err := ReadString(vm, "  #t  #(1 2)  #\\a")
	require.NoError(tt, err)
	require.Len(tt, forms, 3)

	assert.True(tt, forms[0].Truthy())
	assert.Equal(tt, "#(1 2)", Write(vm, forms[1], false))
	assert.Equal(tt, "#\\a", Write(vm, forms[2], false))
}

func TestReader_RadixAndExactnessPrefixes(tt *testing.T) {
	tt.Parallel()

	vm := runtime.Setup()
	defer vm.Teardown()

	tcs := []struct {
		src  string
		want string
	}{
		{"#x10", "16"},
		{"#b101", "5"},
		{"#o17", "15"},
		{"#d42", "42"},
		{"#e3.0", "3"},
		{"#i3", "3"},
	}

	for _, tc := range tcs {
		forms, err := ReadString(vm, tc.src)
		require.NoError(tt, err, tc.src)
		require.Len(tt, forms, 1, tc.src)
		assert.Equal(tt, tc.want, Write(vm, forms[0], false), tc.src)
	}
}

func TestReader_DottedList(tt *testing.T) {
	tt.Parallel()

	vm := runtime.Setup()
	defer vm.Teardown()

	forms, err := ReadString(vm, "(1 2 . 3)")
	require.NoError(tt, err)
	require.Len(tt, forms, 1)

	assert.Equal(tt, "(1 2 . 3)", Write(vm, forms[0], false))
}

func TestReader_ReadReturnsEOFAtEndOfStream(tt *testing.T) {
	tt.Parallel()

	vm := runtime.Setup()
	defer vm.Teardown()

	r := NewReader(vm, strings.NewReader("1"))

	_, err := r.Read()
	require.NoError(tt, err)

	_, err = r.Read()
	assert.ErrorIs(tt, err, io.EOF)
}

func TestReader_UnterminatedStringIsSyntaxError(tt *testing.T) {
	tt.Parallel()

	vm := runtime.Setup()
	defer vm.Teardown()

	r := NewReader(vm, strings.NewReader(`"never closed`))

	_, err := r.Read()
	require.Error(tt, err)

	var synErr *SyntaxError
	assert.ErrorAs(tt, err, &synErr)
}

func TestReader_ReadAllContinuesPastAnError(tt *testing.T) {
	tt.Parallel()

	vm := runtime.Setup()
	defer vm.Teardown()

	// The first datum is well-formed; the stray close-paren that follows should not stop the
	// reader from continuing past it, per ReadAll's errors.Join contract.
	forms, err := ReadAll(vm, strings.NewReader("1 ) 2"))
	require.Error(tt, err)
	assert.Len(tt, forms, 2)
}
