package syntax

// reader.go is the recursive-descent reader for this design's grammar: atoms, strings, characters,
// quote abbreviations, lists, vectors and bytevectors. The Reader struct holds a log.Logger, reads
// one unit of input and hands back either a result or an error (ReadAll accumulates SyntaxErrors) --
// token-oriented and recursive-descent rather than line-oriented, since s-expressions nest
// arbitrarily and cannot be parsed a line at a time.

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lamblisp/lamb/internal/log"
	"github.com/lamblisp/lamb/internal/runtime"
)

// SyntaxError reports a malformed datum by line number and a detail string, rather than a byte
// offset, since the reader has no notion of a memory location.
type SyntaxError struct {
	Line   int
	Detail string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: line %d: %s", e.Line, e.Detail)
}

func (e *SyntaxError) Unwrap() error { return runtime.ErrRead }

// Reader reads data from an input stream and constructs Cells via a VM, per this design's "Read"
// entry in the embedded API.
type Reader struct {
	in   *bufio.Reader
	vm   *runtime.VM
	log  *log.Logger
	line int

	// peeked holds one look-ahead token, filled by peekToken and drained by nextToken.
	peeked  *token
	hasPeek bool
}

// NewReader creates a Reader over r that builds Cells through vm.
func NewReader(vm *runtime.VM, r io.Reader) *Reader {
	return &Reader{
		in:   bufio.NewReader(r),
		vm:   vm,
		log:  vm.Logger(),
		line: 1,
	}
}

// Read parses and returns the next datum. It returns io.EOF when the stream is
// exhausted with no further data.
func (r *Reader) Read() (*runtime.Cell, error) {
	tok, err := r.nextToken()
	if err != nil {
		return nil, err
	}

	if tok.kind == tokEOF {
		return nil, io.EOF
	}

	return r.parseFrom(tok)
}

// ReadAll reads every datum in src: it keeps reading until EOF, collecting every SyntaxError
// encountered (via errors.Join) rather than stopping at the first one, and returns every datum
// successfully parsed regardless of later errors.
func ReadAll(vm *runtime.VM, src io.Reader) ([]*runtime.Cell, error) {
	r := NewReader(vm, src)

	// Each completed datum is rooted until the whole stream is read; callers holding the
	// returned slice across evaluation must re-root the forms themselves.
	depth := vm.Heap.RootDepth()
	defer vm.Heap.TruncateRoots(depth)

	var (
		forms []*runtime.Cell
		errs  []error
	)

	for {
		c, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			errs = append(errs, err)

			continue
		}

		vm.Heap.PushRoot(c)
		forms = append(forms, c)
	}

	return forms, errors.Join(errs...)
}

// ReadString is ReadAll over a string, for callers loading a small embedded script
// (internal/prelude) or a REPL line.
func ReadString(vm *runtime.VM, src string) ([]*runtime.Cell, error) {
	return ReadAll(vm, strings.NewReader(src))
}

func (r *Reader) errorf(format string, args ...any) error {
	return &SyntaxError{Line: r.line, Detail: fmt.Sprintf(format, args...)}
}

// --- Lexer ------------------------------------------------------------------

func (r *Reader) nextToken() (token, error) {
	if r.hasPeek {
		r.hasPeek = false

		return *r.peeked, nil
	}

	return r.scanToken()
}

func (r *Reader) peekToken() (token, error) {
	if !r.hasPeek {
		tok, err := r.scanToken()
		if err != nil {
			return token{}, err
		}

		r.peeked = &tok
		r.hasPeek = true
	}

	return *r.peeked, nil
}

func (r *Reader) scanToken() (token, error) {
	if err := r.skipAtmosphere(); err != nil {
		return token{}, err
	}

	ch, _, err := r.in.ReadRune()
	if err == io.EOF {
		return token{kind: tokEOF}, nil
	}

	if err != nil {
		return token{}, r.errorf("read: %v", err)
	}

	switch ch {
	case '(', '[':
		return token{kind: tokLParen, line: r.line}, nil
	case ')', ']':
		return token{kind: tokRParen, line: r.line}, nil
	case '\'':
		return token{kind: tokQuote, line: r.line}, nil
	case '`':
		return token{kind: tokQuasiquote, line: r.line}, nil
	case ',':
		next, _, err := r.in.ReadRune()
		if err == nil && next == '@' {
			return token{kind: tokUnquoteSplit, line: r.line}, nil
		}

		if err == nil {
			_ = r.in.UnreadRune()
		}

		return token{kind: tokUnquote, line: r.line}, nil
	case '"':
		return r.scanString()
	case '#':
		return r.scanHash()
	default:
		_ = r.in.UnreadRune()

		return r.scanAtom()
	}
}

// skipAtmosphere consumes whitespace, line comments (`;`), block comments (`#| ... |#`, which
// may nest) and datum comments (`#;datum`), per the design.
func (r *Reader) skipAtmosphere() error {
	for {
		ch, _, err := r.in.ReadRune()
		if err == io.EOF {
			return nil
		}

		if err != nil {
			return r.errorf("read: %v", err)
		}

		switch {
		case ch == '\n':
			r.line++
		case isSpace(ch):
			continue
		case ch == ';':
			for {
				c, _, err := r.in.ReadRune()
				if err == io.EOF || c == '\n' {
					break
				}

				if err != nil {
					return r.errorf("read: %v", err)
				}
			}

			r.line++
		case ch == '#':
			// Put the '#' back and peek past it: bufio can unread at most one rune, so the
			// two-byte comment openers (#| and #;) are dispatched by Peek+Discard instead.
			_ = r.in.UnreadRune()

			peek, _ := r.in.Peek(2)

			switch {
			case len(peek) == 2 && peek[1] == '|':
				_, _ = r.in.Discard(2)

				if err := r.skipBlockComment(); err != nil {
					return err
				}

				continue
			case len(peek) == 2 && peek[1] == ';':
				_, _ = r.in.Discard(2)

				if _, err := r.Read(); err != nil && !errors.Is(err, io.EOF) {
					return err
				}

				continue
			default:
				// '#' begins a datum (#t, #\x, #(, #x...); scanToken takes it from here.
				return nil
			}
		default:
			_ = r.in.UnreadRune()

			return nil
		}
	}
}

func (r *Reader) skipBlockComment() error {
	depth := 1

	for depth > 0 {
		ch, _, err := r.in.ReadRune()
		if err != nil {
			return r.errorf("unterminated block comment")
		}

		switch ch {
		case '\n':
			r.line++
		case '#':
			if n, _, _ := r.in.ReadRune(); n == '|' {
				depth++
			} else {
				_ = r.in.UnreadRune()
			}
		case '|':
			if n, _, _ := r.in.ReadRune(); n == '#' {
				depth--
			} else {
				_ = r.in.UnreadRune()
			}
		}
	}

	return nil
}

func (r *Reader) scanString() (token, error) {
	var b strings.Builder

	for {
		ch, _, err := r.in.ReadRune()
		if err != nil {
			return token{}, r.errorf("unterminated string")
		}

		if ch == '"' {
			return token{kind: tokString, text: b.String(), line: r.line}, nil
		}

		if ch == '\\' {
			esc, _, err := r.in.ReadRune()
			if err != nil {
				return token{}, r.errorf("unterminated string escape")
			}

			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case '"', '\\':
				b.WriteRune(esc)
			case '\n':
				r.line++
				// line continuation: swallow following intraline whitespace
				for {
					c, _, err := r.in.ReadRune()
					if err != nil || !isSpace(c) || c == '\n' {
						if err == nil {
							_ = r.in.UnreadRune()
						}

						break
					}
				}
			default:
				b.WriteRune(esc)
			}

			continue
		}

		if ch == '\n' {
			r.line++
		}

		b.WriteRune(ch)
	}
}

func (r *Reader) scanHash() (token, error) {
	ch, _, err := r.in.ReadRune()
	if err != nil {
		return token{}, r.errorf("unexpected eof after #")
	}

	switch ch {
	case '(':
		return token{kind: tokVectorOpen, line: r.line}, nil
	case 't':
		r.consumeRestOfWord("rue")
		return token{kind: tokBool, text: "true", line: r.line}, nil
	case 'f':
		r.consumeRestOfWord("alse")
		return token{kind: tokBool, text: "false", line: r.line}, nil
	case '\\':
		return r.scanChar()
	case 'x', 'X', 'b', 'B', 'o', 'O', 'd', 'D', 'e', 'E', 'i', 'I':
		// Sharp-constant numbers: radix (#x #b #o #d) and exactness (#e #i) prefixes.
		rest, err := r.scanAtomText()
		if err != nil {
			return token{}, err
		}

		return token{kind: tokSharpNum, text: string(ch) + rest, line: r.line}, nil
	case 'u':
		// #u8(
		for _, want := range "8(" {
			c, _, err := r.in.ReadRune()
			if err != nil || c != want {
				return token{}, r.errorf("malformed bytevector literal")
			}
		}

		return token{kind: tokBytevecOpen, line: r.line}, nil
	default:
		return token{}, r.errorf("unsupported # syntax: #%c", ch)
	}
}

// consumeRestOfWord greedily consumes suffix if the following runes match it exactly
// (accepting both `#t` and `#true` forms). On a mismatch only the mismatching rune is pushed
// back; runes of the suffix matched before it stay consumed.
func (r *Reader) consumeRestOfWord(suffix string) {
	for _, want := range suffix {
		c, _, err := r.in.ReadRune()
		if err != nil {
			return
		}

		if c != want {
			_ = r.in.UnreadRune()

			return
		}
	}
}

func (r *Reader) scanChar() (token, error) {
	ch, _, err := r.in.ReadRune()
	if err != nil {
		return token{}, r.errorf("unterminated character literal")
	}

	var b strings.Builder
	b.WriteRune(ch)

	for {
		next, _, err := r.in.ReadRune()
		if err != nil {
			break
		}

		if isDelimiter(next) {
			_ = r.in.UnreadRune()

			break
		}

		b.WriteRune(next)
	}

	return token{kind: tokChar, text: b.String(), line: r.line}, nil
}

func (r *Reader) scanAtom() (token, error) {
	text, err := r.scanAtomText()
	if err != nil {
		return token{}, err
	}

	if text == "." {
		return token{kind: tokDot, line: r.line}, nil
	}

	return token{kind: tokAtom, text: text, line: r.line}, nil
}

// scanAtomText consumes runes up to the next delimiter.
func (r *Reader) scanAtomText() (string, error) {
	var b strings.Builder

	for {
		ch, _, err := r.in.ReadRune()
		if err == io.EOF {
			break
		}

		if err != nil {
			return "", r.errorf("read: %v", err)
		}

		if isDelimiter(ch) {
			_ = r.in.UnreadRune()

			break
		}

		b.WriteRune(ch)
	}

	return b.String(), nil
}

// --- Parser ------------------------------------------------------------------

func (r *Reader) parseFrom(tok token) (*runtime.Cell, error) {
	switch tok.kind {
	case tokEOF:
		return nil, io.EOF
	case tokLParen:
		return r.parseList()
	case tokVectorOpen:
		return r.parseVector()
	case tokBytevecOpen:
		return r.parseBytevector()
	case tokQuote:
		return r.parseAbbrev("quote")
	case tokQuasiquote:
		return r.parseAbbrev("quasiquote")
	case tokUnquote:
		return r.parseAbbrev("unquote")
	case tokUnquoteSplit:
		return r.parseAbbrev("unquote-splicing")
	case tokString:
		return r.vm.NewString(tok.text), nil
	case tokBool:
		return r.vm.Bool(tok.text == "true"), nil
	case tokChar:
		return r.parseCharLiteral(tok.text)
	case tokAtom:
		return r.parseAtom(tok.text)
	case tokSharpNum:
		return r.parseSharpNumber(tok.text)
	case tokRParen:
		return nil, r.errorf("unexpected )")
	case tokDot:
		return nil, r.errorf("unexpected .")
	default:
		return nil, r.errorf("unexpected token")
	}
}

func (r *Reader) parseAbbrev(name string) (*runtime.Cell, error) {
	datum, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, r.errorf("unexpected eof after %s", name)
		}

		return nil, err
	}

	depth := r.vm.Heap.RootDepth()
	defer r.vm.Heap.TruncateRoots(depth)
	r.vm.Heap.PushRoot(datum)

	sym := r.vm.Oblist.Intern(name)

	return r.vm.List(sym, datum), nil
}

func (r *Reader) parseList() (*runtime.Cell, error) {
	// Parsed elements are rooted as they accumulate: they are reachable from nothing else
	// until the closing paren builds the list, and parsing the next element allocates.
	depth := r.vm.Heap.RootDepth()
	defer r.vm.Heap.TruncateRoots(depth)

	var elems []*runtime.Cell

	for {
		tok, err := r.nextToken()
		if err != nil {
			return nil, err
		}

		switch tok.kind {
		case tokEOF:
			return nil, r.errorf("unexpected eof in list")
		case tokRParen:
			return r.vm.List(elems...), nil
		case tokDot:
			tail, err := r.Read()
			if err != nil {
				return nil, err
			}

			r.vm.Heap.PushRoot(tail)

			closeTok, err := r.nextToken()
			if err != nil {
				return nil, err
			}

			if closeTok.kind != tokRParen {
				return nil, r.errorf("malformed dotted list")
			}

			result := tail
			for i := len(elems) - 1; i >= 0; i-- {
				result = r.vm.Cons(elems[i], result)
			}

			return result, nil
		default:
			datum, err := r.parseFrom(tok)
			if err != nil {
				return nil, err
			}

			r.vm.Heap.PushRoot(datum)
			elems = append(elems, datum)
		}
	}
}

func (r *Reader) parseVector() (*runtime.Cell, error) {
	depth := r.vm.Heap.RootDepth()
	defer r.vm.Heap.TruncateRoots(depth)

	var elems []*runtime.Cell

	for {
		tok, err := r.nextToken()
		if err != nil {
			return nil, err
		}

		if tok.kind == tokRParen {
			return r.vm.NewVector(elems...), nil
		}

		if tok.kind == tokEOF {
			return nil, r.errorf("unexpected eof in vector")
		}

		datum, err := r.parseFrom(tok)
		if err != nil {
			return nil, err
		}

		r.vm.Heap.PushRoot(datum)
		elems = append(elems, datum)
	}
}

func (r *Reader) parseBytevector() (*runtime.Cell, error) {
	var bytes []byte

	for {
		tok, err := r.nextToken()
		if err != nil {
			return nil, err
		}

		if tok.kind == tokRParen {
			return r.vm.NewBytevector(bytes), nil
		}

		if tok.kind != tokAtom {
			return nil, r.errorf("malformed bytevector element")
		}

		n, ok := r.vm.ParseNumber(tok.text)
		if !ok || n.Tag != runtime.TagInt {
			return nil, r.errorf("bytevector element must be an exact integer")
		}

		bytes = append(bytes, byte(n.Int()))
	}
}

func (r *Reader) parseCharLiteral(text string) (*runtime.Cell, error) {
	if len([]rune(text)) == 1 {
		return r.vm.NewChar([]rune(text)[0]), nil
	}

	if rn, ok := namedChars[strings.ToLower(text)]; ok {
		return r.vm.NewChar(rn), nil
	}

	if strings.HasPrefix(text, "x") || strings.HasPrefix(text, "X") {
		var codepoint rune

		if _, err := fmt.Sscanf(text[1:], "%x", &codepoint); err == nil {
			return r.vm.NewChar(codepoint), nil
		}
	}

	return nil, r.errorf("unknown character literal: #\\%s", text)
}

func (r *Reader) parseAtom(text string) (*runtime.Cell, error) {
	if n, ok := r.vm.ParseNumber(text); ok {
		return n, nil
	}

	return r.vm.Oblist.Intern(text), nil
}

// parseSharpNumber handles the sharp-constant number prefixes: a radix (#x, #b, #o, #d) or an
// exactness (#e, #i) prefix followed by the number's digits.
func (r *Reader) parseSharpNumber(text string) (*runtime.Cell, error) {
	if len(text) < 2 {
		return nil, r.errorf("malformed number literal: #%s", text)
	}

	prefix, digits := text[0], text[1:]

	switch prefix {
	case 'x', 'X':
		n, err := strconv.ParseInt(digits, 16, 64)
		if err != nil {
			return nil, r.errorf("malformed hex literal: #%s", text)
		}

		return r.vm.NewInt(n), nil
	case 'b', 'B':
		n, err := strconv.ParseInt(digits, 2, 64)
		if err != nil {
			return nil, r.errorf("malformed binary literal: #%s", text)
		}

		return r.vm.NewInt(n), nil
	case 'o', 'O':
		n, err := strconv.ParseInt(digits, 8, 64)
		if err != nil {
			return nil, r.errorf("malformed octal literal: #%s", text)
		}

		return r.vm.NewInt(n), nil
	case 'd', 'D':
		n, ok := r.vm.ParseNumber(digits)
		if !ok {
			return nil, r.errorf("malformed decimal literal: #%s", text)
		}

		return n, nil
	case 'e', 'E':
		n, ok := r.vm.ParseNumber(digits)
		if !ok {
			return nil, r.errorf("malformed number literal: #%s", text)
		}

		exact, err := r.vm.Exact(n)
		if err != nil {
			return nil, r.errorf("no exact representation: #%s", text)
		}

		return exact, nil
	case 'i', 'I':
		n, ok := r.vm.ParseNumber(digits)
		if !ok {
			return nil, r.errorf("malformed number literal: #%s", text)
		}

		return r.vm.Inexact(n), nil
	default:
		return nil, r.errorf("unsupported number prefix: #%s", text)
	}
}
