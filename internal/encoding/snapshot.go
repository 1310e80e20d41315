// Package encoding serializes a frozen set of top-level bindings -- the "heap image snapshot"
// named in the design -- as a line-oriented hex format based on Intel Hex file-encoding,
// repurposed from object-code records to Lisp snapshot records: the same record shape (prefix,
// length, index, type, optional data, checksum) used to serialize machine-word binaries for a
// loader, adapted here to carry a (name, printed-value) pair captured from a VM's base
// environment instead of a block of machine words, giving tests and hosts a deterministic
// starting heap without re-running the whole prelude script.
//
// Each line is composed of a prefix, length, index, type, (optional data) and a checksum. In
// shorthand:
//
//	:LLIIIITT[DD...]CC
//	0123456789
//
// See [Grammar] for a formal grammar.
//
// # Bugs
//
// This is not a complete implementation of Intel Hex encoding; it is for internal use, only. It
// supports minimal record types, specifically just the data and end-of-file record types.
package encoding

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

const Grammar = `
file = { line } ;
line = ':' len index type data check nl ;
len = byte ;
index = byte byte ;
type = byte ;
data = { byte } ;
byte = hex hex ;
hex = '0' | '1' | '2' | '3' | '4' | '5' | '6' | '7' | '8' | '9'
 | 'a' | 'b' | 'c' | 'd' | 'e' | 'f' | 'A' | 'B' | 'C' | 'D' | 'E' | 'F' ;
nl = '\n' ;
`

// Binding is one frozen (name, printed-value) pair captured from a VM's base environment. Value
// is a reader-roundtrippable rendering (the design invariant 5: equal?(read(write(x)), x)); it is
// produced and consumed by the caller via syntax.Write/syntax.ReadString, not by this package,
// which only knows about bytes -- keeping this package free of a dependency on internal/runtime
// and internal/syntax.
type Binding struct {
	Name  string
	Value string
}

// SnapshotEncoding implements marshalling and unmarshalling of a slice of Binding as Intel-Hex
// shaped records: the same record shape and checksum algorithm as an object-code hex encoder,
// repurposed for a different payload.
type SnapshotEncoding struct {
	Bindings []Binding
}

func (s *SnapshotEncoding) MarshalText() ([]byte, error) {
	var (
		buf   bytes.Buffer
		check byte
	)

	for i, b := range s.Bindings {
		payload := append([]byte(b.Name), 0)
		payload = append(payload, []byte(b.Value)...)

		check = 0

		_ = buf.WriteByte(':')

		enc := hex.NewEncoder(&buf)

		var lenByte [1]byte
		lenByte[0] = byte(len(payload))
		check += lenByte[0]

		if _, err := enc.Write(lenByte[:]); err != nil {
			return buf.Bytes(), err
		}

		var idx [2]byte
		binary.BigEndian.PutUint16(idx[:], uint16(i))
		check += idx[0] + idx[1]

		if _, err := enc.Write(idx[:]); err != nil {
			return buf.Bytes(), err
		}

		var kindByte [1]byte
		kindByte[0] = byte(kindData)

		if _, err := enc.Write(kindByte[:]); err != nil {
			return buf.Bytes(), err
		}

		if _, err := enc.Write(payload); err != nil {
			return buf.Bytes(), err
		}

		for _, by := range payload {
			check += by
		}

		checkByte := [1]byte{1 + ^check}
		if _, err := enc.Write(checkByte[:]); err != nil {
			return buf.Bytes(), err
		}

		buf.WriteByte('\n')
	}

	buf.WriteString(":00000001ff\n")

	return buf.Bytes(), nil
}

func (s *SnapshotEncoding) UnmarshalText(bs []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(bs))

	for scanner.Scan() {
		rec := scanner.Bytes()

		if len(rec) == 0 {
			continue
		} else if rec[0] != ':' {
			return fmt.Errorf("%w: line does not start with ':'", errInvalidHex)
		}

		var dec [1]byte

		if _, err := hex.Decode(dec[:], rec[1:3]); err != nil {
			return fmt.Errorf("%w: len: %s", errInvalidHex, err.Error())
		}

		recLen := dec[0]
		check := dec[0]

		var idxBytes [2]byte
		if _, err := hex.Decode(idxBytes[:], rec[3:7]); err != nil {
			return fmt.Errorf("%w: index: %s", errInvalidHex, err.Error())
		}

		check += idxBytes[0] + idxBytes[1]

		if _, err := hex.Decode(dec[:], rec[7:9]); err != nil {
			return fmt.Errorf("%w: type: %s", errInvalidHex, err.Error())
		}

		recKind := kind(dec[0])
		check += dec[0]

		var recCheck [1]byte
		if _, err := hex.Decode(recCheck[:], rec[len(rec)-2:]); err != nil {
			return fmt.Errorf("%w: check: %s", errInvalidHex, err.Error())
		}

		switch recKind {
		case kindEOF:
			check = 1 + ^check
			if check != recCheck[0] {
				return fmt.Errorf("%w: checksum invalid: %02x != %02x", errInvalidHex, check, recCheck[0])
			}

			return validateBindings(s)
		case kindData:
			if recLen == 0 {
				return fmt.Errorf("%w: empty data record", errInvalidHex)
			}

			payload := make([]byte, recLen)
			if _, err := hex.Decode(payload, rec[9:9+int(recLen)*2]); err != nil {
				return fmt.Errorf("%w: data: %s", errInvalidHex, err.Error())
			}

			for _, by := range payload {
				check += by
			}

			check = 1 + ^check
			if check != recCheck[0] {
				return fmt.Errorf("%w: checksum invalid: %02x != %02x", errInvalidHex, check, recCheck[0])
			}

			sep := bytes.IndexByte(payload, 0)
			if sep < 0 {
				return fmt.Errorf("%w: malformed binding record", errInvalidHex)
			}

			s.Bindings = append(s.Bindings, Binding{
				Name:  string(payload[:sep]),
				Value: string(payload[sep+1:]),
			})
		default:
			return fmt.Errorf("%w: unexpected record type: %d", errInvalidHex, recKind)
		}
	}

	return errEmpty
}

func validateBindings(s *SnapshotEncoding) error {
	if len(s.Bindings) == 0 {
		return errEmpty
	}

	return nil
}

// kind represents the type of encoded record. Only the subset of record types supported by the
// encoder are supported.
type kind byte

const (
	kindData kind = 0
	kindEOF  kind = 1
)

type decodingError struct{}

func (decodingError) Error() string {
	return "decoding error"
}

func (de *decodingError) Is(err error) bool {
	if de == err {
		return true
	} else if _, ok := err.(*decodingError); ok {
		return true
	} else {
		return false
	}
}

var (
	// ErrDecode is a wrapped error that is returned when decoding fails.
	ErrDecode = &decodingError{}

	errEmpty      = fmt.Errorf("%w: no data decoded", ErrDecode)
	errInvalidHex = fmt.Errorf("%w: invalid encoding", ErrDecode)
)
