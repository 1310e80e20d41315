package runtime

// hash.go implements this design's hash(cell): the stored hash for interned symbols, and a
// stable hash of identity for everything else.

import (
	"hash/fnv"
	"unsafe"
)

// hashString computes the hash stored in an interned symbol at intern time .
func hashString(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))

	return h.Sum64()
}

// identityHash returns a stable hash of a cell's identity. This collector never moves cells (it
// is mark-and-sweep, not moving/compacting), so the cell's address is a valid, stable identity
// for the cell's lifetime.
func identityHash(c *Cell) uint64 {
	h := fnv.New64a()

	var buf [8]byte

	addr := uintptr(unsafe.Pointer(c))
	for i := range buf {
		buf[i] = byte(addr >> (8 * i))
	}

	_, _ = h.Write(buf[:])

	return h.Sum64()
}
