// Package disasm defines the instruction word sequence shared by the
// image extractor, the dump scanner and the comparator.
package disasm

import (
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
)

// WordSize is the width of one instruction in bytes.
const WordSize = 4

// ErrMisaligned is returned when a byte range does not hold a whole
// number of instruction words.
var ErrMisaligned = errors.New("byte range is not a multiple of the instruction size")

// Sequence is an ordered run of 32-bit instruction words in address order.
type Sequence []uint32

// Extract reads consecutive big-endian words from code.
func Extract(code []byte) (Sequence, error) {
	if len(code)%WordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMisaligned, len(code))
	}
	seq := make(Sequence, 0, len(code)/WordSize)
	for off := 0; off < len(code); off += WordSize {
		seq = append(seq, binary.BigEndian.Uint32(code[off:off+WordSize]))
	}
	return seq, nil
}

// Bytes re-encodes the sequence as big-endian bytes.
func (s Sequence) Bytes() []byte {
	out := make([]byte, len(s)*WordSize)
	for i, w := range s {
		binary.BigEndian.PutUint32(out[i*WordSize:], w)
	}
	return out
}

// Equal reports whether both sequences hold the same words in the same order.
func (s Sequence) Equal(other Sequence) bool {
	return slices.Equal(s, other)
}
