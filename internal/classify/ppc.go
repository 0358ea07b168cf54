package classify

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/arch/ppc64/ppc64asm"
)

// ErrIllegal is returned for words the 750CL does not execute.
var ErrIllegal = errors.New("illegal instruction")

// PPC decodes big-endian instruction words for the Gekko/Broadway
// (750CL) core. Paired-single forms are decoded here; the rest of the
// 32-bit ISA goes through ppc64asm.
type PPC struct{}

func (PPC) Decode(code uint32) (string, error) {
	if text, ok, err := decodeGekko(code); ok {
		return text, err
	}

	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], code)
	inst, err := ppc64asm.Decode(raw[:], binary.BigEndian)
	if err != nil {
		return "", err
	}
	// ppc64asm renders unknown words as ".long" without an error.
	if inst.Op == 0 {
		return "", fmt.Errorf("%w: %#08x", ErrIllegal, code)
	}
	return strings.ToLower(ppc64asm.GNUSyntax(inst, 0)), nil
}
