package classify

import "fmt"

// Primary opcodes that the 750CL gives to paired singles. ppc64asm
// would read them as AltiVec (4) or 64-bit loads and stores (56-61).
const (
	opPairedSingle = 4
	opPsqL         = 56
	opPsqLU        = 57
	opPsqSt        = 60
	opPsqStU       = 61
)

var (
	psqNames = map[uint32]string{
		opPsqL:   "psq_l",
		opPsqLU:  "psq_lu",
		opPsqSt:  "psq_st",
		opPsqStU: "psq_stu",
	}
	// frD,frA,frC,frB
	psFourOperand = map[uint32]string{
		10: "ps_sum0",
		11: "ps_sum1",
		14: "ps_madds0",
		15: "ps_madds1",
		23: "ps_sel",
		28: "ps_msub",
		29: "ps_madd",
		30: "ps_nmsub",
		31: "ps_nmadd",
	}
	// frD,frA,frB
	psArith = map[uint32]string{
		18: "ps_div",
		20: "ps_sub",
		21: "ps_add",
	}
	// frD,frB
	psEstimate = map[uint32]string{
		24: "ps_res",
		26: "ps_rsqrte",
	}
	// frD,frA,frC
	psMul = map[uint32]string{
		12: "ps_muls0",
		13: "ps_muls1",
		25: "ps_mul",
	}
	psCompare = map[uint32]string{
		0:  "ps_cmpu0",
		32: "ps_cmpo0",
		64: "ps_cmpu1",
		96: "ps_cmpo1",
	}
	psMove = map[uint32]string{
		40:  "ps_neg",
		72:  "ps_mr",
		136: "ps_nabs",
		264: "ps_abs",
	}
	psMerge = map[uint32]string{
		528: "ps_merge00",
		560: "ps_merge01",
		592: "ps_merge10",
		624: "ps_merge11",
	}
	psqIndexed = map[uint32]string{
		6:  "psq_lx",
		7:  "psq_stx",
		38: "psq_lux",
		39: "psq_stux",
	}
)

// decodeGekko handles the paired-single opcodes. ok is false when code
// belongs to another primary opcode.
func decodeGekko(code uint32) (text string, ok bool, err error) {
	op := code >> 26
	d := code >> 21 & 31
	a := code >> 16 & 31

	if name, found := psqNames[op]; found {
		disp := int32(code&0xfff) << 20 >> 20
		w := code >> 15 & 1
		i := code >> 12 & 7
		return fmt.Sprintf("%s f%d,%d(r%d),%d,%d", name, d, disp, a, w, i), true, nil
	}
	if op != opPairedSingle {
		return "", false, nil
	}

	b := code >> 11 & 31
	c := code >> 6 & 31
	xo5 := code >> 1 & 31
	xo10 := code >> 1 & 0x3ff
	dot := ""
	if code&1 == 1 {
		dot = "."
	}

	switch xo5 {
	case 0:
		if name, found := psCompare[xo10]; found {
			return fmt.Sprintf("%s cr%d,f%d,f%d", name, d>>2, a, b), true, nil
		}
	case 6, 7:
		if name, found := psqIndexed[code>>1&0x3f]; found {
			w := code >> 10 & 1
			i := code >> 7 & 7
			return fmt.Sprintf("%s f%d,r%d,r%d,%d,%d", name, d, a, b, w, i), true, nil
		}
	case 8:
		if name, found := psMove[xo10]; found {
			return fmt.Sprintf("%s%s f%d,f%d", name, dot, d, b), true, nil
		}
	case 16:
		if name, found := psMerge[xo10]; found {
			return fmt.Sprintf("%s%s f%d,f%d,f%d", name, dot, d, a, b), true, nil
		}
	case 22:
		if xo10 == 1014 {
			return fmt.Sprintf("dcbz_l r%d,r%d", a, b), true, nil
		}
	default:
		if name, found := psFourOperand[xo5]; found {
			return fmt.Sprintf("%s%s f%d,f%d,f%d,f%d", name, dot, d, a, c, b), true, nil
		}
		if name, found := psArith[xo5]; found {
			return fmt.Sprintf("%s%s f%d,f%d,f%d", name, dot, d, a, b), true, nil
		}
		if name, found := psEstimate[xo5]; found {
			return fmt.Sprintf("%s%s f%d,f%d", name, dot, d, b), true, nil
		}
		if name, found := psMul[xo5]; found {
			return fmt.Sprintf("%s%s f%d,f%d,f%d", name, dot, d, a, c), true, nil
		}
	}
	return "", true, fmt.Errorf("%w: %#08x", ErrIllegal, code)
}
