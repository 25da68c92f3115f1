package core

// cycles.go implements the SLAU445I Table 4-10 cycle-cost model from
// spec.md §4.E/§6. It is grounded on the teacher's per-opcode cycle
// accounting in internal/vm/exec.go, generalized to the MSP430's
// addressing-mode-keyed cost table instead of the teacher's flat per-opcode
// constants.

// srcModeCost and dstModeCost give the addressing-mode component of a
// Format I instruction's cycle cost; base cost (1) is added separately. A
// constant-generator source never costs more than a bare register, since it
// never fetches an extension word.
func srcModeCost(m AddressingMode) uint32 {
	if m.IsConstant {
		return 0
	}

	switch m.Kind {
	case ModeRegister:
		return 0
	case ModeIndirect, ModeIndirectAutoIncrement, ModeImmediate:
		return 1
	case ModeIndexed, ModeAbsolute, ModeSymbolic:
		return 2
	default:
		return 0
	}
}

func dstModeCost(m AddressingMode, reg RegID) uint32 {
	switch m.Kind {
	case ModeRegister:
		if reg == PC {
			return 2
		}

		return 0
	case ModeIndexed, ModeAbsolute, ModeSymbolic:
		return 3
	default:
		return 0
	}
}

// isMovBitCmp reports whether op is one of the three Format I opcodes that
// receive the Table 4-10 footnote-[1] cycle reduction for memory
// destinations.
func isMovBitCmp(op Opcode) bool {
	return op == OpMOV || op == OpBIT || op == OpCMP
}

// FormatICycles computes the cycle cost of a decoded Format I instruction,
// per spec.md §4.E step 7.
func FormatICycles(inst Instruction) uint32 {
	total := uint32(1) + srcModeCost(inst.SrcMode) + dstModeCost(inst.DstMode, inst.DstReg)

	if isMovBitCmp(inst.Opcode) && inst.DstMode.Kind != ModeRegister {
		total--
	}

	return total
}

// FormatIICycles computes the cycle cost of a decoded Format II
// instruction: 1 for Register, 3 for every other addressing mode, per
// spec.md §4.E.
func FormatIICycles(inst Instruction) uint32 {
	if inst.SrcMode.Kind == ModeRegister {
		return 1
	}

	return 3
}

// FormatIIICycles is always 2, regardless of whether the jump is taken.
func FormatIIICycles(Instruction) uint32 {
	return 2
}

// Cycles dispatches to the correct cost function by instruction format.
func Cycles(inst Instruction) uint32 {
	switch inst.Format {
	case FormatI:
		return FormatICycles(inst)
	case FormatII:
		return FormatIICycles(inst)
	case FormatIII:
		return FormatIIICycles(inst)
	default:
		return 0
	}
}
