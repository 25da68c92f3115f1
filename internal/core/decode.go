package core

// decode.go turns a raw 16-bit instruction word into a typed Instruction,
// per spec.md §4.D. It mirrors the teacher's fetch/decode split in
// internal/vm/decode.go: this file only classifies the word and resolves
// addressing-mode *shapes*; the literal/offset/address values for
// non-constant-generator modes are filled in later by the execution engine
// once it fetches the instruction's extension words (see operands.go).

// Decode classifies word and extracts its fields into an Instruction. It
// returns an InvalidInstructionError if word does not match any of the
// three formats. A Format III offset is a sign-extended 10-bit field, so it
// always lies in [-512, 511] and is not checked separately.
func Decode(word Word) (Instruction, error) {
	switch {
	case word>>13 == 0b001:
		return decodeFormatIII(word), nil
	case isFormatIIByte(byte(word >> 8)):
		return decodeFormatII(word), nil
	case word>>12 >= 0x4 && word>>12 <= 0xf:
		return decodeFormatI(word), nil
	default:
		return Instruction{}, &InvalidInstructionError{Word: word, Reason: "does not match Format I, II, or III"}
	}
}

func isFormatIIByte(b byte) bool {
	return b == 0x10 || b == 0x11 || b == 0x12 || b == 0x13
}

func decodeFormatI(word Word) Instruction {
	opcode := formatIOpcodes[word>>12]
	srcReg := RegID((word >> 8) & 0xf)
	ad := uint8((word >> 7) & 0x1)
	byteOp := (word>>6)&0x1 != 0
	as := uint8((word >> 4) & 0x3)
	dstReg := RegID(word & 0xf)
	srcMode := decodeSrcMode(as, srcReg)
	dstMode := decodeDstMode(ad, dstReg)

	return Instruction{
		Format:             FormatI,
		Word:               word,
		Opcode:             opcode,
		SrcReg:             srcReg,
		SrcMode:            srcMode,
		DstReg:             dstReg,
		DstMode:            dstMode,
		ByteOp:             byteOp,
		ExtensionWordCount: countExtensionWords(srcMode, dstMode),
	}
}

func decodeFormatII(word Word) Instruction {
	top := byte(word >> 8)
	bit7 := uint8((word >> 7) & 0x1)

	opcode, ok := formatIIOpcodes[[2]uint8{top, bit7}]
	if !ok {
		// The one spare slot in the 4x2 opcode-byte/bit7 grid (0x13 with
		// bit7=1) has no assigned mnemonic.
		opcode = 0
	}

	byteOp := (word>>6)&0x1 != 0
	as := uint8((word >> 4) & 0x3)
	srcReg := RegID(word & 0xf)
	srcMode := decodeSrcMode(as, srcReg)

	return Instruction{
		Format:             FormatII,
		Word:               word,
		Opcode:             opcode,
		SrcReg:             srcReg,
		SrcMode:            srcMode,
		ByteOp:             byteOp,
		ExtensionWordCount: countExtensionWords(srcMode, AddressingMode{}),
	}
}

func decodeFormatIII(word Word) Instruction {
	cond := Condition((word >> 10) & 0x7)

	var offset Word = word & 0x3ff
	offset.Sext(10)

	return Instruction{
		Format:    FormatIII,
		Word:      word,
		Condition: cond,
		Offset:    int16(offset),
	}
}

// decodeSrcMode resolves the (As, register) pair into an addressing mode,
// per spec.md §4.D. Constant-generator encodings are resolved to an
// Immediate mode carrying their literal value directly; they never consume
// an extension word.
func decodeSrcMode(as uint8, reg RegID) AddressingMode {
	switch as {
	case 0b00:
		if reg == CG {
			return AddressingMode{Kind: ModeImmediate, Literal: 0, IsConstant: true}
		}

		return AddressingMode{Kind: ModeRegister, Reg: reg}
	case 0b01:
		switch reg {
		case PC:
			return AddressingMode{Kind: ModeSymbolic, Reg: PC}
		case SR:
			return AddressingMode{Kind: ModeAbsolute}
		case CG:
			return AddressingMode{Kind: ModeImmediate, Literal: 1, IsConstant: true}
		default:
			return AddressingMode{Kind: ModeIndexed, Reg: reg}
		}
	case 0b10:
		switch reg {
		case SR:
			return AddressingMode{Kind: ModeImmediate, Literal: 4, IsConstant: true}
		case CG:
			return AddressingMode{Kind: ModeImmediate, Literal: 2, IsConstant: true}
		default:
			return AddressingMode{Kind: ModeIndirect, Reg: reg}
		}
	case 0b11:
		switch reg {
		case PC:
			return AddressingMode{Kind: ModeImmediate, Reg: PC}
		case SR:
			return AddressingMode{Kind: ModeImmediate, Literal: 8, IsConstant: true}
		case CG:
			return AddressingMode{Kind: ModeImmediate, Literal: 0xffff, IsConstant: true}
		default:
			return AddressingMode{Kind: ModeIndirectAutoIncrement, Reg: reg}
		}
	default:
		return AddressingMode{Kind: ModeInvalid}
	}
}

// decodeDstMode resolves the (Ad, register) pair into a destination
// addressing mode. Destinations never use constant generators and never
// auto-increment.
func decodeDstMode(ad uint8, reg RegID) AddressingMode {
	if ad == 0 {
		return AddressingMode{Kind: ModeRegister, Reg: reg}
	}

	switch reg {
	case PC:
		return AddressingMode{Kind: ModeSymbolic, Reg: PC}
	case SR:
		return AddressingMode{Kind: ModeAbsolute}
	default:
		return AddressingMode{Kind: ModeIndexed, Reg: reg}
	}
}

func countExtensionWords(src, dst AddressingMode) int {
	n := 0
	if src.ConsumesExtensionWord() {
		n++
	}

	if dst.ConsumesExtensionWord() {
		n++
	}

	return n
}
