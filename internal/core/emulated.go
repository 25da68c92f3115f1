package core

// emulated.go provides forward encoders for the emulated mnemonics listed
// in spec.md §4.E (SETC, CLRC, SETN, CLRN, SETZ, CLRZ, DINT, EINT, NOP,
// RET, INC, DEC, INCD, DECD, ADC, SBC, DADC, TST, CLR, POP, RLA, RLC, BR).
// Per that section, each must produce identical register/memory/flag/cycle
// effects to its underlying core encoding; they exist only as a
// disassembly convenience, so each encoder here simply builds the Format I
// word for the real opcode it stands in for. There is no decode-time
// detection: a decoded MOV #0,R5 and a decoded CLR R5 are the same
// Instruction, and that's by design.
//
// Every helper below targets a register destination, the overwhelmingly
// common case for hand- or firmware-assembled code. Emulated forms with a
// memory destination (e.g. "INC &TAIV") are real per the architecture but
// are not encoded here; a caller needing one assembles the underlying ADD
// #1,&TAIV directly.

// encodeFormatI packs a Format I word from its raw fields, mirroring the
// bit layout decodeFormatI reads.
func encodeFormatI(opcode Opcode, srcReg RegID, as uint8, dstReg RegID, ad uint8, byteOp bool) Word {
	word := Word(opcode) << 12
	word |= Word(srcReg) << 8

	if ad != 0 {
		word |= 1 << 7
	}

	if byteOp {
		word |= 1 << 6
	}

	word |= Word(as) << 4
	word |= Word(dstReg)

	return word
}

// EncodeSETC is BIS #1,SR.
func EncodeSETC() Word { return encodeFormatI(OpBIS, CG, 0b01, SR, 0, false) }

// EncodeCLRC is BIC #1,SR.
func EncodeCLRC() Word { return encodeFormatI(OpBIC, CG, 0b01, SR, 0, false) }

// EncodeSETZ is BIS #2,SR.
func EncodeSETZ() Word { return encodeFormatI(OpBIS, CG, 0b10, SR, 0, false) }

// EncodeCLRZ is BIC #2,SR.
func EncodeCLRZ() Word { return encodeFormatI(OpBIC, CG, 0b10, SR, 0, false) }

// EncodeSETN is BIS #4,SR.
func EncodeSETN() Word { return encodeFormatI(OpBIS, SR, 0b10, SR, 0, false) }

// EncodeCLRN is BIC #4,SR.
func EncodeCLRN() Word { return encodeFormatI(OpBIC, SR, 0b10, SR, 0, false) }

// EncodeDINT is BIC #8,SR.
func EncodeDINT() Word { return encodeFormatI(OpBIC, SR, 0b11, SR, 0, false) }

// EncodeEINT is BIS #8,SR.
func EncodeEINT() Word { return encodeFormatI(OpBIS, SR, 0b11, SR, 0, false) }

// EncodeNOP is MOV #0,R3, the conventional do-nothing encoding.
func EncodeNOP() Word { return encodeFormatI(OpMOV, CG, 0b00, CG, 0, false) }

// EncodeRET is MOV @SP+,PC.
func EncodeRET() Word { return encodeFormatI(OpMOV, SP, 0b11, PC, 0, false) }

// EncodeINC is ADD #1,dst.
func EncodeINC(dst RegID) Word { return encodeFormatI(OpADD, CG, 0b01, dst, 0, false) }

// EncodeDEC is SUB #1,dst.
func EncodeDEC(dst RegID) Word { return encodeFormatI(OpSUB, CG, 0b01, dst, 0, false) }

// EncodeINCD is ADD #2,dst.
func EncodeINCD(dst RegID) Word { return encodeFormatI(OpADD, CG, 0b10, dst, 0, false) }

// EncodeDECD is SUB #2,dst.
func EncodeDECD(dst RegID) Word { return encodeFormatI(OpSUB, CG, 0b10, dst, 0, false) }

// EncodeADC is ADDC #0,dst: adds the carry bit into dst.
func EncodeADC(dst RegID) Word { return encodeFormatI(OpADDC, CG, 0b00, dst, 0, false) }

// EncodeSBC is SUBC #0,dst: subtracts the borrow into dst.
func EncodeSBC(dst RegID) Word { return encodeFormatI(OpSUBC, CG, 0b00, dst, 0, false) }

// EncodeDADC is DADD #0,dst: adds the carry into dst as BCD.
func EncodeDADC(dst RegID) Word { return encodeFormatI(OpDADD, CG, 0b00, dst, 0, false) }

// EncodeTST is CMP #0,dst.
func EncodeTST(dst RegID) Word { return encodeFormatI(OpCMP, CG, 0b00, dst, 0, false) }

// EncodeCLR is MOV #0,dst.
func EncodeCLR(dst RegID) Word { return encodeFormatI(OpMOV, CG, 0b00, dst, 0, false) }

// EncodePOP is MOV @SP+,dst.
func EncodePOP(dst RegID) Word { return encodeFormatI(OpMOV, SP, 0b11, dst, 0, false) }

// EncodeRLA is ADD dst,dst: arithmetic left shift by one, through ADD's
// flag semantics.
func EncodeRLA(dst RegID) Word { return encodeFormatI(OpADD, dst, 0b00, dst, 0, false) }

// EncodeRLC is ADDC dst,dst: rotate left through carry, via ADDC's flag
// semantics.
func EncodeRLC(dst RegID) Word { return encodeFormatI(OpADDC, dst, 0b00, dst, 0, false) }

// EncodeBR is MOV src,PC: an unconditional branch to the value in src.
func EncodeBR(src RegID) Word { return encodeFormatI(OpMOV, src, 0b00, PC, 0, false) }
