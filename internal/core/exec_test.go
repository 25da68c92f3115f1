package core

import (
	"testing"
)

// newTestCPU builds a CPU whose code lives in SRAM (0x2000-0x2fff), which
// is read/write/execute by default, so tests can write instructions
// directly without going through the flash controller's unlock sequence.
func newTestCPU(tt *testing.T) *CPU {
	tt.Helper()

	cpu := NewDefault()
	cpu.Regs.SetPC(0x2000)

	return cpu
}

func mustWriteWord(tt *testing.T, cpu *CPU, addr Addr, w Word) {
	tt.Helper()

	if _, err := cpu.Mem.WriteWord(addr, w); err != nil {
		tt.Fatalf("WriteWord(%s, %s): %v", addr, w, err)
	}
}

func TestStepRegisterAdd(tt *testing.T) {
	cpu := newTestCPU(tt)

	// ADD R5, R4: As=00 (register), Ad=0 (register).
	word := encodeFormatITest(OpADD, 5, 0, 4, 0, false)
	mustWriteWord(tt, cpu, 0x2000, word)

	if err := cpu.Regs.Write(5, 10); err != nil {
		tt.Fatal(err)
	}

	if err := cpu.Regs.Write(4, 20); err != nil {
		tt.Fatal(err)
	}

	cycles, err := cpu.Step()
	if err != nil {
		tt.Fatalf("Step: %v", err)
	}

	if cycles != 1 {
		tt.Errorf("cycles: want 1, got %d", cycles)
	}

	dst, _ := cpu.Regs.Read(4)
	if dst != 30 {
		tt.Errorf("R4: want 30, got %d", dst)
	}

	if cpu.Regs.Status().Carry() {
		tt.Error("C should be clear")
	}

	if cpu.Regs.Status().Overflow() {
		tt.Error("V should be clear")
	}
}

func TestStepByteAddOverflow(tt *testing.T) {
	cpu := newTestCPU(tt)

	// ADD.B R5, R4: byte op, two positive operands overflowing into the
	// sign bit of a byte result.
	word := encodeFormatITest(OpADD, 5, 0, 4, 0, true)
	mustWriteWord(tt, cpu, 0x2000, word)

	if err := cpu.Regs.WriteByte(5, 0x70); err != nil {
		tt.Fatal(err)
	}

	if err := cpu.Regs.WriteByte(4, 0x70); err != nil {
		tt.Fatal(err)
	}

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	dst, _ := cpu.Regs.ReadByte(4)
	if dst != 0xe0 {
		tt.Errorf("R4 low byte: want 0xe0, got %#02x", dst)
	}

	if !cpu.Regs.Status().Overflow() {
		tt.Error("V should be set: 0x70+0x70 overflows a signed byte")
	}

	if !cpu.Regs.Status().Negative() {
		tt.Error("N should be set: 0xe0 is negative as a signed byte")
	}
}

func TestStepIndirectAutoIncrement(tt *testing.T) {
	cpu := newTestCPU(tt)

	// MOV @R6+, R4: As=11 on a plain register (not PC/SR/CG) is indirect
	// auto-increment.
	word := encodeFormatITest(OpMOV, 6, 0b11, 4, 0, false)
	mustWriteWord(tt, cpu, 0x2000, word)

	if err := cpu.Regs.Write(6, 0x2100); err != nil {
		tt.Fatal(err)
	}

	mustWriteWord(tt, cpu, 0x2100, 0x1234)

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	dst, _ := cpu.Regs.Read(4)
	if dst != 0x1234 {
		tt.Errorf("R4: want 0x1234, got %s", Word(dst))
	}

	src, _ := cpu.Regs.Read(6)
	if src != 0x2102 {
		tt.Errorf("R6 should auto-increment by 2: want 0x2102, got %s", Word(src))
	}
}

func TestStepImmediateViaPC(tt *testing.T) {
	cpu := newTestCPU(tt)

	// MOV #0x55aa, R4: As=11 on PC is immediate, consuming one extension
	// word that follows the instruction word.
	word := encodeFormatITest(OpMOV, PC, 0b11, 4, 0, false)
	mustWriteWord(tt, cpu, 0x2000, word)
	mustWriteWord(tt, cpu, 0x2002, 0x55aa)

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	dst, _ := cpu.Regs.Read(4)
	if dst != 0x55aa {
		tt.Errorf("R4: want 0x55aa, got %s", Word(dst))
	}

	if cpu.Regs.PC() != 0x2004 {
		tt.Errorf("PC should advance past the extension word: want 0x2004, got %s", cpu.Regs.PC())
	}
}

func TestStepConditionalJumpOnNXorV(tt *testing.T) {
	cpu := newTestCPU(tt)

	// JL (jump if N^V=1), offset +2 words: condition true when N and V
	// differ.
	word := encodeFormatIIITest(CondL, 2)
	mustWriteWord(tt, cpu, 0x2000, word)

	cpu.Regs.SetStatus(FlagNegative) // N=1, V=0: N^V=1, should jump

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	// PC was 0x2000, advances by 2 for the fetch, then by offset*2=4.
	if cpu.Regs.PC() != 0x2006 {
		tt.Errorf("PC: want 0x2006, got %s", cpu.Regs.PC())
	}
}

func TestStepConditionalJumpNotTaken(tt *testing.T) {
	cpu := newTestCPU(tt)

	word := encodeFormatIIITest(CondL, 2)
	mustWriteWord(tt, cpu, 0x2000, word)

	cpu.Regs.SetStatus(0) // N=0, V=0: N^V=0, should not jump

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	if cpu.Regs.PC() != 0x2002 {
		tt.Errorf("PC should only advance past the instruction: want 0x2002, got %s", cpu.Regs.PC())
	}
}

func TestResetIsIdempotent(tt *testing.T) {
	cpu := newTestCPU(tt)

	if err := cpu.Regs.Write(4, 0x1234); err != nil {
		tt.Fatal(err)
	}

	cpu.Reset()
	first := cpu.State()

	cpu.Reset()
	second := cpu.State()

	if first.Registers != second.Registers {
		tt.Error("Reset should be idempotent on the register file")
	}

	if first.Status != second.Status {
		tt.Error("Reset should be idempotent on status")
	}

	if first.Cycles != second.Cycles {
		tt.Error("Reset should be idempotent on the cycle counter")
	}

	if first.Registers[4] != 0 {
		tt.Errorf("R4 should be cleared by Reset, got %s", first.Registers[4])
	}
}

func TestPCAndSPAlwaysEven(tt *testing.T) {
	cpu := newTestCPU(tt)

	cpu.Regs.SetPC(0x2001)
	if cpu.Regs.PC()&1 != 0 {
		tt.Errorf("PC should be masked to even: got %s", cpu.Regs.PC())
	}

	cpu.Regs.SetSP(0x2fff)
	if cpu.Regs.SP()&1 != 0 {
		tt.Errorf("SP should be masked to even: got %s", cpu.Regs.SP())
	}
}

// encodeFormatITest and encodeFormatIIITest build raw instruction words
// using the same bit layout Decode reads, independent of the firmware
// package's private encoder, so exec_test.go has no import dependency
// beyond the core package under test.
func encodeFormatITest(opcode Opcode, srcReg RegID, as uint8, dstReg RegID, ad uint8, byteOp bool) Word {
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

func encodeFormatIIITest(cond Condition, offset int16) Word {
	return Word(0b001)<<13 | Word(cond)<<10 | Word(uint16(offset)&0x3ff)
}
