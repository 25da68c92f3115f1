// Package firmware builds the emulator's default reset/interrupt-vector
// bootstrap image. It is adapted from the teacher's internal/monitor, which
// plays the same "initial system image" role for the LC-3 core, but without
// the teacher's assembler dependency: spec.md's Non-goals exclude an
// assembler/linker from this repository, so the handful of bootstrap words
// below are built directly from the documented Format I/III bit layout
// (internal/core/opcode.go), the same way the teacher's own
// internal/monitor/halt.go inlines a raw FILL word for the one instruction
// its assembler couldn't express.
package firmware

import "github.com/msp430emu/emulator/internal/core"

// Default bootstrap addresses. EntryPoint sits in the FRAM code region;
// StackTop is the top of SRAM (spec.md §3's default memory map), word
// aligned; ResetVector is the fixed MSP430 reset vector address.
const (
	EntryPoint  core.Addr = 0x4400
	StackTop    core.Addr = 0x3000
	ResetVector core.Addr = 0xfffe
)

// Image is a small, fixed bootstrap program: initialize the stack pointer,
// then loop on itself forever. It exists to prove the reset vector and
// FRAM-code wiring work end to end, not to model real MSP430 startup code
// (clock configuration, watchdog disable, .data/.bss initialization),
// which belongs to the peripheral models spec.md declares out of scope.
type Image struct {
	// Entry is the address the code below is loaded at, and the address
	// the reset vector points to.
	Entry core.Addr

	// Code is the bootstrap program, one word per instruction or
	// extension word, loaded contiguously starting at Entry.
	Code []core.Word

	// Vectors maps vector-table addresses to the word stored there.
	// Default only populates the reset vector.
	Vectors map[core.Addr]core.Word
}

// encodeFormatI packs a Format I word from its raw fields, mirroring the
// bit layout core.Decode reads (spec.md §4.D): opcode in bits15:12, source
// register in bits11:8, Ad in bit7, B/W in bit6, As in bits5:4, destination
// register in bits3:0.
func encodeFormatI(opcode core.Opcode, srcReg core.RegID, as uint8, dstReg core.RegID, ad uint8, byteOp bool) core.Word {
	word := core.Word(opcode) << 12
	word |= core.Word(srcReg) << 8

	if ad != 0 {
		word |= 1 << 7
	}

	if byteOp {
		word |= 1 << 6
	}

	word |= core.Word(as) << 4
	word |= core.Word(dstReg)

	return word
}

// encodeFormatIII packs a Format III (jump) word: top three bits 001,
// condition in bits12:10, the signed 10-bit word-count offset in bits9:0.
func encodeFormatIII(cond core.Condition, offset int16) core.Word {
	return core.Word(0b001)<<13 | core.Word(cond)<<10 | core.Word(uint16(offset)&0x3ff)
}

// Default returns the bootstrap image that the run and reset commands in
// cmd/msp430 install on a freshly constructed CPU: MOV #StackTop, SP
// followed by an unconditional jump to itself (JMP $), with the reset
// vector at 0xFFFE pointing at Entry.
//
// MOV #StackTop, SP is encoded as As=11 (immediate via PC), reg=PC for the
// source, and SP as a register destination; the literal follows as an
// extension word, per spec.md §4.D's addressing-mode table.
func Default() Image {
	code := []core.Word{
		encodeFormatI(core.OpMOV, core.PC, 0b11, core.SP, 0, false),
		core.Word(StackTop),
		encodeFormatIII(core.CondJMP, -1),
	}

	return Image{
		Entry: EntryPoint,
		Code:  code,
		Vectors: map[core.Addr]core.Word{
			ResetVector: core.Word(EntryPoint),
		},
	}
}

// LoadInto writes the image's code and vectors through mem's ordinary
// write path. If the target region is owned by a flash/FRAM controller,
// LoadInto unlocks it for the duration of the write, waits out each word's
// program time, and restores the prior lock state afterward, the same way a
// programmer would flash a fresh part before its first boot.
func (img Image) LoadInto(mem *core.MemoryController) error {
	flash := mem.Flash()

	unlockedHere := false

	if flash != nil && flash.Owns(img.Entry) && flash.State() == core.StateLocked {
		if !flash.TryUnlock(0xa500) {
			return &core.AccessViolationError{Addr: img.Entry, Kind: core.AccessWrite, Reason: "firmware: could not unlock flash controller"}
		}

		unlockedHere = true
	}

	addr := img.Entry

	for _, w := range img.Code {
		if _, err := mem.WriteWord(addr, w); err != nil {
			return err
		}

		if flash != nil && flash.Owns(addr) {
			flash.Update(flash.CyclesRemaining())
		}

		addr += 2
	}

	if unlockedHere {
		flash.Lock()
	}

	for vecAddr, target := range img.Vectors {
		if _, err := mem.WriteWord(vecAddr, target); err != nil {
			return err
		}
	}

	return nil
}
