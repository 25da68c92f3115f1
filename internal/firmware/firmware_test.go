package firmware

import (
	"testing"

	"github.com/msp430emu/emulator/internal/core"
)

func TestDefaultImageLoadsAndResetVectorPointsAtEntry(tt *testing.T) {
	mem := core.NewDefaultMemoryController()

	img := Default()

	if err := img.LoadInto(mem); err != nil {
		tt.Fatalf("LoadInto: %v", err)
	}

	vector, err := mem.ReadWord(ResetVector)
	if err != nil {
		tt.Fatalf("ReadWord(ResetVector): %v", err)
	}

	if vector != core.Word(EntryPoint) {
		tt.Errorf("reset vector: want %s, got %s", core.Word(EntryPoint), vector)
	}

	if mem.Flash().State() != core.StateLocked {
		tt.Errorf("flash controller should be relocked after LoadInto, got %s", mem.Flash().State())
	}
}

func TestDefaultImageIsExecutableFromReset(tt *testing.T) {
	mem := core.NewDefaultMemoryController()

	if err := Default().LoadInto(mem); err != nil {
		tt.Fatalf("LoadInto: %v", err)
	}

	cpu := core.New(mem)
	cpu.Reset()

	vector, err := mem.ReadWord(ResetVector)
	if err != nil {
		tt.Fatalf("ReadWord(ResetVector): %v", err)
	}

	cpu.Regs.SetPC(vector)

	// MOV #StackTop, SP
	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step (MOV): %v", err)
	}

	if cpu.Regs.SP() != StackTop {
		tt.Errorf("SP after bootstrap MOV: want %s, got %s", StackTop, cpu.Regs.SP())
	}

	pcBefore := cpu.Regs.PC()

	// JMP $: an unconditional jump back to itself.
	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step (JMP): %v", err)
	}

	if cpu.Regs.PC() != pcBefore {
		tt.Errorf("JMP $ should leave PC unchanged: want %s, got %s", pcBefore, cpu.Regs.PC())
	}
}
