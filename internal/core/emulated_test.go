package core

import "testing"

// emulated_test.go exercises every forward encoder in emulated.go, asserting
// the register and flag effect (and, for NOP, the cycle cost) spec.md §4.E
// requires of an emulated mnemonic: identical to stepping its underlying core
// encoding, since Decode and the execution engine never special-case these
// mnemonics at all.

func TestEmulatedStatusBitOps(tt *testing.T) {
	cases := []struct {
		name    string
		initSR  StatusRegister
		word    Word
		wantSR  StatusRegister
	}{
		{"SETC", 0, EncodeSETC(), FlagCarry},
		{"CLRC", FlagCarry, EncodeCLRC(), 0},
		{"SETZ", 0, EncodeSETZ(), FlagZero},
		{"CLRZ", FlagZero, EncodeCLRZ(), 0},
		{"SETN", 0, EncodeSETN(), FlagNegative},
		{"CLRN", FlagNegative, EncodeCLRN(), 0},
		{"DINT", FlagGIE, EncodeDINT(), 0},
		{"EINT", 0, EncodeEINT(), FlagGIE},
	}

	for _, c := range cases {
		tt.Run(c.name, func(tt *testing.T) {
			cpu := newTestCPU(tt)
			cpu.Regs.SetStatus(c.initSR)
			mustWriteWord(tt, cpu, 0x2000, c.word)

			if _, err := cpu.Step(); err != nil {
				tt.Fatalf("Step: %v", err)
			}

			if got := cpu.Regs.Status() & (FlagCarry | FlagZero | FlagNegative | FlagGIE); got != c.wantSR {
				tt.Errorf("status: want %s, got %s", c.wantSR, got)
			}
		})
	}
}

func TestEmulatedNOP(tt *testing.T) {
	cpu := newTestCPU(tt)

	if err := cpu.Regs.Write(CG, 0x1234); err != nil {
		tt.Fatal(err)
	}

	mustWriteWord(tt, cpu, 0x2000, EncodeNOP())

	cycles, err := cpu.Step()
	if err != nil {
		tt.Fatalf("Step: %v", err)
	}

	if cycles != 1 {
		tt.Errorf("cycles: want 1, got %d", cycles)
	}

	r3, _ := cpu.Regs.Read(CG)
	if r3 != 0 {
		tt.Errorf("R3: NOP (MOV #0,R3) should clear R3, got %s", Word(r3))
	}
}

func TestEmulatedRET(tt *testing.T) {
	cpu := newTestCPU(tt)

	cpu.Regs.SetSP(0x2100)
	mustWriteWord(tt, cpu, 0x2100, 0x2400)
	mustWriteWord(tt, cpu, 0x2000, EncodeRET())

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	if cpu.Regs.PC() != 0x2400 {
		tt.Errorf("PC: want 0x2400, got %s", cpu.Regs.PC())
	}

	if cpu.Regs.SP() != 0x2102 {
		tt.Errorf("SP: want 0x2102 after popping, got %s", cpu.Regs.SP())
	}
}

func TestEmulatedIncDec(tt *testing.T) {
	cases := []struct {
		name string
		word Word
		init Word
		want Word
	}{
		{"INC", EncodeINC(4), 0x0010, 0x0011},
		{"DEC", EncodeDEC(4), 0x0010, 0x000f},
		{"INCD", EncodeINCD(4), 0x0010, 0x0012},
		{"DECD", EncodeDECD(4), 0x0010, 0x000e},
	}

	for _, c := range cases {
		tt.Run(c.name, func(tt *testing.T) {
			cpu := newTestCPU(tt)

			if err := cpu.Regs.Write(4, Register(c.init)); err != nil {
				tt.Fatal(err)
			}

			mustWriteWord(tt, cpu, 0x2000, c.word)

			if _, err := cpu.Step(); err != nil {
				tt.Fatalf("Step: %v", err)
			}

			got, _ := cpu.Regs.Read(4)
			if Word(got) != c.want {
				tt.Errorf("R4: want %s, got %s", c.want, Word(got))
			}
		})
	}
}

func TestEmulatedADC(tt *testing.T) {
	cpu := newTestCPU(tt)
	cpu.Regs.SetStatus(FlagCarry)

	if err := cpu.Regs.Write(4, 5); err != nil {
		tt.Fatal(err)
	}

	mustWriteWord(tt, cpu, 0x2000, EncodeADC(4))

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	got, _ := cpu.Regs.Read(4)
	if got != 6 {
		tt.Errorf("R4: ADC should add the carry bit, want 6, got %s", Word(got))
	}
}

func TestEmulatedSBC(tt *testing.T) {
	cpu := newTestCPU(tt)
	cpu.Regs.SetStatus(0) // C=0: a pending borrow

	if err := cpu.Regs.Write(4, 5); err != nil {
		tt.Fatal(err)
	}

	mustWriteWord(tt, cpu, 0x2000, EncodeSBC(4))

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	got, _ := cpu.Regs.Read(4)
	if got != 4 {
		tt.Errorf("R4: SBC should subtract the pending borrow, want 4, got %s", Word(got))
	}
}

func TestEmulatedDADC(tt *testing.T) {
	cpu := newTestCPU(tt)
	cpu.Regs.SetStatus(FlagCarry)

	if err := cpu.Regs.Write(4, 0x09); err != nil {
		tt.Fatal(err)
	}

	mustWriteWord(tt, cpu, 0x2000, EncodeDADC(4))

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	got, _ := cpu.Regs.Read(4)
	if got != 0x10 {
		tt.Errorf("R4: DADC(0x09, carry=1) should BCD-add to 0x10, got %s", Word(got))
	}

	if cpu.Regs.Status().Carry() {
		tt.Error("C should clear: 0x09+1 does not carry out of a two-digit BCD value")
	}
}

func TestEmulatedTST(tt *testing.T) {
	cpu := newTestCPU(tt)

	if err := cpu.Regs.Write(4, 0); err != nil {
		tt.Fatal(err)
	}

	mustWriteWord(tt, cpu, 0x2000, EncodeTST(4))

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	if !cpu.Regs.Status().Zero() {
		tt.Error("Z should be set: TST of a zero register")
	}

	got, _ := cpu.Regs.Read(4)
	if got != 0 {
		tt.Error("TST must not write back to its operand")
	}
}

func TestEmulatedCLR(tt *testing.T) {
	cpu := newTestCPU(tt)

	if err := cpu.Regs.Write(4, 0x1234); err != nil {
		tt.Fatal(err)
	}

	mustWriteWord(tt, cpu, 0x2000, EncodeCLR(4))

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	got, _ := cpu.Regs.Read(4)
	if got != 0 {
		tt.Errorf("R4: CLR should zero its operand, got %s", Word(got))
	}
}

func TestEmulatedPOP(tt *testing.T) {
	cpu := newTestCPU(tt)

	cpu.Regs.SetSP(0x2100)
	mustWriteWord(tt, cpu, 0x2100, 0x4321)
	mustWriteWord(tt, cpu, 0x2000, EncodePOP(4))

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	got, _ := cpu.Regs.Read(4)
	if got != 0x4321 {
		tt.Errorf("R4: want 0x4321, got %s", Word(got))
	}

	if cpu.Regs.SP() != 0x2102 {
		tt.Errorf("SP: want 0x2102 after popping, got %s", cpu.Regs.SP())
	}
}

func TestEmulatedRLA(tt *testing.T) {
	cpu := newTestCPU(tt)

	if err := cpu.Regs.Write(4, 0x4000); err != nil {
		tt.Fatal(err)
	}

	mustWriteWord(tt, cpu, 0x2000, EncodeRLA(4))

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	got, _ := cpu.Regs.Read(4)
	if got != 0x8000 {
		tt.Errorf("R4: want 0x8000, got %s", Word(got))
	}

	if !cpu.Regs.Status().Overflow() {
		tt.Error("V should be set: shifting 0x4000 left changes its sign")
	}
}

func TestEmulatedRLC(tt *testing.T) {
	cpu := newTestCPU(tt)
	cpu.Regs.SetStatus(FlagCarry)

	if err := cpu.Regs.Write(4, 1); err != nil {
		tt.Fatal(err)
	}

	mustWriteWord(tt, cpu, 0x2000, EncodeRLC(4))

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	got, _ := cpu.Regs.Read(4)
	if got != 3 {
		tt.Errorf("R4: rotate-left-through-carry of 1 with C=1 should give 3, got %s", Word(got))
	}
}

func TestEmulatedBR(tt *testing.T) {
	cpu := newTestCPU(tt)

	if err := cpu.Regs.Write(5, 0x2100); err != nil {
		tt.Fatal(err)
	}

	mustWriteWord(tt, cpu, 0x2000, EncodeBR(5))

	if _, err := cpu.Step(); err != nil {
		tt.Fatalf("Step: %v", err)
	}

	if cpu.Regs.PC() != 0x2100 {
		tt.Errorf("PC: want 0x2100, got %s", cpu.Regs.PC())
	}
}
