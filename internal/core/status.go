package core

// status.go defines the MSP430 status register (SR/R2) as a bit-accessor
// view over a single owned word, per spec.md §3/§9: one storage location,
// two views, rather than keeping two copies that can drift.

import "fmt"

// StatusRegister is the processor status word held in R2. Bit layout, per
// spec.md §3:
//
//	C=0 Z=1 N=2 GIE=3 CPUOFF=4 OSCOFF=5 SCG0=6 SCG1=7 V=8; 9-15 reserved.
type StatusRegister Register

// Status bits.
const (
	FlagCarry    StatusRegister = 1 << 0
	FlagZero     StatusRegister = 1 << 1
	FlagNegative StatusRegister = 1 << 2
	FlagGIE      StatusRegister = 1 << 3
	FlagCPUOff   StatusRegister = 1 << 4
	FlagOscOff   StatusRegister = 1 << 5
	FlagSCG0     StatusRegister = 1 << 6
	FlagSCG1     StatusRegister = 1 << 7
	FlagOverflow StatusRegister = 1 << 8

	// StatusMask covers the defined bits; bits 9-15 are reserved and read
	// as zero.
	StatusMask StatusRegister = 0x01ff
)

func (sr StatusRegister) String() string {
	return fmt.Sprintf(
		"%s (C:%t Z:%t N:%t GIE:%t CPUOFF:%t OSCOFF:%t SCG0:%t SCG1:%t V:%t)",
		Register(sr).String(),
		sr.Carry(), sr.Zero(), sr.Negative(), sr.GIE(),
		sr.CPUOff(), sr.OscOff(), sr.SCG0(), sr.SCG1(), sr.Overflow(),
	)
}

func (sr StatusRegister) Carry() bool    { return sr&FlagCarry != 0 }
func (sr StatusRegister) Zero() bool     { return sr&FlagZero != 0 }
func (sr StatusRegister) Negative() bool { return sr&FlagNegative != 0 }
func (sr StatusRegister) GIE() bool      { return sr&FlagGIE != 0 }
func (sr StatusRegister) CPUOff() bool   { return sr&FlagCPUOff != 0 }
func (sr StatusRegister) OscOff() bool   { return sr&FlagOscOff != 0 }
func (sr StatusRegister) SCG0() bool     { return sr&FlagSCG0 != 0 }
func (sr StatusRegister) SCG1() bool     { return sr&FlagSCG1 != 0 }
func (sr StatusRegister) Overflow() bool { return sr&FlagOverflow != 0 }

// setFlag sets or clears a single status bit.
func (sr *StatusRegister) setFlag(flag StatusRegister, on bool) {
	if on {
		*sr |= flag
	} else {
		*sr &^= flag
	}
}

// SetArith sets N, Z, C, V from the result of a binary arithmetic operation
// computed at the given operand width (8 or 16 bits). carryOut and overflow
// are supplied by the caller, since their computation differs between
// addition and subtraction (spec.md §4.E).
func (sr *StatusRegister) SetArith(result uint32, width int, carryOut, overflow bool) {
	var (
		signBit  uint32
		resultNV uint32
	)

	if width == 8 {
		signBit = 0x80
		resultNV = result & 0xff
	} else {
		signBit = 0x8000
		resultNV = result & 0xffff
	}

	sr.setFlag(FlagNegative, resultNV&signBit != 0)
	sr.setFlag(FlagZero, resultNV == 0)
	sr.setFlag(FlagCarry, carryOut)
	sr.setFlag(FlagOverflow, overflow)
}

// SetLogical sets N and Z from a logical result and clears V; C is set to
// *newCarry when newCarry is non-nil and left unchanged when it is nil, since
// AND/XOR/BIT differ from BIS/BIC
// (spec.md §4.E: "C=!Z for AND/XOR/BIT, C preserved for BIS/BIC").
func (sr *StatusRegister) SetLogical(result uint32, width int, newCarry *bool) {
	var (
		signBit  uint32
		resultNV uint32
	)

	if width == 8 {
		signBit = 0x80
		resultNV = result & 0xff
	} else {
		signBit = 0x8000
		resultNV = result & 0xffff
	}

	sr.setFlag(FlagNegative, resultNV&signBit != 0)
	sr.setFlag(FlagZero, resultNV == 0)
	sr.setFlag(FlagOverflow, false)

	if newCarry != nil {
		sr.setFlag(FlagCarry, *newCarry)
	}
}
