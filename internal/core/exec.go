package core

// exec.go is the instruction-cycle pipeline: fetch, decode, resolve
// operands, evaluate, writeback, per the fixed order in spec.md §4.E.
// Grounded on the teacher's fetch->decode->eval->execute loop in
// internal/vm/exec.go; generalized from the teacher's LC-3 one-operand
// model to the MSP430's two-operand Format I, one-operand Format II, and
// conditional Format III jumps.
//
// spec.md §7: no partial-state mutation occurs on a failing instruction
// beyond the point of failure — PC and any auto-increment already
// committed remain as observed. This engine does not buffer-and-commit;
// each step below mutates state immediately, so an error return simply
// means execution stopped at that point, matching the documented
// semantics rather than working around it.

// Step executes exactly one instruction and returns its cycle cost, per
// spec.md §5.
func (c *CPU) Step() (uint32, error) {
	pc := c.Regs.PC()

	word, err := c.Mem.FetchInstruction(pc)
	if err != nil {
		return 0, err
	}

	c.Regs.IncrementPC(2)

	inst, err := Decode(word)
	if err != nil {
		return 0, err
	}

	var cycles uint32

	switch inst.Format {
	case FormatI:
		cycles, err = c.stepFormatI(inst)
	case FormatII:
		cycles, err = c.stepFormatII(inst)
	case FormatIII:
		cycles, err = c.stepFormatIII(inst)
	default:
		err = &InvalidInstructionError{Word: word, Reason: "unrecognized format"}
	}

	if err != nil {
		return 0, err
	}

	c.cycles += uint64(cycles)

	if c.Mem.Flash() != nil {
		c.Mem.Flash().Update(cycles)
	}

	return cycles, nil
}

func (c *CPU) stepFormatI(inst Instruction) (uint32, error) {
	srcMode, dstMode, err := c.fetchExtensionWords(inst.SrcMode, inst.DstMode)
	if err != nil {
		return 0, err
	}

	srcOp, err := c.readOperand(srcMode, inst.ByteOp, true)
	if err != nil {
		return 0, err
	}

	dstOp, err := c.readOperand(dstMode, inst.ByteOp, false)
	if err != nil {
		return 0, err
	}

	sr := c.Regs.Status()
	result, writeback := evalFormatI(inst.Opcode, srcOp.value, dstOp.value, inst.ByteOp, &sr)
	c.Regs.SetStatus(sr)

	if writeback {
		if err := c.writeOperand(dstOp, result, inst.ByteOp); err != nil {
			return 0, err
		}
	}

	return FormatICycles(inst), nil
}

func (c *CPU) stepFormatII(inst Instruction) (uint32, error) {
	if inst.Opcode == OpRETI {
		return c.execRETI(inst)
	}

	srcMode, _, err := c.fetchExtensionWords(inst.SrcMode, AddressingMode{})
	if err != nil {
		return 0, err
	}

	op, err := c.readOperand(srcMode, inst.ByteOp, true)
	if err != nil {
		return 0, err
	}

	switch inst.Opcode {
	case OpRRC, OpRRA, OpSWPB, OpSXT:
		sr := c.Regs.Status()
		result := evalRotate(inst.Opcode, op.value, inst.ByteOp, &sr)
		c.Regs.SetStatus(sr)

		if err := c.writeOperand(op, result, inst.ByteOp); err != nil {
			return 0, err
		}

	case OpPUSH:
		if err := c.push(op.value); err != nil {
			return 0, err
		}

	case OpCALL:
		target := op.value

		if err := c.push(c.Regs.PC()); err != nil {
			return 0, err
		}

		c.Regs.SetPC(target)

	default:
		return 0, &InvalidInstructionError{Word: inst.Word, Reason: "unassigned Format II opcode slot"}
	}

	return FormatIICycles(inst), nil
}

func (c *CPU) execRETI(inst Instruction) (uint32, error) {
	sr, err := c.pop()
	if err != nil {
		return 0, err
	}

	c.Regs.SetStatus(StatusRegister(sr))

	pc, err := c.pop()
	if err != nil {
		return 0, err
	}

	c.Regs.SetPC(pc)

	return FormatIICycles(inst), nil
}

func (c *CPU) stepFormatIII(inst Instruction) (uint32, error) {
	sr := c.Regs.Status()

	if EvaluateCondition(inst.Condition, sr) {
		pc := c.Regs.PC()
		c.Regs.SetPC(pc + Word(2*inst.Offset))
	}

	return FormatIIICycles(inst), nil
}

// push decrements SP by 2 and writes value at the new SP, per spec.md
// §4.E's PUSH/CALL semantics.
func (c *CPU) push(value Word) error {
	sp := c.Regs.SP() - 2
	c.Regs.SetSP(sp)

	_, err := c.Mem.WriteWord(sp, value)

	return err
}

// pop reads the word at SP then increments SP by 2.
func (c *CPU) pop() (Word, error) {
	sp := c.Regs.SP()

	v, err := c.Mem.ReadWord(sp)
	if err != nil {
		return 0, err
	}

	c.Regs.SetSP(sp + 2)

	return v, nil
}
