package core

// operands.go resolves addressing modes into values and writeback
// locations, per the execution order in spec.md §4.E steps 1-3. It is
// grounded on the teacher's MAR/MDR-mediated operand fetch in
// internal/vm/exec.go, generalized from the teacher's fixed LC-3 modes to
// the MSP430's eight-case addressing-mode set including constant
// generators and PC-relative symbolic mode.

// operand is a resolved operand: its value, and (for non-register,
// non-constant sources) the address it was read from, so the same
// resolution can be reused to write a result back.
type operand struct {
	value    Word
	isReg    bool
	reg      RegID
	hasAddr  bool
	addr     Addr
}

// fetchExtensionWords fetches one extension word per mode that requires
// one (src first, then dst, matching their operand-read order in spec.md
// §4.E), advancing PC by 2 each time, and records the address each word
// was fetched from for Symbolic-mode address computation. It returns the
// possibly-updated modes.
func (c *CPU) fetchExtensionWords(src, dst AddressingMode) (AddressingMode, AddressingMode, error) {
	fetch := func(m AddressingMode) (AddressingMode, error) {
		if !m.ConsumesExtensionWord() {
			return m, nil
		}

		wordAddr := c.Regs.PC()

		ext, err := c.Mem.FetchInstruction(wordAddr)
		if err != nil {
			return m, err
		}

		c.Regs.IncrementPC(2)

		switch m.Kind {
		case ModeIndexed:
			m.Offset = ext
		case ModeImmediate:
			m.Literal = ext
		case ModeAbsolute:
			m.Addr = ext
		case ModeSymbolic:
			// pc_of_extension_word + offset, per spec.md §4.E step 2.
			m.Addr = wordAddr + ext
		}

		return m, nil
	}

	src, err := fetch(src)
	if err != nil {
		return src, dst, err
	}

	dst, err = fetch(dst)

	return src, dst, err
}

// regWord reads register r as a full word, ignoring the error: every RegID
// reaching this layer was extracted from a decoded 4-bit field and is
// always in range.
func (c *CPU) regWord(r RegID) Word {
	v, _ := c.Regs.Read(r)
	return Word(v)
}

// readOperand resolves mode to a value and, for memory/register operands,
// its writeback location. byteOp selects byte- vs word-width register and
// memory access. isSource gates auto-increment, which never applies to
// destinations.
func (c *CPU) readOperand(mode AddressingMode, byteOp, isSource bool) (operand, error) {
	switch mode.Kind {
	case ModeRegister:
		var v Word
		if byteOp {
			b, _ := c.Regs.ReadByte(mode.Reg)
			v = Word(b)
		} else {
			v = c.regWord(mode.Reg)
		}

		return operand{value: v, isReg: true, reg: mode.Reg}, nil

	case ModeImmediate:
		return operand{value: mode.Literal}, nil

	case ModeAbsolute:
		v, err := c.readMem(mode.Addr, byteOp)
		return operand{value: v, hasAddr: true, addr: mode.Addr}, err

	case ModeSymbolic:
		v, err := c.readMem(mode.Addr, byteOp)
		return operand{value: v, hasAddr: true, addr: mode.Addr}, err

	case ModeIndirect:
		addr := c.regWord(mode.Reg)
		v, err := c.readMem(addr, byteOp)

		return operand{value: v, hasAddr: true, addr: addr}, err

	case ModeIndirectAutoIncrement:
		addr := c.regWord(mode.Reg)
		v, err := c.readMem(addr, byteOp)
		if err != nil {
			return operand{}, err
		}

		if isSource {
			step := Word(2)
			if byteOp && mode.Reg != PC && mode.Reg != SP {
				step = 1
			}

			_ = c.Regs.Write(mode.Reg, Register(addr+step))
		}

		return operand{value: v, hasAddr: true, addr: addr}, nil

	case ModeIndexed:
		addr := c.regWord(mode.Reg) + mode.Offset
		v, err := c.readMem(addr, byteOp)

		return operand{value: v, hasAddr: true, addr: addr}, err

	default:
		return operand{}, &InvalidInstructionError{Reason: "invalid addressing mode"}
	}
}

func (c *CPU) readMem(addr Addr, byteOp bool) (Word, error) {
	if byteOp {
		b, err := c.Mem.ReadByte(addr)
		return Word(b), err
	}

	return c.Mem.ReadWord(addr)
}

// writeOperand commits result to the location op was resolved from.
func (c *CPU) writeOperand(op operand, result Word, byteOp bool) error {
	if op.isReg {
		if byteOp {
			return c.Regs.WriteByte(op.reg, byte(result))
		}

		return c.Regs.Write(op.reg, Register(result))
	}

	if !op.hasAddr {
		return &InvalidInstructionError{Reason: "destination operand is not writable"}
	}

	if byteOp {
		_, err := c.Mem.WriteByte(op.addr, byte(result))
		return err
	}

	_, err := c.Mem.WriteWord(op.addr, result)

	return err
}
