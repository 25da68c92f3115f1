package core

// instr.go declares the decoded instruction and addressing-mode tagged
// variants from spec.md §3, adapted from the teacher's instruction value
// types in internal/vm. Unlike the teacher's interface-per-opcode
// hierarchy, addressing modes here are a closed, flat set, so a
// kind-tagged struct is the idiomatic fit: switch on Kind, read only the
// fields that kind defines.

import "fmt"

// AddressingModeKind is the tag of an AddressingMode.
type AddressingModeKind uint8

const (
	ModeInvalid AddressingModeKind = iota
	ModeRegister
	ModeIndexed
	ModeIndirect
	ModeIndirectAutoIncrement
	ModeImmediate
	ModeAbsolute
	ModeSymbolic
)

func (k AddressingModeKind) String() string {
	switch k {
	case ModeRegister:
		return "Register"
	case ModeIndexed:
		return "Indexed"
	case ModeIndirect:
		return "Indirect"
	case ModeIndirectAutoIncrement:
		return "IndirectAutoIncrement"
	case ModeImmediate:
		return "Immediate"
	case ModeAbsolute:
		return "Absolute"
	case ModeSymbolic:
		return "Symbolic"
	default:
		return "Invalid"
	}
}

// AddressingMode is a decoded operand addressing mode. Which fields are
// meaningful depends on Kind:
//   - Register, Indirect, IndirectAutoIncrement: Reg.
//   - Indexed: Reg and Offset.
//   - Symbolic: Reg (always PC) and Addr, the extension word's own address
//     plus the offset it holds.
//   - Immediate: Literal holds the value directly (either fetched from an
//     extension word, or a constant-generator value with IsConstant set).
//   - Absolute: Addr.
type AddressingMode struct {
	Kind       AddressingModeKind
	Reg        RegID
	Offset     Word
	Addr       Word
	Literal    Word
	IsConstant bool // value came from a constant generator, not an extension word
}

func (m AddressingMode) String() string {
	switch m.Kind {
	case ModeRegister, ModeIndirect, ModeIndirectAutoIncrement:
		return fmt.Sprintf("%s(%s)", m.Kind, m.Reg)
	case ModeIndexed, ModeSymbolic:
		return fmt.Sprintf("%s(%s, %#04x)", m.Kind, m.Reg, uint16(m.Offset))
	case ModeImmediate:
		if m.IsConstant {
			return fmt.Sprintf("Immediate(cg:%#04x)", uint16(m.Literal))
		}

		return fmt.Sprintf("Immediate(%#04x)", uint16(m.Literal))
	case ModeAbsolute:
		return fmt.Sprintf("Absolute(%#04x)", uint16(m.Addr))
	default:
		return "Invalid"
	}
}

// ConsumesExtensionWord reports whether resolving this mode requires
// fetching an extension word, per spec.md §4.D: Indexed, Immediate,
// Absolute, and Symbolic each consume one, except constant-generator
// encodings, which consume none.
func (m AddressingMode) ConsumesExtensionWord() bool {
	if m.IsConstant {
		return false
	}

	switch m.Kind {
	case ModeIndexed, ModeImmediate, ModeAbsolute, ModeSymbolic:
		return true
	default:
		return false
	}
}

// Instruction is a fully decoded instruction word, tagged by Format.
// Format I uses Opcode/SrcMode/DstMode/SrcReg/DstReg; Format II uses
// Opcode/SrcMode/SrcReg; Format III uses Condition/Offset. ByteOp marks a
// .B operation; Word carries the original word for diagnostics.
type Instruction struct {
	Format Format
	Word   Word

	// Format I and II.
	Opcode  Opcode
	SrcReg  RegID
	SrcMode AddressingMode
	DstReg  RegID
	DstMode AddressingMode
	ByteOp  bool

	// Format III.
	Condition Condition
	Offset    int16

	// ExtensionWordCount is computed from SrcMode/DstMode, per spec.md §3:
	// always in {0,1,2}.
	ExtensionWordCount int
}

func (i Instruction) String() string {
	switch i.Format {
	case FormatI:
		suffix := ""
		if i.ByteOp {
			suffix = ".B"
		}

		return fmt.Sprintf("%s%s %s, %s [%s]", i.Opcode, suffix, i.SrcMode, i.DstMode, i.Word)
	case FormatII:
		suffix := ""
		if i.ByteOp {
			suffix = ".B"
		}

		return fmt.Sprintf("%s%s %s [%s]", i.Opcode, suffix, i.SrcMode, i.Word)
	case FormatIII:
		return fmt.Sprintf("%s %+d [%s]", i.Condition, i.Offset, i.Word)
	default:
		return fmt.Sprintf("invalid [%s]", i.Word)
	}
}
