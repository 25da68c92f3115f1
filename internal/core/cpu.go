package core

// cpu.go assembles the register file, memory controller, and flash/FRAM
// controller into the complete CPU, exposing the stepping surface spec.md
// §5/§6 requires: `step()` and `run_until(predicate)`. Grounded on the
// teacher's internal/vm.Machine, which performs the same assembly role for
// the LC-3 core.

// CPU is the assembled MSP430 core: register file, unified memory
// controller (which itself routes to RAM, flash/FRAM, information memory,
// and the peripheral bus), and the fetch-decode-execute loop.
type CPU struct {
	Regs *RegisterFile
	Mem  *MemoryController

	cycles uint64
	log    Logger
}

// New assembles a CPU over an already-constructed memory controller. The
// register file starts zeroed, matching a just-reset part.
func New(mem *MemoryController) *CPU {
	return &CPU{
		Regs: &RegisterFile{},
		Mem:  mem,
		log:  nopLogger{},
	}
}

// WithLogger attaches a diagnostic logger.
func (c *CPU) WithLogger(l Logger) { c.log = l }

// Reset zeroes the register file and resets memory, per spec.md §4.A/§4.B.
func (c *CPU) Reset() {
	c.Regs.Reset()
	c.Mem.Reset()
	c.cycles = 0
}

// Cycles returns the total simulated cycle count since construction or the
// last Reset.
func (c *CPU) Cycles() uint64 { return c.cycles }

// State is a read-only snapshot of CPU state, per spec.md §6: "state()
// exposes read-only views of the register file, status bits, cycle
// counter, and memory regions."
type State struct {
	Registers [NumRegisters]Word
	Status    StatusRegister
	Cycles    uint64
	Regions   []MemoryRegion
}

// State returns a snapshot of the CPU's current observable state.
func (c *CPU) State() State {
	s := State{Cycles: c.cycles, Status: c.Regs.Status(), Regions: c.Mem.Map().Regions()}

	for r := RegID(0); r < NumRegisters; r++ {
		v, _ := c.Regs.Read(r)
		s.Registers[r] = Word(v)
	}

	return s
}

// StopReason explains why run_until stopped.
type StopReason uint8

const (
	StopPredicate StopReason = iota
	StopError
)

func (r StopReason) String() string {
	if r == StopError {
		return "error"
	}

	return "predicate"
}

// RunUntil executes instructions until predicate returns true or Step
// returns an error, per spec.md §5. It returns the reason it stopped, the
// total cycles executed during this call, and the first error encountered
// (nil on a predicate stop).
func (c *CPU) RunUntil(predicate func(*CPU) bool) (StopReason, uint64, error) {
	var executed uint64

	for {
		if predicate(c) {
			return StopPredicate, executed, nil
		}

		n, err := c.Step()
		executed += uint64(n)

		if err != nil {
			return StopError, executed, err
		}
	}
}
