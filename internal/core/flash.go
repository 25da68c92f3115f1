package core

// flash.go implements component C: the FRAM/Flash controller state machine
// from spec.md §3/§4.C. The controller exclusively owns the byte storage of
// its region; the memory controller only routes to it.

import "fmt"

// ControllerState is the flash/FRAM controller's current state.
type ControllerState uint8

const (
	StateLocked ControllerState = iota
	StateUnlocked
	StateProgramming
	StateErasing
	StateOperationComplete
	StateError
)

func (s ControllerState) String() string {
	switch s {
	case StateLocked:
		return "Locked"
	case StateUnlocked:
		return "Unlocked"
	case StateProgramming:
		return "Programming"
	case StateErasing:
		return "Erasing"
	case StateOperationComplete:
		return "OperationComplete"
	case StateError:
		return "Error"
	default:
		return "unknown"
	}
}

// ProtectionLevel is the controller's current protection level.
type ProtectionLevel uint8

const (
	ProtectionNone ProtectionLevel = iota
	ProtectionWriteProtected
	ProtectionSecurityLocked
	ProtectionPermanentlyLocked
)

func (p ProtectionLevel) String() string {
	switch p {
	case ProtectionNone:
		return "None"
	case ProtectionWriteProtected:
		return "WriteProtected"
	case ProtectionSecurityLocked:
		return "SecurityLocked"
	case ProtectionPermanentlyLocked:
		return "PermanentlyLocked"
	default:
		return "unknown"
	}
}

// Operation is the kind of operation currently in flight.
type Operation uint8

const (
	OpNone Operation = iota
	OpProgram
	OpSectorErase
	OpMassErase
	OpSegmentErase
)

func (o Operation) String() string {
	switch o {
	case OpNone:
		return "None"
	case OpProgram:
		return "Program"
	case OpSectorErase:
		return "SectorErase"
	case OpMassErase:
		return "MassErase"
	case OpSegmentErase:
		return "SegmentErase"
	default:
		return "unknown"
	}
}

// Cycle costs from spec.md §4.C/§6 (SLAU445I timing parameters).
const (
	ProgramCyclesWord  = 35
	ProgramCyclesByte  = 30
	EraseCyclesSector  = 4819
	EraseCyclesMass    = 5297
	EraseCyclesSegment = EraseCyclesSector / 8

	// UnlockKeyByte is the required high byte of an unlock key; any other
	// high byte is rejected (spec.md §6).
	UnlockKeyByte = 0xa5

	// SectorSize and SegmentSize are the erase granularities. A sector is
	// eight segments, matching the 8x ratio between EraseCyclesSector and
	// EraseCyclesSegment.
	SectorSize  = 512
	SegmentSize = SectorSize / 8
)

// Controller models the flash/FRAM controller attached to one byte-addressed
// region of the address space. It owns that region's storage exclusively;
// MemoryController only routes reads and writes to it.
type Controller struct {
	base    Addr
	storage []byte

	state      ControllerState
	protection ProtectionLevel
	op         Operation
	remaining  uint32

	// FRAMMode relaxes the flash bit-clear-only programming rule, allowing
	// arbitrary byte writes without requiring (current & value) == value.
	// Default false models flash semantics, per spec.md's Open Question
	// resolution (SPEC_FULL.md §4.C addendum).
	FRAMMode bool

	log Logger
}

// NewController creates a controller owning size bytes starting at base, in
// the Locked state with no protection.
func NewController(base Addr, size int) *Controller {
	c := &Controller{
		base:    base,
		storage: make([]byte, size),
		log:     nopLogger{},
	}
	c.Reset()

	return c
}

// WithLogger attaches a diagnostic logger.
func (c *Controller) WithLogger(l Logger) { c.log = l }

// Reset returns the controller to Locked/None with erased (0xFF) storage,
// per spec.md §4.B: "Reset ... resets the flash controller to Locked/None."
func (c *Controller) Reset() {
	c.state = StateLocked
	c.protection = ProtectionNone
	c.op = OpNone
	c.remaining = 0

	for i := range c.storage {
		c.storage[i] = 0xff
	}
}

func (c *Controller) State() ControllerState         { return c.state }
func (c *Controller) Protection() ProtectionLevel     { return c.protection }
func (c *Controller) ActiveOperation() Operation      { return c.op }
func (c *Controller) CyclesRemaining() uint32         { return c.remaining }
func (c *Controller) Base() Addr                      { return c.base }
func (c *Controller) Size() int                       { return len(c.storage) }
func (c *Controller) Owns(addr Addr) bool {
	off := int(addr) - int(c.base)
	return off >= 0 && off < len(c.storage)
}

func (c *Controller) refuse(reason string) bool {
	c.log.Warn("flash: controller refused operation", "state", c.state, "reason", reason)
	return false
}

// TryUnlock attempts to transition Locked -> Unlocked. The key's high byte
// must be 0xA5 and the protection level must permit unlocking (None or
// WriteProtected); SecurityLocked and PermanentlyLocked forbid it
// permanently, per spec.md §4.C.
func (c *Controller) TryUnlock(key Word) bool {
	if c.state != StateLocked {
		return c.refuse("not locked")
	}

	if byte(key>>8) != UnlockKeyByte {
		return c.refuse("bad unlock key")
	}

	if c.protection == ProtectionSecurityLocked || c.protection == ProtectionPermanentlyLocked {
		return c.refuse("protection level forbids unlock")
	}

	c.state = StateUnlocked

	return true
}

// Lock transitions Unlocked -> Locked directly, without changing
// protection.
func (c *Controller) Lock() bool {
	if c.state != StateUnlocked {
		return c.refuse("not unlocked")
	}

	c.state = StateLocked

	return true
}

// SetProtection changes the protection level while Unlocked. Raising the
// level above None also locks the controller immediately, per the state
// diagram in spec.md §4.C. PermanentlyLocked is terminal: once set, no
// further SetProtection calls succeed.
func (c *Controller) SetProtection(level ProtectionLevel) bool {
	if c.protection == ProtectionPermanentlyLocked {
		return c.refuse("permanently locked")
	}

	if c.state != StateUnlocked {
		return c.refuse("not unlocked")
	}

	c.protection = level

	if level != ProtectionNone {
		c.state = StateLocked
	}

	return true
}

// canProgram applies the flash bit-clear-only rule unless FRAMMode relaxes
// it: writing v to a cell with current value cur succeeds only if
// (cur & v) == v, i.e. programming can only clear bits, never set them.
func (c *Controller) canProgram(cur, v byte) bool {
	return c.FRAMMode || (cur&v) == v
}

// StartProgram begins a programming operation, writing value (a byte, or a
// little-endian word if isWord) at addr. The write is validated against the
// bit-clear rule (or relaxed FRAMMode) and, if accepted, committed to
// storage immediately; cycles_remaining models the busy time the real part
// would take before the operation completes, per spec.md §4.C/§6.
func (c *Controller) StartProgram(addr Addr, value Word, isWord bool) bool {
	if c.state != StateUnlocked {
		return c.refuse("not unlocked")
	}

	if !c.Owns(addr) {
		return c.refuse("address not owned by controller")
	}

	off := int(addr - c.base)

	if isWord {
		if off+1 >= len(c.storage) {
			return c.refuse("word program out of range")
		}

		lo, hi := byte(value&0xff), byte(value>>8)

		if !c.canProgram(c.storage[off], lo) || !c.canProgram(c.storage[off+1], hi) {
			return c.refuse("bit-clear rule violated")
		}

		c.storage[off] = lo
		c.storage[off+1] = hi
		c.remaining = ProgramCyclesWord
	} else {
		b := byte(value & 0xff)

		if !c.canProgram(c.storage[off], b) {
			return c.refuse("bit-clear rule violated")
		}

		c.storage[off] = b
		c.remaining = ProgramCyclesByte
	}

	c.state = StateProgramming
	c.op = OpProgram

	return true
}

// StartSectorErase begins erasing the SectorSize-aligned sector containing
// addr.
func (c *Controller) StartSectorErase(addr Addr) bool {
	return c.startErase(addr, SectorSize, OpSectorErase, EraseCyclesSector)
}

// StartSegmentErase begins erasing the SegmentSize-aligned segment
// containing addr.
func (c *Controller) StartSegmentErase(addr Addr) bool {
	return c.startErase(addr, SegmentSize, OpSegmentErase, EraseCyclesSegment)
}

func (c *Controller) startErase(addr Addr, unit int, op Operation, cycles uint32) bool {
	if c.state != StateUnlocked {
		return c.refuse("not unlocked")
	}

	if !c.Owns(addr) {
		return c.refuse("address not owned by controller")
	}

	off := int(addr-c.base) &^ (unit - 1)
	for i := off; i < off+unit && i < len(c.storage); i++ {
		c.storage[i] = 0xff
	}

	c.state = StateErasing
	c.op = op
	c.remaining = cycles

	return true
}

// StartMassErase begins erasing the controller's entire owned region.
func (c *Controller) StartMassErase() bool {
	if c.state != StateUnlocked {
		return c.refuse("not unlocked")
	}

	for i := range c.storage {
		c.storage[i] = 0xff
	}

	c.state = StateErasing
	c.op = OpMassErase
	c.remaining = EraseCyclesMass

	return true
}

// Update advances the in-flight program/erase operation by delta cycles. If
// delta completes the operation, the controller passes through
// OperationComplete and automatically returns to Unlocked, per the state
// diagram in spec.md §4.C.
func (c *Controller) Update(delta uint32) {
	if c.state != StateProgramming && c.state != StateErasing {
		return
	}

	if delta >= c.remaining {
		c.remaining = 0
		c.state = StateOperationComplete
		c.op = OpNone
		c.state = StateUnlocked
	} else {
		c.remaining -= delta
	}
}

// Fault forces the controller into the Error state. Only Reset recovers
// from it, per the state diagram in spec.md §4.C.
func (c *Controller) Fault(reason string) {
	c.log.Error("flash: controller fault", "reason", reason)
	c.state = StateError
}

// ReadByte reads a byte from the controller's owned storage. Reads always
// succeed regardless of lock state.
func (c *Controller) ReadByte(addr Addr) (byte, bool) {
	if !c.Owns(addr) {
		return 0, false
	}

	return c.storage[addr-c.base], true
}

func (c *Controller) String() string {
	return fmt.Sprintf("Controller(state:%s protection:%s op:%s remaining:%d)",
		c.state, c.protection, c.op, c.remaining)
}
