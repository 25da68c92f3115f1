package core

// default.go assembles the MSP430FR2355 default configuration: the memory
// map from spec.md §3's table, a flash/FRAM controller owning the FRAM code
// region, four information-memory segments, and an empty peripheral bus
// ready for external collaborators (internal/console and friends) to
// register devices on. Grounded on the teacher's internal/vm.New, which
// performs the same default-assembly role for the LC-3 core.

// NewDefaultMemoryController builds a MemoryController over
// DefaultMemoryMap with a flash controller sized to the FRAM code region,
// information memory, and an empty peripheral bus.
func NewDefaultMemoryController() *MemoryController {
	mm := NewMemoryMap(DefaultMemoryMap())

	framRegion, _ := mm.Find(0x4000)
	size := int(framRegion.End) - int(framRegion.Start) + 1

	flash := NewController(framRegion.Start, size)
	info := NewInformationMemory()
	periph := NewPeripheralBus()

	return NewMemoryController(mm, flash, info, periph)
}

// NewDefault assembles a CPU over NewDefaultMemoryController's memory,
// matching a just-reset MSP430FR2355 part.
func NewDefault() *CPU {
	return New(NewDefaultMemoryController())
}
