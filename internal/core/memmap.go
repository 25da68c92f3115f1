package core

// memmap.go defines the 64 KiB address space as an ordered list of
// non-overlapping regions, each carrying a permission set, per spec.md §3.

import "fmt"

// Permission is a bit in the Read/Write/Execute set a region grants.
type Permission uint8

const (
	PermRead Permission = 1 << iota
	PermWrite
	PermExecute

	PermRW  = PermRead | PermWrite
	PermRX  = PermRead | PermExecute
	PermRWX = PermRead | PermWrite | PermExecute
)

func (p Permission) String() string {
	b := []byte("---")
	if p&PermRead != 0 {
		b[0] = 'R'
	}

	if p&PermWrite != 0 {
		b[1] = 'W'
	}

	if p&PermExecute != 0 {
		b[2] = 'X'
	}

	return string(b)
}

func (p Permission) Has(want Permission) bool { return p&want == want }

// RegionKind classifies the backing storage a region routes to.
type RegionKind uint8

const (
	RegionSFR RegionKind = iota
	RegionPeripheral8
	RegionPeripheral16
	RegionBSLFRAM
	RegionInfoMemory
	RegionSRAM
	RegionFRAMCode
	RegionVectors
)

func (k RegionKind) String() string {
	switch k {
	case RegionSFR:
		return "SFR"
	case RegionPeripheral8:
		return "8-bit peripheral"
	case RegionPeripheral16:
		return "16-bit peripheral"
	case RegionBSLFRAM:
		return "bootstrap loader FRAM"
	case RegionInfoMemory:
		return "information memory"
	case RegionSRAM:
		return "SRAM"
	case RegionFRAMCode:
		return "FRAM code"
	case RegionVectors:
		return "interrupt vectors"
	default:
		return "unknown"
	}
}

// MemoryRegion describes one contiguous, inclusive range of the address
// space.
type MemoryRegion struct {
	Kind        RegionKind
	Start       Addr
	End         Addr // inclusive
	Permissions Permission
	Description string
}

func (r MemoryRegion) Contains(addr Addr) bool {
	return addr >= r.Start && addr <= r.End
}

func (r MemoryRegion) String() string {
	return fmt.Sprintf("%#04x-%#04x %s [%s] %s", uint16(r.Start), uint16(r.End), r.Kind, r.Permissions, r.Description)
}

// DefaultMemoryMap returns the MSP430FR2355 memory layout from spec.md §3.
func DefaultMemoryMap() []MemoryRegion {
	return []MemoryRegion{
		{RegionSFR, 0x0000, 0x00ff, PermRW, "special function registers"},
		{RegionPeripheral8, 0x0100, 0x01ff, PermRW, "8-bit peripherals"},
		{RegionPeripheral16, 0x0200, 0x027f, PermRW, "16-bit peripherals"},
		{RegionBSLFRAM, 0x1000, 0x17ff, PermRX, "bootstrap loader FRAM"},
		{RegionInfoMemory, 0x1800, 0x19ff, PermRW, "information memory"},
		{RegionSRAM, 0x2000, 0x2fff, PermRWX, "SRAM"},
		{RegionFRAMCode, 0x4000, 0xbfff, PermRX, "FRAM code"},
		{RegionVectors, 0xffe0, 0xffff, PermRX, "interrupt vector table"},
	}
}

// MemoryMap is an ordered, non-overlapping list of regions plus a 64 KiB
// lookup table for O(1) routing.
type MemoryMap struct {
	regions []MemoryRegion
	lookup  [65536]int8 // index into regions, -1 if unmapped
}

// NewMemoryMap validates that regions do not overlap and builds the lookup
// table. Construction panics on overlap, matching spec.md §4.B: "No region
// may overlap; construction validates this."
func NewMemoryMap(regions []MemoryRegion) *MemoryMap {
	mm := &MemoryMap{regions: append([]MemoryRegion(nil), regions...)}

	for i := range mm.lookup {
		mm.lookup[i] = -1
	}

	for i, r := range mm.regions {
		if i > 127 {
			panic("core: too many memory regions for int8 lookup index")
		}

		for a := uint32(r.Start); a <= uint32(r.End); a++ {
			if mm.lookup[a] != -1 {
				panic(fmt.Sprintf("core: overlapping memory regions at %#04x", a))
			}

			mm.lookup[a] = int8(i)
		}
	}

	return mm
}

// Find returns the region containing addr, or false if the address is
// unmapped.
func (mm *MemoryMap) Find(addr Addr) (MemoryRegion, bool) {
	idx := mm.lookup[addr]
	if idx < 0 {
		return MemoryRegion{}, false
	}

	return mm.regions[idx], true
}

// Regions returns the ordered list of regions.
func (mm *MemoryMap) Regions() []MemoryRegion {
	return append([]MemoryRegion(nil), mm.regions...)
}
