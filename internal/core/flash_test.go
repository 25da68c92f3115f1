package core

import "testing"

func newTestController(tt *testing.T) *Controller {
	tt.Helper()
	return NewController(0x4000, SectorSize*2)
}

func TestFlashUnlockThenLockLeavesStorageUntouched(tt *testing.T) {
	c := newTestController(tt)

	before := make([]byte, c.Size())
	copy(before, c.storage)

	if !c.TryUnlock(0xa500) {
		tt.Fatal("TryUnlock should succeed from Locked with a valid key")
	}

	if c.State() != StateUnlocked {
		tt.Fatalf("state: want Unlocked, got %s", c.State())
	}

	if !c.Lock() {
		tt.Fatal("Lock should succeed from Unlocked")
	}

	if c.State() != StateLocked {
		tt.Fatalf("state: want Locked, got %s", c.State())
	}

	for i, b := range c.storage {
		if b != before[i] {
			tt.Fatalf("storage[%d] mutated by unlock/lock: want %#02x, got %#02x", i, before[i], b)
		}
	}
}

func TestFlashUnlockRejectsBadKey(tt *testing.T) {
	c := newTestController(tt)

	if c.TryUnlock(0x1234) {
		tt.Error("TryUnlock should refuse a key with the wrong high byte")
	}

	if c.State() != StateLocked {
		tt.Errorf("state should remain Locked, got %s", c.State())
	}
}

func TestFlashProgramObeysBitClearRule(tt *testing.T) {
	c := newTestController(tt)

	c.TryUnlock(0xa500)

	if !c.StartProgram(0x4000, 0x00aa, false) {
		tt.Fatal("first program from erased (0xff) storage should succeed")
	}

	c.Update(ProgramCyclesByte)

	if c.State() != StateUnlocked {
		tt.Fatalf("state after operation completes: want Unlocked, got %s", c.State())
	}

	// 0xaa & 0x55 != 0x55: setting bits the first write cleared violates
	// the bit-clear-only rule without an intervening erase.
	if c.StartProgram(0x4000, 0x0055, false) {
		tt.Error("programming 0x55 over 0xaa should violate the bit-clear rule")
	}
}

func TestFlashEraseThenReadIsAllOnes(tt *testing.T) {
	c := newTestController(tt)

	c.TryUnlock(0xa500)
	c.StartProgram(0x4000, 0x0000, false)
	c.Update(ProgramCyclesByte)

	if b, _ := c.ReadByte(0x4000); b != 0x00 {
		tt.Fatalf("sanity: programmed byte should read 0x00, got %#02x", b)
	}

	c.TryUnlock(0xa500)

	if !c.StartSectorErase(0x4000) {
		tt.Fatal("StartSectorErase should succeed while Unlocked")
	}

	c.Update(EraseCyclesSector)

	if c.State() != StateUnlocked {
		tt.Fatalf("state after erase completes: want Unlocked, got %s", c.State())
	}

	for addr := Addr(0x4000); addr < 0x4000+SectorSize; addr++ {
		b, ok := c.ReadByte(addr)
		if !ok {
			tt.Fatalf("ReadByte(%s): not owned", addr)
		}

		if b != 0xff {
			tt.Fatalf("erased byte at %s: want 0xff, got %#02x", addr, b)
		}
	}
}

func TestFlashFRAMModeRelaxesbitClearRule(tt *testing.T) {
	c := newTestController(tt)
	c.FRAMMode = true

	c.TryUnlock(0xa500)
	c.StartProgram(0x4000, 0x0000, false)
	c.Update(ProgramCyclesByte)

	c.TryUnlock(0xa500)

	if !c.StartProgram(0x4000, 0x00ff, false) {
		tt.Error("FRAMMode should allow setting bits without an erase")
	}
}
