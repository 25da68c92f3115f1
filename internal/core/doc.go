/*
Package core implements the CPU, memory, and flash/FRAM controller model of a
Texas Instruments MSP430FR2355 microcontroller.

The design mirrors the micro-architecture described in SLAU445I, the
MSP430FR2xx/FR4xx family user's guide: the CPU reaches memory only through the
[MemoryController], the decoder turns a fetched word into a typed
[Instruction], and the execution engine walks that instruction through address
evaluation, operand fetch, execute, and writeback stages.

# CPU

The CPU has sixteen 16-bit registers (R0-R15), with R0/R1/R2/R3 carrying
special meaning (PC, SP, SR, CG2 respectively). There is no separate
instruction register exposed to callers; the fetched word lives in the
decoded [Instruction] value for the duration of one [CPU.Step].

# Memory

The 64 KiB logical address space is partitioned into fixed regions — special
function registers, 8- and 16-bit peripherals, bootstrap loader FRAM,
information memory, SRAM, FRAM code, and the interrupt vector table — each
with its own read/write/execute permission set. The [MemoryController]
routes an access to RAM, to the flash/FRAM [Controller] (for FRAM/flash-backed
regions), to the four fixed information-memory segments, or to a
[MappedDevice] registered on the peripheral bus. The per-region cost of an
access is reported separately by [MemoryController.AccessCycles]; instruction
cycle costs come from the Table 4-10 model instead.

# Flash and FRAM

Code and non-volatile data live behind a controller that models the real
part's lock/unlock, program, and erase state machine, including the
cycle-accounting the hardware datasheet specifies for each operation. The
controller exclusively owns the byte storage of its region; the memory
controller only routes to it.

# Instruction decode and execution

A 16-bit word is classified into Format I (two-operand), Format II
(single-operand), or Format III (conditional jump), fields are extracted,
and addressing modes - including the constant generators implied by R2/R3 -
are resolved into a typed [Instruction] value. The execution engine walks
every decoded instruction through the same fixed pipeline: evaluate address,
fetch operands, execute, write back, exactly as spec'd, with flags and cycle
costs computed per SLAU445I Table 4-10.
*/
package core
