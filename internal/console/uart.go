// Package console implements a demonstration memory-mapped UART and a
// bridge from it to the process's real terminal, adapted from the
// teacher's internal/tty package. Its purpose, per spec.md §6, is to
// exercise internal/core.MappedDevice from outside the core package: the
// core never imports this package, it only calls the interface.
package console

import (
	"fmt"
	"io"
	"sync"

	"github.com/msp430emu/emulator/internal/core"
)

// Register offsets from a UART's base address. TXBUF is written to send a
// byte; RXBUF is read to receive one. Both are word-granular, matching how
// internal/core.MemoryController dispatches to a MappedDevice.
const (
	offsetTXBUF core.Addr = 0
	offsetRXBUF core.Addr = 2
)

// Size is the address span a UART occupies, for PeripheralBus.Register.
const Size = 4

// UART is a minimal transmit/receive-buffer peripheral. It has none of the
// real eUSCI_A module's baud-rate or framing configuration: a store to
// TXBUF writes the low byte directly to out, and a load from RXBUF pops the
// oldest queued received byte, or 0 if the queue is empty.
type UART struct {
	base core.Addr
	out  io.Writer
	log  core.Logger

	mut sync.Mutex
	rx  []byte
}

// NewUART creates a UART occupying [base, base+Size) and transmitting to
// out.
func NewUART(base core.Addr, out io.Writer) *UART {
	return &UART{base: base, out: out, log: nopLogger{}}
}

func (u *UART) WithLogger(l core.Logger) { u.log = l }

func (u *UART) String() string {
	return fmt.Sprintf("UART(%s)", u.base)
}

// Push enqueues a received byte for the next RXBUF load. Excess bytes
// beyond a small backlog are dropped rather than blocking the caller, since
// Push is typically called from a terminal-reading goroutine outside the
// CPU's step loop.
func (u *UART) Push(b byte) {
	const backlog = 256

	u.mut.Lock()
	defer u.mut.Unlock()

	if len(u.rx) >= backlog {
		u.log.Warn("console: rx backlog full, dropping byte")
		return
	}

	u.rx = append(u.rx, b)
}

// Load implements core.MappedDevice. Only RXBUF returns data; TXBUF reads
// as 0.
func (u *UART) Load(addr core.Addr) (core.Word, error) {
	off := addr - u.base

	if off != offsetRXBUF {
		return 0, nil
	}

	u.mut.Lock()
	defer u.mut.Unlock()

	if len(u.rx) == 0 {
		return 0, nil
	}

	b := u.rx[0]
	u.rx = u.rx[1:]

	return core.Word(b), nil
}

// Store implements core.MappedDevice. Only TXBUF accepts data; writes to
// RXBUF are ignored.
func (u *UART) Store(addr core.Addr, value core.Word) error {
	off := addr - u.base

	if off != offsetTXBUF {
		return nil
	}

	_, err := u.out.Write([]byte{byte(value)})

	return err
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
