// bridge.go adapts the demonstration UART to a real Unix terminal, the
// same role the teacher's internal/tty.Console plays for the LC-3's
// keyboard/display pair: put the terminal in raw mode, copy keystrokes
// into the peripheral's receive queue, and copy the peripheral's transmit
// writes back out to the terminal.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNoTTY is returned if standard input is not a terminal, in which case
// the Bridge cannot put it in raw mode.
var ErrNoTTY = errors.New("console: not a TTY")

// Bridge connects a UART to the process's controlling terminal.
type Bridge struct {
	uart  *UART
	in    *os.File
	fd    int
	state *term.State
}

// NewBridge puts stdin in raw mode and returns a Bridge wired to uart.
// Callers must call Restore to return the terminal to its original state.
func NewBridge(uart *UART, stdin *os.File) (*Bridge, error) {
	fd := int(stdin.Fd())

	if !term.IsTerminal(fd) {
		return nil, ErrNoTTY
	}

	saved, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoTTY, err)
	}

	b := &Bridge{uart: uart, in: stdin, fd: fd, state: saved}

	if err := b.setTerminalParams(1, 0); err != nil {
		return nil, err
	}

	return b, nil
}

// Restore returns the terminal to its state from before NewBridge.
func (b *Bridge) Restore() {
	_ = b.in.SetReadDeadline(time.Now())
	_ = term.Restore(b.fd, b.state)
}

func (b *Bridge) setTerminalParams(vmin, vtime byte) error {
	_ = syscall.SetNonblock(b.fd, true)

	termIO, err := unix.IoctlGetTermios(b.fd, getTermiosIoctl)
	if err != nil {
		return err
	}

	termIO.Cc[unix.VMIN] = vmin
	termIO.Cc[unix.VTIME] = vtime

	if err := unix.IoctlSetTermios(b.fd, setTermiosIoctl, termIO); err != nil {
		return err
	}

	_ = b.in.SetReadDeadline(time.Time{})

	return nil
}

// Run reads bytes from the terminal and pushes them to the UART's receive
// queue until ctx is cancelled or reading fails.
func (b *Bridge) Run(ctx context.Context) error {
	_ = syscall.SetNonblock(b.fd, false)

	buf := bufio.NewReader(b.in)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		c, err := buf.ReadByte()
		if err != nil {
			return err
		}

		b.uart.Push(c)
	}
}
