package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/msp430emu/emulator/internal/cli"
	"github.com/msp430emu/emulator/internal/core"
	"github.com/msp430emu/emulator/internal/msplog"
	"github.com/msp430emu/emulator/internal/object"
)

// Flash returns the "flash" sub-command: program an Intel-Hex image into a
// freshly constructed part's FRAM and report the controller's final state,
// without executing any code. Useful for validating an image before
// handing it to "run".
func Flash() cli.Command {
	return &flasher{}
}

type flasher struct{}

func (*flasher) Description() string { return "program a firmware image into FRAM" }

func (*flasher) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `flash image.hex

Unlocks the flash controller, programs image.hex into FRAM, and locks it
again, reporting the controller's resulting state.`)

	return err
}

func (*flasher) FlagSet() *cli.FlagSet {
	return flag.NewFlagSet("flash", flag.ExitOnError)
}

func (*flasher) Run(_ context.Context, args []string, out io.Writer, logger *msplog.Logger) int {
	if len(args) != 1 {
		logger.Error("flash: expected exactly one image argument")
		return 1
	}

	records, err := loadHex(args[0])
	if err != nil {
		logger.Error("flash: loading image", "file", args[0], "err", err)
		return 1
	}

	mem := core.NewDefaultMemoryController()

	flash := mem.Flash()
	if flash == nil {
		logger.Error("flash: no flash controller attached")
		return 1
	}

	if !flash.TryUnlock(0xa500) {
		logger.Error("flash: unlock refused", "state", flash.State())
		return 1
	}

	n, err := object.LoadInto(mem, records)
	if err != nil {
		logger.Error("flash: programming", "err", err)
		return 1
	}

	flash.Lock()

	fmt.Fprintf(out, "flashed %d bytes; controller state: %s\n", n, flash.State())

	return 0
}
