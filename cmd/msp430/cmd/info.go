package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/msp430emu/emulator/internal/cli"
	"github.com/msp430emu/emulator/internal/config"
	"github.com/msp430emu/emulator/internal/core"
	"github.com/msp430emu/emulator/internal/msplog"
)

// Info returns the "info" sub-command: print the default memory map and
// configuration, for inspecting what "run"/"flash" will assemble before
// spending a cycle on it.
func Info() cli.Command {
	return &info{}
}

type info struct{}

func (*info) Description() string { return "print the default memory map and configuration" }

func (*info) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `info

Prints the MSP430FR2355 default memory map and configuration defaults.`)

	return err
}

func (*info) FlagSet() *cli.FlagSet {
	return flag.NewFlagSet("info", flag.ExitOnError)
}

func (*info) Run(_ context.Context, _ []string, out io.Writer, _ *msplog.Logger) int {
	fmt.Fprintln(out, "Memory map:")

	for _, r := range core.DefaultMemoryMap() {
		fmt.Fprintf(out, "  %s\n", r)
	}

	cfg := config.Defaults()

	fmt.Fprintln(out, "\nConfiguration defaults:")
	fmt.Fprintf(out, "  memory.totalSize:        %d\n", cfg.Memory.TotalSize)
	fmt.Fprintf(out, "  memory.enableProtection: %t\n", cfg.Memory.EnableProtection)
	fmt.Fprintf(out, "  cpu.frequency:           %d\n", cfg.CPU.Frequency)
	fmt.Fprintf(out, "  cpu.enableTracing:       %t\n", cfg.CPU.EnableTracing)
	fmt.Fprintf(out, "  logging.minimumLevel:    %s\n", cfg.Logging.MinimumLevel)

	return 0
}
