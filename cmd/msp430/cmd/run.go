package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/msp430emu/emulator/internal/cli"
	"github.com/msp430emu/emulator/internal/config"
	"github.com/msp430emu/emulator/internal/console"
	"github.com/msp430emu/emulator/internal/core"
	"github.com/msp430emu/emulator/internal/firmware"
	"github.com/msp430emu/emulator/internal/msplog"
	"github.com/msp430emu/emulator/internal/object"
)

// uartBase is the address the demonstration UART occupies within the
// 8-bit peripheral window, for the "run" sub-command's --interactive mode.
const uartBase core.Addr = 0x0100

// Run returns the "run" sub-command: load an Intel-Hex object file and
// execute it until the CPU enters low-power mode (CPUOFF) or a cycle
// budget is exhausted.
func Run() cli.Command {
	return &runner{}
}

type runner struct {
	configPath  string
	maxCycles   uint64
	interactive bool
}

func (*runner) Description() string { return "run a firmware image" }

func (*runner) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `run [options] image.hex

Loads an Intel-Hex firmware image into FRAM and runs it until the CPU sets
CPUOFF or the cycle budget is exhausted.`)

	return err
}

func (r *runner) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.StringVar(&r.configPath, "config", "", "path to a JSON configuration file")
	fs.Uint64Var(&r.maxCycles, "cycles", 10_000_000, "maximum cycles to execute before giving up")
	fs.BoolVar(&r.interactive, "interactive", false, "bridge a demonstration UART to the controlling terminal")

	return fs
}

func (r *runner) Run(_ context.Context, args []string, out io.Writer, logger *msplog.Logger) int {
	if len(args) != 1 {
		logger.Error("run: expected exactly one image argument")
		return 1
	}

	cfg := config.Defaults()

	if r.configPath != "" {
		loaded, err := config.LoadFile(r.configPath)
		if err != nil {
			logger.Error("run: loading config", "err", err)
			return 1
		}

		cfg = loaded
	}

	if built, err := msplog.New(cfg.Logging); err == nil {
		logger = built
	} else {
		logger.Warn("run: falling back to default logger", "err", err)
	}

	cpu := core.NewDefault()
	cpu.WithLogger(logger)

	if err := firmware.Default().LoadInto(cpu.Mem); err != nil {
		logger.Error("run: installing bootstrap image", "err", err)
		return 1
	}

	if r.interactive {
		uart := console.NewUART(uartBase, out)
		uart.WithLogger(logger)
		cpu.Mem.Peripherals().Register(uartBase, uartBase+console.Size-1, uart)

		bridge, err := console.NewBridge(uart, os.Stdin)
		if err != nil {
			logger.Warn("run: interactive console unavailable", "err", err)
		} else {
			defer bridge.Restore()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			go func() {
				if err := bridge.Run(ctx); err != nil {
					logger.Debug("run: console bridge stopped", "err", err)
				}
			}()
		}
	}

	records, err := loadHex(args[0])
	if err != nil {
		logger.Error("run: loading image", "file", args[0], "err", err)
		return 1
	}

	flash := cpu.Mem.Flash()
	if flash != nil && flash.State() == core.StateLocked {
		flash.TryUnlock(0xa500)
		defer flash.Lock()
	}

	n, err := object.LoadInto(cpu.Mem, records)
	if err != nil {
		logger.Error("run: flashing image", "err", err)
		return 1
	}

	logger.Info("run: loaded image", "file", args[0], "bytes", n)

	entry, err := cpu.Mem.ReadWord(firmware.ResetVector)
	if err != nil {
		logger.Error("run: reading reset vector", "err", err)
		return 1
	}

	cpu.Regs.SetPC(entry)

	reason, cycles, err := cpu.RunUntil(func(c *core.CPU) bool {
		if cfg.CPU.EnableTracing {
			logger.Debug("run: step", "pc", c.Regs.PC(), "cycles", c.Cycles())
		}

		return c.Regs.Status().CPUOff() || c.Cycles() >= r.maxCycles
	})

	logger.Info("run: stopped", "reason", reason, "cycles", cycles)

	if err != nil {
		logger.Error("run: execution error", "err", err)
		return 2
	}

	if cpu.Cycles() >= r.maxCycles && !cpu.Regs.Status().CPUOff() {
		logger.Warn("run: cycle budget exhausted")
		return 3
	}

	return 0
}

func loadHex(path string) ([]object.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	hex := &object.HexEncoding{}
	if err := hex.UnmarshalText(data); err != nil {
		return nil, err
	}

	return hex.Records(), nil
}
