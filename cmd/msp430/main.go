// msp430 is the command-line interface to the emulator: a software model
// of the TI MSP430FR2355 microcontroller.
package main

import (
	"context"
	"os"

	"github.com/msp430emu/emulator/cmd/msp430/cmd"
	"github.com/msp430emu/emulator/internal/cli"
)

var commands = []cli.Command{
	cmd.Run(),
	cmd.Flash(),
	cmd.Info(),
	cmd.Reset(),
}

func main() {
	result :=
		cli.New(context.Background()).
			WithLogger(os.Stderr).
			WithCommands(commands).
			WithHelp(cmd.Help(commands)).
			Execute(os.Args[1:])

	os.Exit(result)
}
