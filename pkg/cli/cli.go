// Package cli provides the command-line interface for uiexplorer.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "device",
		Aliases: []string{"serial"},
		Usage:   "Device serial to run on (auto-detected when omitted)",
		EnvVars: []string{"UIEXPLORER_DEVICE"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"UIEXPLORER_VERBOSE"},
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "uiexplorer",
		Usage:   "Task-directed UI exploration for Android apps",
		Version: Version,
		Description: `uiexplorer drives an Android app through its UI, building a state
graph of the screens it discovers and steering toward a task when one
is given.

Examples:
  uiexplorer explore --app com.example.notes
  uiexplorer explore --app com.example.notes --policy task --task "open settings"
  uiexplorer explore --config config.yaml
  uiexplorer hierarchy --device emulator-5554`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			exploreCommand,
			hierarchyCommand,
			devicesCommand,
			emulatorCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
