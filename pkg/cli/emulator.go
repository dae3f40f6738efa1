package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uiexplorer/pkg/emulator"
	"github.com/devicelab-dev/uiexplorer/pkg/logger"
)

var emulatorCommand = &cli.Command{
	Name:  "emulator",
	Usage: "Manage Android emulators for exploration runs",
	Subcommands: []*cli.Command{
		{
			Name:   "list",
			Usage:  "List available AVDs",
			Action: runEmulatorList,
		},
		{
			Name:  "start",
			Usage: "Boot an AVD and wait until it is ready",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "avd",
					Usage:    "AVD name (see 'uiexplorer emulator list')",
					Required: true,
				},
				&cli.DurationFlag{
					Name:  "timeout",
					Usage: "Boot timeout",
					Value: 3 * time.Minute,
				},
			},
			Action: runEmulatorStart,
		},
		{
			Name:  "stop",
			Usage: "Shut an emulator down",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "serial",
					Usage:    "Emulator serial (e.g. emulator-5554)",
					Required: true,
				},
			},
			Action: runEmulatorStop,
		},
	},
}

func runEmulatorList(c *cli.Context) error {
	avds, err := emulator.ListAVDs()
	if err != nil {
		return err
	}
	if len(avds) == 0 {
		fmt.Println("No AVDs found.")
		return nil
	}
	for _, avd := range avds {
		fmt.Println(avd.Name)
	}
	return nil
}

func runEmulatorStart(c *cli.Context) error {
	if err := logger.Init(os.DevNull); err != nil {
		return err
	}
	defer logger.Close()

	printSetupStep(fmt.Sprintf("Starting AVD %s...", c.String("avd")))
	mgr := emulator.NewManager()
	serial, err := mgr.StartWithRetry(c.String("avd"), c.Duration("timeout"), 2)
	if err != nil {
		return fmt.Errorf("start emulator: %w", err)
	}
	printSetupSuccess(fmt.Sprintf("Emulator ready: %s", serial))
	return nil
}

func runEmulatorStop(c *cli.Context) error {
	if err := logger.Init(os.DevNull); err != nil {
		return err
	}
	defer logger.Close()

	serial := c.String("serial")
	if !emulator.IsEmulator(serial) {
		return fmt.Errorf("%s is not an emulator", serial)
	}
	return emulator.ShutdownEmulator(serial, 30*time.Second)
}
