package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uiexplorer/pkg/device"
)

var devicesCommand = &cli.Command{
	Name:  "devices",
	Usage: "List connected Android devices",
	Description: `List connected devices with model and SDK level.

Example:
  uiexplorer devices`,
	Action: runDevices,
}

func runDevices(c *cli.Context) error {
	serials, err := device.ListSerials()
	if err != nil {
		return err
	}
	if len(serials) == 0 {
		fmt.Println("No devices connected.")
		return nil
	}

	for _, serial := range serials {
		dev, err := device.New(serial)
		if err != nil {
			fmt.Printf("%-24s (unavailable: %v)\n", serial, err)
			continue
		}
		info, err := dev.Info()
		if err != nil {
			fmt.Printf("%-24s (info failed: %v)\n", serial, err)
			continue
		}
		kind := "device"
		if info.IsEmulator {
			kind = "emulator"
		}
		fmt.Printf("%-24s %s %s (SDK %s, %s)\n", serial, info.Brand, info.Model, info.SDK, kind)
	}
	return nil
}
