package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uiexplorer/pkg/config"
	"github.com/devicelab-dev/uiexplorer/pkg/logger"
	"github.com/devicelab-dev/uiexplorer/pkg/snapshot"
)

var hierarchyCommand = &cli.Command{
	Name:  "hierarchy",
	Usage: "Print the parsed view hierarchy of the connected device",
	Description: `Capture the current screen and print its widgets.

Examples:
  uiexplorer hierarchy
  uiexplorer hierarchy --raw
  uiexplorer hierarchy --device emulator-5554`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "Print the raw UIAutomator XML instead of parsed widgets",
		},
	},
	Action: runHierarchy,
}

func runHierarchy(c *cli.Context) error {
	if err := logger.Init(os.DevNull); err != nil {
		return err
	}
	defer logger.Close()

	cfg := &config.Config{Device: c.String("device"), Output: os.TempDir()}
	drv, _, cleanup, err := connectDriver(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	hierarchy, _, err := drv.Capture()
	if err != nil {
		return fmt.Errorf("capture hierarchy: %w", err)
	}

	if c.Bool("raw") {
		fmt.Println(hierarchy)
		return nil
	}

	widgets, err := snapshot.ParseHierarchy(hierarchy)
	if err != nil {
		return fmt.Errorf("parse hierarchy: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(widgets)
}
