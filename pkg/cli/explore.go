package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uiexplorer/pkg/config"
	"github.com/devicelab-dev/uiexplorer/pkg/device"
	uia2driver "github.com/devicelab-dev/uiexplorer/pkg/driver/uiautomator2"
	"github.com/devicelab-dev/uiexplorer/pkg/emulator"
	"github.com/devicelab-dev/uiexplorer/pkg/explorer"
	"github.com/devicelab-dev/uiexplorer/pkg/logger"
	"github.com/devicelab-dev/uiexplorer/pkg/memory"
	"github.com/devicelab-dev/uiexplorer/pkg/policy"
	"github.com/devicelab-dev/uiexplorer/pkg/report"
	"github.com/devicelab-dev/uiexplorer/pkg/snapshot"
	"github.com/devicelab-dev/uiexplorer/pkg/uiautomator2"
)

var exploreCommand = &cli.Command{
	Name:  "explore",
	Usage: "Explore an app and build its UI state graph",
	Description: `Run automated exploration against an installed app. Flags override
values from --config.

Examples:
  uiexplorer explore --app com.example.notes --events 200
  uiexplorer explore --app com.example.notes --policy bfs_greedy --avoid-revisits --memory mem.json
  uiexplorer explore --config runs/notes.yaml`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Exploration config file (YAML)",
		},
		&cli.StringFlag{
			Name:  "app",
			Usage: "Package identifier of the app to explore",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Artifact output directory",
		},
		&cli.StringFlag{
			Name:  "policy",
			Usage: "Exploration policy (dfs, bfs, dfs_greedy, bfs_greedy, task)",
		},
		&cli.StringFlag{
			Name:  "task",
			Usage: "Task description for the task policy",
		},
		&cli.IntFlag{
			Name:  "events",
			Usage: "Maximum number of input events (0 = unlimited)",
		},
		&cli.IntFlag{
			Name:  "timeout",
			Usage: "Wall-clock budget in seconds (0 = unlimited)",
		},
		&cli.IntFlag{
			Name:  "unique-screens",
			Usage: "Maximum distinct screens to collect (0 = unlimited)",
		},
		&cli.BoolFlag{
			Name:  "random-input",
			Usage: "Shuffle candidate actions between runs",
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "Shuffle seed for --random-input",
		},
		&cli.BoolFlag{
			Name:  "avoid-revisits",
			Usage: "Deprioritize states fully explored in earlier runs",
		},
		&cli.StringFlag{
			Name:  "memory",
			Usage: "Cross-run revisit memory file (JSON)",
		},
		&cli.BoolFlag{
			Name:  "is-emulator",
			Usage: "Target is an emulator; wait for boot before starting",
		},
	},
	Action: runExplore,
}

func runExplore(c *cli.Context) error {
	cfg, err := exploreConfig(c)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := logger.Init(filepath.Join(cfg.Output, "explorer.log")); err != nil {
		return err
	}
	defer logger.Close()
	logger.SetVerbose(c.Bool("verbose"))
	logger.Info("exploring %s with policy %s", cfg.App, cfg.Policy)

	if cfg.IsEmulator && cfg.Device != "" {
		printSetupStep("Waiting for emulator boot...")
		if err := emulator.WaitForBootComplete(cfg.Device, 2*time.Minute); err != nil {
			return fmt.Errorf("emulator not booted: %w", err)
		}
		printSetupSuccess("Emulator booted")
	}

	drv, info, cleanup, err := connectDriver(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	snap := snapshot.New(drv, drv, cfg.Output)
	mem := memory.Load(cfg.BaselineDataPath, cfg.App, cfg.AvoidRevisits)

	pol, err := policy.New(cfg.Policy, policy.Options{
		AppPackage:  cfg.App,
		RandomInput: cfg.RandomInput,
		Seed:        cfg.Seed,
		Goals:       cfg.TaskKeywords(),
	})
	if err != nil {
		return err
	}

	var sections []explorer.Section
	for _, s := range cfg.CriticalSections {
		sections = append(sections, explorer.Section{Name: s.Name, Keywords: s.Keywords})
	}

	ctrl := explorer.New(snap, drv, pol, mem, explorer.Options{
		AppPackage: cfg.App,
		Budget: explorer.Budget{
			MaxEvents:        cfg.EventCount,
			Timeout:          time.Duration(cfg.Timeout) * time.Second,
			MaxUniqueScreens: cfg.UniqueScreens,
		},
		Sections:    sections,
		ActionDelay: time.Second,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printSetupStep(fmt.Sprintf("Exploring %s (%s)...", cfg.App, cfg.Policy))
	res, runErr := ctrl.Run(ctx)

	rep := report.Build(cfg.App, cfg.Policy, report.DeviceInfo{
		Serial:     info.Serial,
		Model:      info.Model,
		SDK:        info.SDK,
		IsEmulator: info.IsEmulator,
	}, res)
	if err := report.Write(cfg.Output, rep, ctrl.Graph()); err != nil {
		logger.Error("write report: %v", err)
		fmt.Fprintf(os.Stderr, "Warning: failed to write report: %v\n", err)
	}

	printSummary(res, cfg.Output)
	if res.Status == explorer.StatusAborted {
		return fmt.Errorf("exploration aborted: %w", runErr)
	}
	return nil
}

// exploreConfig merges the config file with command-line overrides.
func exploreConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg, err = config.LoadFromDir(".")
		if err != nil {
			return nil, err
		}
	}

	if c.IsSet("app") {
		cfg.App = c.String("app")
	}
	if c.IsSet("device") {
		cfg.Device = c.String("device")
	}
	if c.IsSet("output") {
		cfg.Output = c.String("output")
	}
	if c.IsSet("policy") {
		cfg.Policy = c.String("policy")
	}
	if c.IsSet("task") {
		cfg.Task = c.String("task")
		if !c.IsSet("policy") && cfg.Policy != "task" {
			cfg.Policy = "task"
		}
	}
	if c.IsSet("events") {
		cfg.EventCount = c.Int("events")
	}
	if c.IsSet("timeout") {
		cfg.Timeout = c.Int("timeout")
	}
	if c.IsSet("unique-screens") {
		cfg.UniqueScreens = c.Int("unique-screens")
	}
	if c.IsSet("random-input") {
		cfg.RandomInput = c.Bool("random-input")
	}
	if c.IsSet("seed") {
		cfg.Seed = c.Int64("seed")
	}
	if c.IsSet("avoid-revisits") {
		cfg.AvoidRevisits = c.Bool("avoid-revisits")
	}
	if c.IsSet("memory") {
		cfg.BaselineDataPath = c.String("memory")
	}
	if c.IsSet("is-emulator") {
		cfg.IsEmulator = c.Bool("is-emulator")
	}
	return cfg, nil
}

// connectDriver connects to the device, boots the UIAutomator2 server, and
// returns a ready driver plus its cleanup.
func connectDriver(cfg *config.Config) (*uia2driver.Driver, device.DeviceInfo, func(), error) {
	var none device.DeviceInfo

	if cfg.Device != "" {
		printSetupStep(fmt.Sprintf("Connecting to device %s...", cfg.Device))
	} else {
		printSetupStep("Connecting to device...")
	}
	dev, err := device.New(cfg.Device)
	if err != nil {
		return nil, none, nil, fmt.Errorf("connect to device: %w", err)
	}

	info, err := dev.Info()
	if err != nil {
		return nil, none, nil, fmt.Errorf("get device info: %w", err)
	}
	logger.Info("device: %s %s, SDK %s, serial %s, emulator=%v",
		info.Brand, info.Model, info.SDK, info.Serial, info.IsEmulator)
	printSetupSuccess(fmt.Sprintf("Connected to %s %s (SDK %s)", info.Brand, info.Model, info.SDK))

	if !dev.IsInstalled(device.UIAutomator2Server) {
		printSetupStep("Installing UIAutomator2 APKs...")
		if err := dev.InstallUIAutomator2(config.GetDriversDir("android")); err != nil {
			return nil, none, nil, fmt.Errorf("install UIAutomator2: %w", err)
		}
		printSetupSuccess("UIAutomator2 installed")
	}

	printSetupStep("Starting UIAutomator2 server...")
	if err := dev.StartUIAutomator2(device.DefaultUIAutomator2Config()); err != nil {
		return nil, none, nil, fmt.Errorf("start UIAutomator2: %w", err)
	}
	printSetupSuccess("UIAutomator2 server started")

	var client *uiautomator2.Client
	if dev.SocketPath() != "" {
		client = uiautomator2.NewClient(dev.SocketPath())
	} else {
		client = uiautomator2.NewClientTCP(dev.LocalPort())
	}
	client.SetLogPath(filepath.Join(cfg.Output, "client.log"))

	drv := uia2driver.New(client, dev)
	if err := drv.Start(); err != nil {
		dev.StopUIAutomator2()
		return nil, none, nil, err
	}

	cleanup := func() {
		drv.Close()
		dev.StopUIAutomator2()
	}
	return drv, info, cleanup, nil
}
