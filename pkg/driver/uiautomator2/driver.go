// Package uiautomator2 adapts the UIAutomator2 server client to the
// exploration engine: it executes actions and captures screen snapshots on
// a real Android device.
package uiautomator2

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
	"github.com/devicelab-dev/uiexplorer/pkg/device"
	"github.com/devicelab-dev/uiexplorer/pkg/logger"
	ua2 "github.com/devicelab-dev/uiexplorer/pkg/uiautomator2"
)

const (
	longPressMs   = 1000
	scrollPercent = 0.7
)

// Driver executes exploration actions against a device through the
// UIAutomator2 server, falling back to adb for app lifecycle and foreground
// queries that the server does not expose.
type Driver struct {
	client *ua2.Client
	dev    *device.AndroidDevice
}

// New creates a Driver. The client must not yet have a session; Start
// establishes one.
func New(client *ua2.Client, dev *device.AndroidDevice) *Driver {
	return &Driver{client: client, dev: dev}
}

// Start opens the automation session and tunes server settings for
// exploration workloads.
func (d *Driver) Start() error {
	if err := d.client.CreateSession(ua2.Capabilities{PlatformName: "Android"}); err != nil {
		return fmt.Errorf("%w: create session: %v", core.ErrDeviceUnavailable, err)
	}
	// A long idle wait makes every capture crawl on apps with animations.
	if err := d.client.UpdateSettings(map[string]interface{}{
		"waitForIdleTimeout": 500,
	}); err != nil {
		logger.Warn("update server settings: %v", err)
	}
	return nil
}

// Close ends the automation session.
func (d *Driver) Close() error {
	return d.client.Close()
}

// Execute performs one action on the device.
func (d *Driver) Execute(a *core.Action) (*core.ActionResult, error) {
	start := time.Now()

	var err error
	switch a.Kind {
	case core.ActionTap:
		x, y := a.Widget.Bounds.Center()
		err = d.client.Click(x, y)
	case core.ActionLongPress:
		x, y := a.Widget.Bounds.Center()
		err = d.client.LongClick(x, y, longPressMs)
	case core.ActionInput:
		err = d.typeInto(a)
	case core.ActionScroll:
		b := a.Widget.Bounds
		area := ua2.NewRect(b.X, b.Y, b.Width, b.Height)
		err = d.client.ScrollInArea(area, a.Direction, scrollPercent, 0)
	case core.ActionBack:
		err = d.client.Back()
	case core.ActionKey:
		err = d.client.PressKeyCode(a.KeyCode)
	case core.ActionStartApp:
		err = d.dev.StartApp(a.AppID)
	case core.ActionStopApp:
		err = d.dev.StopApp(a.AppID)
	default:
		return nil, fmt.Errorf("%w: unsupported action %s", core.ErrActuation, a.Kind)
	}

	if err != nil {
		return nil, classify(err, a)
	}
	return &core.ActionResult{Duration: time.Since(start)}, nil
}

// typeInto focuses the field with a tap, clears it, and types the text.
func (d *Driver) typeInto(a *core.Action) error {
	x, y := a.Widget.Bounds.Center()
	if err := d.client.Click(x, y); err != nil {
		return err
	}
	elem, err := d.client.ActiveElement()
	if err != nil {
		return err
	}
	if err := elem.Clear(); err != nil {
		logger.Debug("clear before input: %v", err)
	}
	return elem.SendKeys(a.Text)
}

// ForegroundPackage reports the package owning the foreground activity.
func (d *Driver) ForegroundPackage() (string, error) {
	pkg, err := d.dev.ForegroundPackage()
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrDeviceUnavailable, err)
	}
	return pkg, nil
}

// ForegroundActivity reports the fully qualified foreground activity.
func (d *Driver) ForegroundActivity() (string, error) {
	activity, err := d.dev.ForegroundActivity()
	if err != nil {
		return "", fmt.Errorf("%w: %v", core.ErrDeviceUnavailable, err)
	}
	return activity, nil
}

// Capture grabs the UI hierarchy and a screenshot. A failed screenshot is
// not fatal; the hierarchy alone is enough to build a state.
func (d *Driver) Capture() (string, []byte, error) {
	hierarchy, err := d.client.Source()
	if err != nil {
		if transportError(err) {
			return "", nil, fmt.Errorf("%w: %v", core.ErrDeviceUnavailable, err)
		}
		return "", nil, fmt.Errorf("%w: %v", core.ErrCaptureTimeout, err)
	}

	png, err := d.client.Screenshot()
	if err != nil {
		logger.Warn("screenshot: %v", err)
		png = nil
	}
	return hierarchy, png, nil
}

// classify maps a raw failure to the engine's error taxonomy: transport
// failures mean the device (or the server on it) is gone, anything else is
// a retryable actuation failure.
func classify(err error, a *core.Action) error {
	if transportError(err) {
		return fmt.Errorf("%w: %s: %v", core.ErrDeviceUnavailable, a.Kind, err)
	}
	return fmt.Errorf("%w: %s: %v", core.ErrActuation, a.Kind, err)
}

func transportError(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}
