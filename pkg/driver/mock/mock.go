// Package mock provides a scripted in-memory device for testing the
// exploration engine without real hardware: a set of screens, a transition
// table, and configurable failures.
package mock

import (
	"fmt"
	"strings"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
)

const launcherPackage = "com.android.launcher3"

// Screen is one synthetic UI screen served by the driver.
type Screen struct {
	// Name doubles as the activity name reported while the screen shows.
	Name string

	// Hierarchy is the UIAutomator XML served by Capture.
	Hierarchy string
}

// Driver simulates an app as a screen graph. It implements the actuator,
// snapshot provider, and activity reader interfaces used by the engine.
type Driver struct {
	pkg  string
	home string

	screens     map[string]*Screen
	transitions map[string]map[string]string

	// current is the showing screen; empty means the app is not in the
	// foreground (launcher).
	current string

	// Executed records the key of every executed action, in order.
	Executed []string

	// ExecuteFailures is drained one error per Execute call before any
	// action is applied. Nil entries mean success.
	ExecuteFailures []error

	// CaptureFailures is drained one error per Capture call.
	CaptureFailures []error
}

// New creates a driver for an app whose first screen is home.
func New(pkg string, home *Screen, rest ...*Screen) *Driver {
	d := &Driver{
		pkg:         pkg,
		home:        home.Name,
		screens:     map[string]*Screen{home.Name: home},
		transitions: map[string]map[string]string{},
	}
	for _, s := range rest {
		d.screens[s.Name] = s
	}
	return d
}

// On wires a transition: executing the action with the given key while from
// is showing moves to to. Key format matches Key.
func (d *Driver) On(from, actionKey, to string) *Driver {
	if d.transitions[from] == nil {
		d.transitions[from] = map[string]string{}
	}
	d.transitions[from][actionKey] = to
	return d
}

// Key reduces an action to the transition-table key: kind plus the target's
// resource id (plus direction for scrolls).
func Key(a *core.Action) string {
	switch a.Kind {
	case core.ActionBack:
		return "back"
	case core.ActionStartApp:
		return "start"
	case core.ActionStopApp:
		return "stop"
	case core.ActionKey:
		return fmt.Sprintf("key:%d", a.KeyCode)
	}
	rid := ""
	if a.Widget != nil {
		rid = a.Widget.ResourceID
	}
	if a.Kind == core.ActionScroll {
		return fmt.Sprintf("scroll:%s:%s", rid, a.Direction)
	}
	return fmt.Sprintf("%s:%s", a.Kind, rid)
}

// Execute applies the action to the simulated app.
func (d *Driver) Execute(a *core.Action) (*core.ActionResult, error) {
	if len(d.ExecuteFailures) > 0 {
		err := d.ExecuteFailures[0]
		d.ExecuteFailures = d.ExecuteFailures[1:]
		if err != nil {
			return nil, err
		}
	}

	key := Key(a)
	d.Executed = append(d.Executed, key)

	switch a.Kind {
	case core.ActionStartApp:
		d.current = d.home
	case core.ActionStopApp:
		d.current = ""
	case core.ActionBack:
		if to, ok := d.transitions[d.current]["back"]; ok {
			d.current = to
		} else {
			// Back with nowhere to go leaves the app.
			d.current = ""
		}
	default:
		if to, ok := d.transitions[d.current][key]; ok {
			d.current = to
		}
	}
	return &core.ActionResult{}, nil
}

// ForegroundPackage reports the simulated foreground app.
func (d *Driver) ForegroundPackage() (string, error) {
	if d.current == "" {
		return launcherPackage, nil
	}
	return d.pkg, nil
}

// ForegroundActivity reports the showing screen's name.
func (d *Driver) ForegroundActivity() (string, error) {
	if d.current == "" {
		return launcherPackage + "/.Launcher", nil
	}
	return d.pkg + "/." + d.current, nil
}

// Capture serves the current screen's hierarchy. No screenshots.
func (d *Driver) Capture() (string, []byte, error) {
	if len(d.CaptureFailures) > 0 {
		err := d.CaptureFailures[0]
		d.CaptureFailures = d.CaptureFailures[1:]
		if err != nil {
			return "", nil, err
		}
	}

	if d.current == "" {
		return ScreenXML(launcherPackage), nil, nil
	}
	return d.screens[d.current].Hierarchy, nil, nil
}

// Current returns the showing screen name, empty when the app is stopped.
func (d *Driver) Current() string { return d.current }

// Button describes a tappable widget for ScreenXML.
type Button struct {
	Text       string
	ResourceID string
	Bounds     core.Bounds
}

// ScreenXML builds a minimal UIAutomator hierarchy with one clickable
// button per entry, laid out the way the parser expects.
func ScreenXML(pkg string, buttons ...Button) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?><hierarchy rotation="0">`)
	sb.WriteString(fmt.Sprintf(
		`<node class="android.widget.FrameLayout" package="%s" bounds="[0,0][1080,1920]" enabled="true" clickable="false">`,
		pkg))
	for _, b := range buttons {
		x2 := b.Bounds.X + b.Bounds.Width
		y2 := b.Bounds.Y + b.Bounds.Height
		sb.WriteString(fmt.Sprintf(
			`<node class="android.widget.Button" package="%s" text="%s" resource-id="%s" bounds="[%d,%d][%d,%d]" enabled="true" clickable="true"/>`,
			pkg, b.Text, b.ResourceID, b.Bounds.X, b.Bounds.Y, x2, y2))
	}
	sb.WriteString(`</node></hierarchy>`)
	return sb.String()
}
