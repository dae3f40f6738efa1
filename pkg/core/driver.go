package core

// Actuator executes input events on a device. Implementations: UIAutomator2,
// mock. The exploration controller owns the decide/act cycle; the Actuator
// just injects individual events.
type Actuator interface {
	// Execute injects a single action. Errors are classified via the
	// package error taxonomy: ErrDeviceUnavailable when the device cannot
	// be reached, ErrActuation for transient failures (stale widget,
	// rejected gesture).
	Execute(a *Action) (*ActionResult, error)

	// ForegroundPackage returns the package identifier of the app currently
	// in the foreground.
	ForegroundPackage() (string, error)
}

// SnapshotProvider captures the raw material for a UIState: the widget
// hierarchy and a screenshot of the current screen.
type SnapshotProvider interface {
	// Capture returns the UI hierarchy XML and a PNG screenshot.
	// The screenshot may be nil when capture is unsupported; the hierarchy
	// is mandatory.
	Capture() (hierarchy string, png []byte, err error)
}

// PlatformInfo contains device and platform details for the run artifact.
type PlatformInfo struct {
	Platform     string `json:"platform"`  // android
	OSVersion    string `json:"osVersion"` // e.g. "14"
	DeviceName   string `json:"deviceName"`
	DeviceID     string `json:"deviceId"` // serial
	IsEmulator   bool   `json:"isEmulator"`
	ScreenWidth  int    `json:"screenWidth,omitempty"`
	ScreenHeight int    `json:"screenHeight,omitempty"`
	AppID        string `json:"appId,omitempty"` // package under exploration
}
