package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
	"github.com/devicelab-dev/uiexplorer/pkg/logger"
)

// ActivityReader reports the foreground activity, when the underlying driver
// can provide it. Optional: a nil reader leaves UIState.Activity empty.
type ActivityReader interface {
	ForegroundActivity() (string, error)
}

// Snapshotter produces UIState values from a live device. Pure data capture;
// no exploration decisions.
type Snapshotter struct {
	provider core.SnapshotProvider
	activity ActivityReader
	outDir   string // screenshots land in <outDir>/screens

	// CaptureTimeout bounds a single hierarchy capture. Zero disables the
	// bound (mock provider in tests).
	CaptureTimeout time.Duration
}

// New creates a Snapshotter writing screenshots under outDir.
func New(provider core.SnapshotProvider, activity ActivityReader, outDir string) *Snapshotter {
	return &Snapshotter{
		provider:       provider,
		activity:       activity,
		outDir:         outDir,
		CaptureTimeout: 15 * time.Second,
	}
}

type captureResult struct {
	hierarchy string
	png       []byte
	err       error
}

// Observe captures the current screen and returns its UIState.
// Fails with ErrDeviceUnavailable when the device cannot be reached and
// ErrCaptureTimeout when the hierarchy does not arrive within the bound.
func (s *Snapshotter) Observe() (*core.UIState, error) {
	hierarchy, png, err := s.capture()
	if err != nil {
		return nil, err
	}

	widgets, err := ParseHierarchy(hierarchy)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCaptureTimeout, err)
	}

	activity := ""
	pkg := ""
	if s.activity != nil {
		if a, err := s.activity.ForegroundActivity(); err == nil {
			activity = a
		}
	}
	for i := range widgets {
		if widgets[i].Package != "" {
			pkg = widgets[i].Package
			break
		}
	}

	state := &core.UIState{
		Fingerprint: Fingerprint(activity, widgets),
		Package:     pkg,
		Activity:    activity,
		Widgets:     widgets,
		ObservedAt:  time.Now(),
	}

	if len(png) > 0 {
		state.ScreenshotRef = s.saveScreenshot(state.Fingerprint, png)
	}

	return state, nil
}

// capture runs the provider capture under the configured time bound.
func (s *Snapshotter) capture() (string, []byte, error) {
	if s.CaptureTimeout <= 0 {
		return s.provider.Capture()
	}

	ch := make(chan captureResult, 1)
	go func() {
		h, p, err := s.provider.Capture()
		ch <- captureResult{h, p, err}
	}()

	select {
	case res := <-ch:
		return res.hierarchy, res.png, res.err
	case <-time.After(s.CaptureTimeout):
		return "", nil, fmt.Errorf("%w after %s", core.ErrCaptureTimeout, s.CaptureTimeout)
	}
}

// saveScreenshot writes the image once per fingerprint and returns the path
// relative to the output directory. A failed write is logged, not fatal.
func (s *Snapshotter) saveScreenshot(fingerprint string, png []byte) string {
	rel := filepath.Join("screens", fingerprint+".png")
	abs := filepath.Join(s.outDir, rel)

	if _, err := os.Stat(abs); err == nil {
		return rel // already captured on a previous visit
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		logger.Warn("screenshot dir: %v", err)
		return ""
	}
	if err := os.WriteFile(abs, png, 0644); err != nil {
		logger.Warn("write screenshot %s: %v", rel, err)
		return ""
	}
	return rel
}
