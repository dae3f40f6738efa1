// Package core provides the data model shared by the exploration engine:
// UI states, widgets, actions, and the collaborator interfaces that device
// drivers implement.
package core

import (
	"time"
)

// Widget describes a single node of the UI hierarchy as observed on screen.
type Widget struct {
	Text        string `json:"text,omitempty"`
	ResourceID  string `json:"resourceId,omitempty"`
	ContentDesc string `json:"contentDesc,omitempty"`
	ClassName   string `json:"class,omitempty"`
	Package     string `json:"package,omitempty"`
	Bounds      Bounds `json:"bounds"`
	Enabled     bool   `json:"enabled"`
	Clickable   bool   `json:"clickable"`
	LongClick   bool   `json:"longClickable"`
	Scrollable  bool   `json:"scrollable"`
	Editable    bool   `json:"editable"`
	Password    bool   `json:"password"`
	Focused     bool   `json:"focused,omitempty"`
	Depth       int    `json:"depth"`
	Leaf        bool   `json:"leaf"`
}

// Interactable reports whether the widget can receive any input event.
func (w *Widget) Interactable() bool {
	if !w.Enabled {
		return false
	}
	return w.Clickable || w.LongClick || w.Scrollable || w.Editable
}

// Bounds represents widget position and size in screen pixels.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the bounds.
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Empty reports whether the bounds cover no area.
func (b Bounds) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// UIState is an immutable snapshot of one screen. It is created once per
// distinct observed screen, deduplicated by Fingerprint, and never mutated
// afterwards.
type UIState struct {
	// Fingerprint is a stable identifier derived from the normalized widget
	// tree. Two observations of the same logical screen hash identically
	// even when transient content differs.
	Fingerprint string `json:"fingerprint"`

	Package  string `json:"package,omitempty"`
	Activity string `json:"activity,omitempty"`

	// Widgets is the ordered widget list the fingerprint was computed from.
	Widgets []Widget `json:"widgets"`

	// ScreenshotRef is the path of the captured image, relative to the run's
	// output directory. Empty when capture was skipped or failed.
	ScreenshotRef string `json:"screenshotRef,omitempty"`

	ObservedAt time.Time `json:"observedAt"`
}
