package core

import (
	"fmt"
	"time"
)

// ActionKind identifies the input event type an Action produces.
type ActionKind string

// Action kinds.
const (
	ActionTap       ActionKind = "tap"
	ActionLongPress ActionKind = "long_press"
	ActionInput     ActionKind = "input"
	ActionScroll    ActionKind = "scroll"
	ActionBack      ActionKind = "back"
	ActionKey       ActionKind = "key"
	ActionStartApp  ActionKind = "start_app"
	ActionStopApp   ActionKind = "stop_app"
)

// Action is a candidate interaction discovered in a specific UIState. An
// Action is meaningless outside the state it was discovered in.
type Action struct {
	Kind ActionKind `json:"kind"`

	// Widget is the target for widget-scoped kinds (tap, long_press, input,
	// scroll). Nil for back, key, and app lifecycle actions.
	Widget *Widget `json:"widget,omitempty"`

	// Text to type for input actions.
	Text string `json:"text,omitempty"`

	// Direction for scroll actions: "up" or "down".
	Direction string `json:"direction,omitempty"`

	// KeyCode for key actions.
	KeyCode int `json:"keyCode,omitempty"`

	// AppID for app lifecycle actions.
	AppID string `json:"appId,omitempty"`

	// Tried is set once the controller has attempted this action from its
	// originating state.
	Tried bool `json:"tried"`
}

// Signature returns a stable identifier for the action within its state,
// used for edge idempotence and action-list merging.
func (a *Action) Signature() string {
	switch a.Kind {
	case ActionBack:
		return "back"
	case ActionKey:
		return fmt.Sprintf("key:%d", a.KeyCode)
	case ActionStartApp, ActionStopApp:
		return fmt.Sprintf("%s:%s", a.Kind, a.AppID)
	}
	return fmt.Sprintf("%s:%s:%s", a.Kind, a.Direction, WidgetSignature(a.Widget))
}

// Describe returns a short human-readable description for logs.
func (a *Action) Describe() string {
	switch a.Kind {
	case ActionBack:
		return "back"
	case ActionKey:
		return fmt.Sprintf("key %d", a.KeyCode)
	case ActionStartApp:
		return "start " + a.AppID
	case ActionStopApp:
		return "stop " + a.AppID
	}
	label := ""
	if a.Widget != nil {
		label = a.Widget.Text
		if label == "" {
			label = a.Widget.ResourceID
		}
		if label == "" {
			label = a.Widget.ClassName
		}
	}
	if a.Kind == ActionScroll {
		return fmt.Sprintf("scroll %s %q", a.Direction, label)
	}
	return fmt.Sprintf("%s %q", a.Kind, label)
}

// WidgetSignature returns a stable identifier for a widget, invariant to
// volatile content. Used in action signatures and greedy scoring.
func WidgetSignature(w *Widget) string {
	if w == nil {
		return ""
	}
	return fmt.Sprintf("%s|%s|%d,%d,%d,%d",
		w.ClassName, w.ResourceID,
		w.Bounds.X, w.Bounds.Y, w.Bounds.Width, w.Bounds.Height)
}

// ActionResult reports the outcome of executing a single action.
type ActionResult struct {
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message,omitempty"`
}
