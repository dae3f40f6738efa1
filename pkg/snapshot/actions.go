package snapshot

import (
	"github.com/devicelab-dev/uiexplorer/pkg/core"
)

// Default text typed into editable fields during exploration. Kept short and
// free of separators so it survives most input filters.
const defaultInputText = "explorer"

// DiscoverActions derives the candidate actions for a state from its widget
// list: taps on enabled clickable leaves, long-presses, text input on
// editable fields, and scrolls in both directions on scrollable containers.
// Navigation actions (back, app restart) are policy concerns and are not
// discovered here.
func DiscoverActions(state *core.UIState) []*core.Action {
	var actions []*core.Action
	for i := range state.Widgets {
		w := &state.Widgets[i]
		if !w.Enabled || w.Bounds.Empty() {
			continue
		}

		switch {
		case w.Editable:
			text := defaultInputText
			if w.Password {
				text = "Secret-1234"
			}
			actions = append(actions, &core.Action{
				Kind:   core.ActionInput,
				Widget: w,
				Text:   text,
			})
		case w.Clickable && w.Leaf:
			actions = append(actions, &core.Action{
				Kind:   core.ActionTap,
				Widget: w,
			})
		}

		if w.LongClick && w.Leaf {
			actions = append(actions, &core.Action{
				Kind:   core.ActionLongPress,
				Widget: w,
			})
		}

		if w.Scrollable {
			for _, dir := range []string{"down", "up"} {
				actions = append(actions, &core.Action{
					Kind:      core.ActionScroll,
					Widget:    w,
					Direction: dir,
				})
			}
		}
	}
	return actions
}
