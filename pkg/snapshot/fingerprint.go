package snapshot

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
)

// Bounds are quantized to this cell size before hashing so that minor layout
// jitter (animations settling, scroll position a few pixels off) does not
// produce a new state.
const boundsGrid = 32

// Fingerprint computes the stable identifier for a screen from its
// normalized widget tree.
//
// Normalization policy: the hash covers widget class, resource-id, quantized
// bounds, and the interactable flags (enabled, clickable, long-clickable,
// scrollable, editable, password), plus the foreground activity name. Widget
// text, content descriptions, and focus/selection state are excluded — they
// carry timestamps, ad content, and typed input, all of which would split
// one logical screen into many states. The trade-off is that two screens
// differing only in display text merge into one node; in practice distinct
// screens differ in resource-ids or layout as well.
func Fingerprint(activity string, widgets []core.Widget) string {
	h := sha1.New()
	fmt.Fprintf(h, "activity=%s\n", activity)
	for i := range widgets {
		w := &widgets[i]
		fmt.Fprintf(h, "%s|%s|%d,%d,%d,%d|%t%t%t%t%t%t\n",
			w.ClassName, w.ResourceID,
			quantize(w.Bounds.X), quantize(w.Bounds.Y),
			quantize(w.Bounds.Width), quantize(w.Bounds.Height),
			w.Enabled, w.Clickable, w.LongClick,
			w.Scrollable, w.Editable, w.Password)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func quantize(v int) int {
	return v / boundsGrid
}

// MatchesKeywords reports whether any of the given keywords appears in the
// state's widget texts, content descriptions, resource ids, or activity
// name. Used for critical-section detection and goal-directed scoring.
func MatchesKeywords(state *core.UIState, keywords []string) bool {
	if state == nil {
		return false
	}
	activity := strings.ToLower(state.Activity)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(activity, kw) {
			return true
		}
		for i := range state.Widgets {
			w := &state.Widgets[i]
			if strings.Contains(strings.ToLower(w.Text), kw) ||
				strings.Contains(strings.ToLower(w.ContentDesc), kw) ||
				strings.Contains(strings.ToLower(w.ResourceID), kw) {
				return true
			}
		}
	}
	return false
}
