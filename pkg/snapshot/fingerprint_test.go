package snapshot

import (
	"testing"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
)

func settingsScreen() []core.Widget {
	return []core.Widget{
		{
			ClassName: "android.widget.FrameLayout",
			Package:   "com.example.notes",
			Bounds:    core.Bounds{X: 0, Y: 0, Width: 1080, Height: 1920},
			Enabled:   true,
		},
		{
			ClassName:  "android.widget.Button",
			Package:    "com.example.notes",
			ResourceID: "com.example.notes:id/settings_btn",
			Text:       "Settings",
			Bounds:     core.Bounds{X: 100, Y: 200, Width: 400, Height: 100},
			Enabled:    true,
			Clickable:  true,
			Leaf:       true,
			Depth:      1,
		},
	}
}

func TestFingerprint_Stable(t *testing.T) {
	a := Fingerprint(".MainActivity", settingsScreen())
	b := Fingerprint(".MainActivity", settingsScreen())
	if a != b {
		t.Errorf("fingerprint not stable: %s vs %s", a, b)
	}
	if len(a) != 40 {
		t.Errorf("expected hex sha1 fingerprint, got %q", a)
	}
}

func TestFingerprint_IgnoresText(t *testing.T) {
	base := settingsScreen()
	changed := settingsScreen()
	changed[1].Text = "Einstellungen"
	changed[1].ContentDesc = "open settings"

	if Fingerprint(".MainActivity", base) != Fingerprint(".MainActivity", changed) {
		t.Error("text/content-desc change should not alter the fingerprint")
	}
}

func TestFingerprint_IgnoresBoundsJitter(t *testing.T) {
	base := settingsScreen()
	jittered := settingsScreen()
	jittered[1].Bounds.X += 3
	jittered[1].Bounds.Y += 5

	if Fingerprint(".MainActivity", base) != Fingerprint(".MainActivity", jittered) {
		t.Error("sub-grid bounds jitter should not alter the fingerprint")
	}

	moved := settingsScreen()
	moved[1].Bounds.Y += 400
	if Fingerprint(".MainActivity", base) == Fingerprint(".MainActivity", moved) {
		t.Error("a real layout change should alter the fingerprint")
	}
}

func TestFingerprint_SensitiveToStructure(t *testing.T) {
	base := settingsScreen()

	if Fingerprint(".MainActivity", base) == Fingerprint(".DetailActivity", base) {
		t.Error("activity change should alter the fingerprint")
	}

	disabled := settingsScreen()
	disabled[1].Enabled = false
	if Fingerprint(".MainActivity", base) == Fingerprint(".MainActivity", disabled) {
		t.Error("enabled-flag change should alter the fingerprint")
	}

	extra := append(settingsScreen(), core.Widget{
		ClassName: "android.widget.TextView",
		Bounds:    core.Bounds{X: 0, Y: 600, Width: 1080, Height: 100},
		Enabled:   true,
	})
	if Fingerprint(".MainActivity", base) == Fingerprint(".MainActivity", extra) {
		t.Error("added widget should alter the fingerprint")
	}
}

func TestMatchesKeywords(t *testing.T) {
	state := &core.UIState{
		Activity: "com.example.notes.MainActivity",
		Widgets:  settingsScreen(),
	}

	tests := []struct {
		name     string
		keywords []string
		want     bool
	}{
		{"widget text", []string{"settings"}, true},
		{"resource id", []string{"settings_btn"}, true},
		{"activity name", []string{"mainactivity"}, true},
		{"case insensitive", []string{"SETTINGS"}, true},
		{"no match", []string{"checkout", "payment"}, false},
		{"empty keywords", nil, false},
		{"blank keyword ignored", []string{"  ", ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesKeywords(state, tt.keywords); got != tt.want {
				t.Errorf("MatchesKeywords(%v) = %v, want %v", tt.keywords, got, tt.want)
			}
		})
	}

	if MatchesKeywords(nil, []string{"settings"}) {
		t.Error("nil state should never match")
	}
}
