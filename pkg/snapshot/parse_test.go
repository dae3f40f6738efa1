package snapshot

import (
	"testing"
)

const sampleHierarchy = `<?xml version="1.0" encoding="UTF-8"?>
<hierarchy rotation="0">
  <node class="android.widget.FrameLayout" package="com.example.notes" bounds="[0,0][1080,1920]" enabled="true" clickable="false">
    <node class="android.widget.Button" package="com.example.notes" text="Settings" resource-id="com.example.notes:id/settings_btn" bounds="[100,200][500,300]" enabled="true" clickable="true"/>
    <node class="android.widget.EditText" package="com.example.notes" resource-id="com.example.notes:id/title" bounds="[100,400][980,500]" enabled="true" clickable="true" focused="true"/>
    <node class="android.widget.ListView" package="com.example.notes" resource-id="com.example.notes:id/list" bounds="[0,600][1080,1800]" enabled="true" scrollable="true">
      <node class="android.widget.TextView" package="com.example.notes" text="First note" bounds="[0,600][1080,700]" enabled="true" long-clickable="true"/>
    </node>
  </node>
</hierarchy>`

func TestParseHierarchy(t *testing.T) {
	widgets, err := ParseHierarchy(sampleHierarchy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(widgets) != 5 {
		t.Fatalf("expected 5 widgets, got %d", len(widgets))
	}

	root := widgets[0]
	if root.ClassName != "android.widget.FrameLayout" || root.Leaf {
		t.Errorf("unexpected root: %+v", root)
	}
	if root.Bounds.Width != 1080 || root.Bounds.Height != 1920 {
		t.Errorf("unexpected root bounds: %+v", root.Bounds)
	}

	btn := widgets[1]
	if !btn.Clickable || !btn.Leaf || btn.Text != "Settings" {
		t.Errorf("unexpected button: %+v", btn)
	}
	if btn.ResourceID != "com.example.notes:id/settings_btn" {
		t.Errorf("unexpected resource id: %s", btn.ResourceID)
	}
	if btn.Depth != 1 {
		t.Errorf("expected depth 1, got %d", btn.Depth)
	}

	edit := widgets[2]
	if !edit.Editable || !edit.Focused {
		t.Errorf("EditText not recognized as editable/focused: %+v", edit)
	}

	list := widgets[3]
	if !list.Scrollable || list.Leaf {
		t.Errorf("unexpected list: %+v", list)
	}

	item := widgets[4]
	if !item.LongClick || item.Depth != 2 {
		t.Errorf("unexpected list item: %+v", item)
	}
}

func TestParseHierarchy_ClassTagFormat(t *testing.T) {
	// uiautomator dump names elements after the widget class.
	xml := `<hierarchy rotation="0">
  <android.widget.FrameLayout package="com.example.notes" bounds="[0,0][1080,1920]" enabled="true">
    <android.widget.Button text="OK" bounds="[0,0][100,50]" enabled="true" clickable="true"/>
  </android.widget.FrameLayout>
</hierarchy>`

	widgets, err := ParseHierarchy(xml)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(widgets) != 2 {
		t.Fatalf("expected 2 widgets, got %d", len(widgets))
	}
	if widgets[1].ClassName != "android.widget.Button" {
		t.Errorf("expected class from tag name, got %s", widgets[1].ClassName)
	}
}

func TestParseHierarchy_FiltersOverlays(t *testing.T) {
	xml := `<hierarchy rotation="0">
  <node class="android.widget.FrameLayout" package="com.example.notes" bounds="[0,0][1080,1400]" enabled="true">
    <node class="android.widget.Button" package="com.example.notes" text="Send" bounds="[0,0][100,50]" enabled="true" clickable="true"/>
  </node>
  <node class="android.widget.FrameLayout" package="com.google.android.inputmethod.latin" bounds="[0,1400][1080,1920]" enabled="true">
    <node class="android.widget.Button" package="com.google.android.inputmethod.latin" text="q" bounds="[0,1400][100,1450]" enabled="true" clickable="true"/>
  </node>
</hierarchy>`

	widgets, err := ParseHierarchy(xml)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, w := range widgets {
		if w.Package == "com.google.android.inputmethod.latin" {
			t.Errorf("keyboard widget not filtered: %+v", w)
		}
	}
	if len(widgets) != 2 {
		t.Errorf("expected 2 app widgets, got %d", len(widgets))
	}
}

func TestParseHierarchy_Invalid(t *testing.T) {
	if _, err := ParseHierarchy("<not-a-hierarchy/>"); err == nil {
		t.Error("expected error for missing hierarchy element")
	}
}

func TestParseBounds(t *testing.T) {
	tests := []struct {
		in                  string
		x, y, width, height int
	}{
		{"[0,0][1080,1920]", 0, 0, 1080, 1920},
		{"[100,200][500,300]", 100, 200, 400, 100},
		{"garbage", 0, 0, 0, 0},
		{"", 0, 0, 0, 0},
	}

	for _, tt := range tests {
		b := parseBounds(tt.in)
		if b.X != tt.x || b.Y != tt.y || b.Width != tt.width || b.Height != tt.height {
			t.Errorf("parseBounds(%q) = %+v", tt.in, b)
		}
	}
}
