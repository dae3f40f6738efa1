// Package snapshot turns raw device captures into immutable UIState values:
// it parses the UIAutomator hierarchy XML, normalizes volatile content out,
// and computes the state fingerprint used for deduplication.
package snapshot

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
)

// Packages whose subtrees are never part of the app under test and are
// excluded from parsing entirely. Keyboard overlays in particular would make
// the same screen fingerprint differently depending on IME visibility.
var overlayPackages = map[string]bool{
	"com.android.inputmethod.latin":         true,
	"com.google.android.inputmethod.latin":  true,
	"com.samsung.android.honeyboard":        true,
	"com.android.systemui":                  true,
	"com.google.android.apps.nexuslauncher": false, // launcher is a real state (app exited)
}

// ParseHierarchy parses UIAutomator page-source XML into a flat, ordered
// widget list. Both dump formats are supported: class-named element tags
// (uiautomator dump) and <node> elements (instrumentation server).
func ParseHierarchy(xmlData string) ([]core.Widget, error) {
	decoder := xml.NewDecoder(strings.NewReader(xmlData))

	var widgets []core.Widget
	foundHierarchy := false

	var walk func(depth int) (int, error)
	walk = func(depth int) (int, error) {
		children := 0
		for {
			token, err := decoder.Token()
			if err != nil {
				return children, err
			}

			switch t := token.(type) {
			case xml.StartElement:
				if t.Name.Local == "hierarchy" {
					foundHierarchy = true
					continue
				}

				w := parseWidget(t, depth)
				if overlayPackages[w.Package] {
					if err := decoder.Skip(); err != nil {
						return children, err
					}
					continue
				}

				// Reserve the slot before descending so document order is
				// preserved; leaf flag is fixed up afterwards.
				idx := len(widgets)
				widgets = append(widgets, w)
				sub, err := walk(depth + 1)
				widgets[idx].Leaf = sub == 0
				children++
				if err != nil {
					return children, err
				}

			case xml.EndElement:
				return children, nil
			}
		}
	}

	_, err := walk(0)
	if err != nil && err.Error() != "EOF" {
		return nil, fmt.Errorf("parse hierarchy: %w", err)
	}
	if !foundHierarchy {
		return nil, fmt.Errorf("invalid page source: no hierarchy element found")
	}

	return widgets, nil
}

func parseWidget(t xml.StartElement, depth int) core.Widget {
	w := core.Widget{
		ClassName: t.Name.Local, // uiautomator dump uses the class as tag
		Depth:     depth,
	}
	if w.ClassName == "node" {
		w.ClassName = ""
	}

	for _, attr := range t.Attr {
		switch attr.Name.Local {
		case "text":
			w.Text = attr.Value
		case "resource-id":
			w.ResourceID = attr.Value
		case "content-desc":
			w.ContentDesc = attr.Value
		case "class":
			w.ClassName = attr.Value
		case "package":
			w.Package = attr.Value
		case "bounds":
			w.Bounds = parseBounds(attr.Value)
		case "enabled":
			w.Enabled = attr.Value == "true"
		case "clickable":
			w.Clickable = attr.Value == "true"
		case "long-clickable":
			w.LongClick = attr.Value == "true"
		case "scrollable":
			w.Scrollable = attr.Value == "true"
		case "focused":
			w.Focused = attr.Value == "true"
		case "password":
			w.Password = attr.Value == "true"
		}
	}

	w.Editable = isEditableClass(w.ClassName)
	return w
}

// isEditableClass reports whether the widget class accepts text input.
func isEditableClass(class string) bool {
	return strings.Contains(class, "EditText") ||
		strings.Contains(class, "AutoCompleteTextView") ||
		strings.Contains(class, "MultiAutoCompleteTextView")
}

// parseBounds parses the Android bounds string "[x1,y1][x2,y2]".
func parseBounds(s string) core.Bounds {
	s = strings.ReplaceAll(s, "][", ",")
	s = strings.Trim(s, "[]")
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return core.Bounds{}
	}

	x1, _ := strconv.Atoi(parts[0])
	y1, _ := strconv.Atoi(parts[1])
	x2, _ := strconv.Atoi(parts[2])
	y2, _ := strconv.Atoi(parts[3])

	return core.Bounds{
		X:      x1,
		Y:      y1,
		Width:  x2 - x1,
		Height: y2 - y1,
	}
}
