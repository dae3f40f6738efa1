package device

import (
	"fmt"
	"regexp"
	"strings"
)

// StartApp launches the package's launcher activity. monkey resolves the
// main activity for us, so no activity name is needed.
func (d *AndroidDevice) StartApp(pkg string) error {
	out, err := d.Shell(fmt.Sprintf("monkey -p %s -c android.intent.category.LAUNCHER 1", pkg))
	if err != nil {
		return fmt.Errorf("start %s: %w", pkg, err)
	}
	if strings.Contains(out, "No activities found") {
		return fmt.Errorf("start %s: no launcher activity", pkg)
	}
	return nil
}

// StopApp force-stops the package.
func (d *AndroidDevice) StopApp(pkg string) error {
	_, err := d.Shell("am force-stop " + pkg)
	if err != nil {
		return fmt.Errorf("stop %s: %w", pkg, err)
	}
	return nil
}

// ClearAppData wipes the package's data, resetting it to a fresh install.
func (d *AndroidDevice) ClearAppData(pkg string) error {
	out, err := d.Shell("pm clear " + pkg)
	if err != nil {
		return fmt.Errorf("clear %s: %w", pkg, err)
	}
	if !strings.Contains(out, "Success") {
		return fmt.Errorf("clear %s: %s", pkg, strings.TrimSpace(out))
	}
	return nil
}

// mResumedActivity: ActivityRecord{1234abcd u0 com.example/.MainActivity t42}
var focusedActivityRe = regexp.MustCompile(`mResumedActivity.*\su\d+\s+([\w.]+)/([\w.$]+)`)

// mCurrentFocus=Window{1234abcd u0 com.example/com.example.MainActivity}
var currentFocusRe = regexp.MustCompile(`mCurrentFocus=Window\{\S+\s+u\d+\s+([\w.]+)/([\w.$]+)`)

// ForegroundActivity returns the fully qualified activity currently resumed,
// in package/class form.
func (d *AndroidDevice) ForegroundActivity() (string, error) {
	pkg, activity, err := d.foregroundComponent()
	if err != nil {
		return "", err
	}
	return pkg + "/" + activity, nil
}

// ForegroundPackage returns the package owning the foreground activity.
func (d *AndroidDevice) ForegroundPackage() (string, error) {
	pkg, _, err := d.foregroundComponent()
	return pkg, err
}

func (d *AndroidDevice) foregroundComponent() (string, string, error) {
	out, err := d.Shell("dumpsys activity activities")
	if err == nil {
		if pkg, activity, ok := parseForeground(out, focusedActivityRe); ok {
			return pkg, activity, nil
		}
	}

	// Older devices report the focus through the window manager instead.
	out, err = d.Shell("dumpsys window windows")
	if err != nil {
		return "", "", fmt.Errorf("query foreground activity: %w", err)
	}
	if pkg, activity, ok := parseForeground(out, currentFocusRe); ok {
		return pkg, activity, nil
	}
	return "", "", fmt.Errorf("foreground activity not found in dumpsys output")
}

func parseForeground(out string, re *regexp.Regexp) (string, string, bool) {
	m := re.FindStringSubmatch(out)
	if m == nil {
		return "", "", false
	}
	pkg, activity := m[1], m[2]
	// Shorthand class names start with a dot relative to the package.
	if strings.HasPrefix(activity, ".") {
		activity = pkg + activity
	}
	return pkg, activity, true
}
