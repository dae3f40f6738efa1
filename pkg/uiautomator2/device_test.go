package uiautomator2

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestBack(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/back") {
			t.Errorf("expected /back suffix, got %s", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if err := json.NewEncoder(w).Encode(map[string]interface{}{}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
	defer server.Close()

	err := client.Back()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPressKeyCode(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/appium/device/press_keycode") {
			t.Errorf("expected /appium/device/press_keycode, got %s", r.URL.Path)
		}

		var req KeyCodeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.KeyCode != KeyCodeHome {
			t.Errorf("expected keycode %d, got %d", KeyCodeHome, req.KeyCode)
		}
		if err := json.NewEncoder(w).Encode(map[string]interface{}{}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
	defer server.Close()

	err := client.PressKeyCode(KeyCodeHome)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetDeviceInfo(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/appium/device/info") {
			t.Errorf("expected /appium/device/info, got %s", r.URL.Path)
		}
		if r.Method != "GET" {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"value": map[string]interface{}{
				"androidId":       "abc123",
				"manufacturer":    "Google",
				"model":           "Pixel 6",
				"brand":           "google",
				"apiVersion":      "33",
				"platformVersion": "13",
				"realDisplaySize": "1080x2400",
				"displayDensity":  420,
			},
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
	defer server.Close()

	info, err := client.GetDeviceInfo()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Manufacturer != "Google" {
		t.Errorf("expected Google, got %s", info.Manufacturer)
	}
	if info.Model != "Pixel 6" {
		t.Errorf("expected Pixel 6, got %s", info.Model)
	}
	if info.DisplayDensity != 420 {
		t.Errorf("expected 420, got %d", info.DisplayDensity)
	}
}

func TestScreenshot(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/screenshot") {
			t.Errorf("expected /screenshot suffix, got %s", r.URL.Path)
		}
		if r.Method != "GET" {
			t.Errorf("expected GET, got %s", r.Method)
		}
		// Base64 encoded PNG header
		pngBytes := []byte{0x89, 0x50, 0x4E, 0x47}
		encoded := base64.StdEncoding.EncodeToString(pngBytes)
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"value": encoded,
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
	defer server.Close()

	data, err := client.Screenshot()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 4 || data[0] != 0x89 {
		t.Errorf("unexpected screenshot data: %v", data)
	}
}

func TestScreenshotInvalidResponse(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"value": 12345,
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
	defer server.Close()

	_, err := client.Screenshot()
	if err == nil {
		t.Error("expected error for invalid response")
	}
}

func TestSource(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/source") {
			t.Errorf("expected /source suffix, got %s", r.URL.Path)
		}
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"value": "<hierarchy><node/></hierarchy>",
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
	defer server.Close()

	source, err := client.Source()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(source, "<hierarchy>") {
		t.Errorf("expected XML hierarchy, got %s", source)
	}
}

func TestGetOrientation(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/orientation") {
			t.Errorf("expected /orientation suffix, got %s", r.URL.Path)
		}
		if r.Method != "GET" {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"value": "PORTRAIT",
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
	defer server.Close()

	orientation, err := client.GetOrientation()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if orientation != "PORTRAIT" {
		t.Errorf("expected PORTRAIT, got %s", orientation)
	}
}

func TestSetOrientation(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/orientation") {
			t.Errorf("expected /orientation suffix, got %s", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}

		var req OrientationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Orientation != "LANDSCAPE" {
			t.Errorf("expected LANDSCAPE, got %s", req.Orientation)
		}
		if err := json.NewEncoder(w).Encode(map[string]interface{}{}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
	defer server.Close()

	err := client.SetOrientation("landscape")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetSettings(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/appium/settings") {
			t.Errorf("expected /appium/settings, got %s", r.URL.Path)
		}
		if r.Method != "GET" {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if err := json.NewEncoder(w).Encode(map[string]interface{}{
			"value": map[string]interface{}{
				"waitForIdleTimeout":     10000,
				"waitForSelectorTimeout": 5000,
			},
		}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
	defer server.Close()

	settings, err := client.GetSettings()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings["waitForIdleTimeout"] != float64(10000) {
		t.Errorf("expected 10000, got %v", settings["waitForIdleTimeout"])
	}
}

func TestUpdateSettings(t *testing.T) {
	client, server := newTestClientWithSession(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/appium/settings") {
			t.Errorf("expected /appium/settings, got %s", r.URL.Path)
		}
		if r.Method != "POST" {
			t.Errorf("expected POST, got %s", r.Method)
		}

		var req SettingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Settings["waitForIdleTimeout"] != float64(5000) {
			t.Errorf("expected 5000, got %v", req.Settings["waitForIdleTimeout"])
		}
		if err := json.NewEncoder(w).Encode(map[string]interface{}{}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
	defer server.Close()

	err := client.UpdateSettings(map[string]interface{}{
		"waitForIdleTimeout": float64(5000),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecodeBase64NoPadding(t *testing.T) {
	want := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D}
	raw := base64.RawStdEncoding.EncodeToString(want)

	got, err := decodeBase64(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("unexpected decode result: %v", got)
	}
}
