package uiautomator2

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Back presses the device back button.
func (c *Client) Back() error {
	_, err := c.request("POST", c.sessionPath("/back"), nil)
	return err
}

// PressKeyCode sends an Android key event.
func (c *Client) PressKeyCode(keyCode int) error {
	req := KeyCodeRequest{KeyCode: keyCode}
	_, err := c.request("POST", c.sessionPath("/appium/device/press_keycode"), req)
	return err
}

// Source returns the current UI hierarchy as XML.
func (c *Client) Source() (string, error) {
	data, err := c.request("GET", c.sessionPath("/source"), nil)
	if err != nil {
		return "", err
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", err
	}

	source, ok := resp.Value.(string)
	if !ok {
		return "", fmt.Errorf("unexpected source response")
	}
	return source, nil
}

// Screenshot captures the screen and returns PNG bytes.
func (c *Client) Screenshot() ([]byte, error) {
	data, err := c.request("GET", c.sessionPath("/screenshot"), nil)
	if err != nil {
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}

	b64, ok := resp.Value.(string)
	if !ok {
		return nil, fmt.Errorf("unexpected screenshot response")
	}
	return decodeBase64(b64)
}

// GetOrientation returns the current screen orientation.
func (c *Client) GetOrientation() (string, error) {
	data, err := c.request("GET", c.sessionPath("/orientation"), nil)
	if err != nil {
		return "", err
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", err
	}

	orientation, _ := resp.Value.(string)
	return orientation, nil
}

// SetOrientation rotates the screen to PORTRAIT or LANDSCAPE.
func (c *Client) SetOrientation(orientation string) error {
	req := OrientationRequest{Orientation: strings.ToUpper(orientation)}
	_, err := c.request("POST", c.sessionPath("/orientation"), req)
	return err
}

// GetDeviceInfo returns device properties reported by the server.
func (c *Client) GetDeviceInfo() (*DeviceInfo, error) {
	data, err := c.request("GET", c.sessionPath("/appium/device/info"), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Value DeviceInfo `json:"value"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp.Value, nil
}

// GetSettings returns the server-side automation settings.
func (c *Client) GetSettings() (map[string]interface{}, error) {
	data, err := c.request("GET", c.sessionPath("/appium/settings"), nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Value map[string]interface{} `json:"value"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// UpdateSettings changes server-side automation settings, for example
// waitForIdleTimeout or shutdownOnPowerDisconnect.
func (c *Client) UpdateSettings(settings map[string]interface{}) error {
	req := SettingsRequest{Settings: settings}
	_, err := c.request("POST", c.sessionPath("/appium/settings"), req)
	return err
}

// decodeBase64 decodes standard or URL-safe base64, with or without padding.
func decodeBase64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if data, err := base64.StdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
