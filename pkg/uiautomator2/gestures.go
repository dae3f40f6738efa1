package uiautomator2

// Gesture endpoints. All of these are UIAutomator2 extensions under
// /appium/gestures/ and operate either on raw coordinates (Offset) or on a
// previously found element (Origin).

// Click taps at absolute screen coordinates.
func (c *Client) Click(x, y int) error {
	req := ClickRequest{Offset: &PointModel{X: x, Y: y}}
	_, err := c.request("POST", c.sessionPath("/appium/gestures/click"), req)
	return err
}

// ClickElement taps the center of an element.
func (c *Client) ClickElement(elementID string) error {
	req := ClickRequest{Origin: &ElementModel{ELEMENT: elementID}}
	_, err := c.request("POST", c.sessionPath("/appium/gestures/click"), req)
	return err
}

// LongClick presses at coordinates for the given duration in milliseconds.
func (c *Client) LongClick(x, y, durationMs int) error {
	req := LongClickRequest{
		Offset:   &PointModel{X: x, Y: y},
		Duration: durationMs,
	}
	_, err := c.request("POST", c.sessionPath("/appium/gestures/long_click"), req)
	return err
}

// LongClickElement presses an element for the given duration in milliseconds.
func (c *Client) LongClickElement(elementID string, durationMs int) error {
	req := LongClickRequest{
		Origin:   &ElementModel{ELEMENT: elementID},
		Duration: durationMs,
	}
	_, err := c.request("POST", c.sessionPath("/appium/gestures/long_click"), req)
	return err
}

// Swipe performs a swipe gesture on an element.
func (c *Client) Swipe(elementID, direction string, percent float64, speed int) error {
	req := SwipeRequest{
		Origin:    &ElementModel{ELEMENT: elementID},
		Direction: direction,
		Percent:   percent,
		Speed:     speed,
	}
	_, err := c.request("POST", c.sessionPath("/appium/gestures/swipe"), req)
	return err
}

// SwipeInArea performs a swipe gesture within a screen region.
func (c *Client) SwipeInArea(area RectModel, direction string, percent float64, speed int) error {
	req := SwipeRequest{
		Area:      &area,
		Direction: direction,
		Percent:   percent,
		Speed:     speed,
	}
	_, err := c.request("POST", c.sessionPath("/appium/gestures/swipe"), req)
	return err
}

// Scroll performs a scroll gesture on an element. Direction is the direction
// content moves toward, matching the UIAutomator2 convention.
func (c *Client) Scroll(elementID, direction string, percent float64, speed int) error {
	req := ScrollRequest{
		Origin:    &ElementModel{ELEMENT: elementID},
		Direction: direction,
		Percent:   percent,
		Speed:     speed,
	}
	_, err := c.request("POST", c.sessionPath("/appium/gestures/scroll"), req)
	return err
}

// ScrollInArea performs a scroll gesture within a screen region.
func (c *Client) ScrollInArea(area RectModel, direction string, percent float64, speed int) error {
	req := ScrollRequest{
		Area:      &area,
		Direction: direction,
		Percent:   percent,
		Speed:     speed,
	}
	_, err := c.request("POST", c.sessionPath("/appium/gestures/scroll"), req)
	return err
}
