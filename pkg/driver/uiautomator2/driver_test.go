package uiautomator2

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/devicelab-dev/uiexplorer/pkg/core"
)

func TestClassify(t *testing.T) {
	tap := &core.Action{Kind: core.ActionTap}

	netErr := &url.Error{Op: "Post", URL: "http://localhost:6790/session", Err: fmt.Errorf("connection refused")}
	if got := classify(netErr, tap); !core.IsFatal(got) {
		t.Errorf("transport failure should be fatal, got %v", got)
	}

	appErr := fmt.Errorf("element not found")
	got := classify(appErr, tap)
	if !core.IsTransient(got) {
		t.Errorf("server-side failure should be transient, got %v", got)
	}
	if !errors.Is(got, core.ErrActuation) {
		t.Errorf("expected ErrActuation wrap, got %v", got)
	}
}

func TestTransportError(t *testing.T) {
	wrapped := fmt.Errorf("click: %w", &url.Error{Op: "Post", URL: "http://x", Err: fmt.Errorf("EOF")})
	if !transportError(wrapped) {
		t.Error("wrapped url.Error not detected")
	}
	if transportError(fmt.Errorf("plain failure")) {
		t.Error("plain error misdetected as transport failure")
	}
}
