package core

import (
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		transient bool
		fatal     bool
	}{
		{"device unavailable", ErrDeviceUnavailable, false, true},
		{"capture timeout", ErrCaptureTimeout, true, false},
		{"actuation", ErrActuation, true, false},
		{"memory corrupt", ErrMemoryCorrupt, false, false},
		{"wrapped fatal", fmt.Errorf("adb: %w", ErrDeviceUnavailable), false, true},
		{"wrapped transient", fmt.Errorf("tap: %w", ErrActuation), true, false},
		{"plain", fmt.Errorf("something else"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.transient {
				t.Errorf("IsTransient = %v, want %v", got, tt.transient)
			}
			if got := IsFatal(tt.err); got != tt.fatal {
				t.Errorf("IsFatal = %v, want %v", got, tt.fatal)
			}
		})
	}
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Field: "event_count", Reason: "must not be negative"}
	msg := err.Error()
	if msg != `config field "event_count": must not be negative` {
		t.Errorf("unexpected message: %s", msg)
	}
}
