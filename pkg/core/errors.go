package core

import (
	"errors"
	"fmt"
)

// Error taxonomy for the exploration engine.
//
// DeviceUnavailable is fatal: the run aborts and revisit memory is not
// persisted. CaptureTimeout and Actuation errors are transient: the failing
// step is retried once, then abandoned, and the run continues. MemoryCorrupt
// is absorbed by the memory store (treated as empty). Config errors are
// fatal at startup, before any device interaction.
var (
	ErrDeviceUnavailable = errors.New("device unavailable")
	ErrCaptureTimeout    = errors.New("capture timed out")
	ErrActuation         = errors.New("actuation failed")
	ErrMemoryCorrupt     = errors.New("revisit memory corrupt")
)

// IsTransient reports whether err may succeed on a single retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrCaptureTimeout) || errors.Is(err, ErrActuation)
}

// IsFatal reports whether err must abort the run.
func IsFatal(err error) bool {
	return errors.Is(err, ErrDeviceUnavailable)
}

// ConfigError reports an invalid configuration field. It is returned before
// any device interaction happens.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config field %q: %s", e.Field, e.Reason)
}
