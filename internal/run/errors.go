package run

import "errors"

// ErrRunNotFound is returned when a run directory has no manifest.
var ErrRunNotFound = errors.New("run not found")
