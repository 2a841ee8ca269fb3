package app

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoScheduleSource = errors.New("no schedule source configured")
)
