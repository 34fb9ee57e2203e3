package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoSource = errors.New("no dataset source configured")
)
