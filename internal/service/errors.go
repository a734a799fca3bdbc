package service

import "errors"

// ErrInvalidSweep is returned for a sweep over an unknown parameter or with fewer than two steps.
var ErrInvalidSweep = errors.New("invalid sweep")

// ErrRequestTooLarge is returned when a network request asks for more work than the server will do.
var ErrRequestTooLarge = errors.New("request too large")
