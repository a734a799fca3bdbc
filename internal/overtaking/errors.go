package overtaking

import "errors"

// ErrInvalidConfiguration is returned when an engine cannot be built from its configuration.
var ErrInvalidConfiguration = errors.New("invalid configuration")
