package dedupe

import "errors"

// ErrInFlight is returned for a request ID whose first use has not finished.
// The caller may retry once it completes.
var ErrInFlight = errors.New("request already in flight")
