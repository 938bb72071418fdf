package eventfile

import "errors"

// ErrMalformed marks a record that could not be parsed.
var ErrMalformed = errors.New("malformed event record")
