package insight

import "errors"

// ErrNilPathEvent indicates a nil path event payload was provided to a publisher.
var ErrNilPathEvent = errors.New("nil path event")
