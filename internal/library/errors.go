package library

import "errors"

// ErrNotPersisted indicates an operation required a local identifier that the
// record does not have yet.
var ErrNotPersisted = errors.New("record is not persisted")
