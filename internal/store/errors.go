package store

import "errors"

// ErrClosed is returned by every operation on a store after Close.
var ErrClosed = errors.New("store closed")
