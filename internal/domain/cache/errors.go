package cache

import "errors"

// ErrInvalidInput indicates an invalid cache write.
var ErrInvalidInput = errors.New("invalid cache input")
