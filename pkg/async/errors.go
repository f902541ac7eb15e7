package async

import "errors"

var (
	ErrTimeout   = errors.New("async: operation timed out waiting for future completion")
	ErrAbandoned = errors.New("async: future abandoned before completion")
	ErrPanic     = errors.New("async: worker panicked")
)
