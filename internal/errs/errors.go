package errs

import "errors"

var (
	ErrBadArgument   = errors.New("pool: bad argument")
	ErrTooManyFrames = errors.New("pool: frame count exceeds bitmap capacity")
	ErrOutOfRange    = errors.New("pool: frame out of range")
	ErrNotHead       = errors.New("pool: frame is not head of sequence")
	ErrNoPool        = errors.New("pool: no pool owns frame")
	ErrNoSpace       = errors.New("pool: no space")
	ErrClosed        = errors.New("pool: closed")
	ErrCorrupt       = errors.New("pool: corrupt")
)
