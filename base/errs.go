package base

import "errors"

var ErrNullPointer = errors.New("missing required argument")
var ErrInvalidEnum = errors.New("unsupported enum value")
var ErrInvalidSize = errors.New("invalid argument size")
var ErrConstData = errors.New("target buffer is not writable")
var ErrOverflow = errors.New("data too long, counter would wrap")
var ErrInvalidState = errors.New("tag mismatch")
