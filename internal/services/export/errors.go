package export

import "errors"

var (
	ErrEmptyInput     = errors.New("empty input")
	ErrTooManyRecords = errors.New("too many records")
	ErrSerialization  = errors.New("serialization failure")
)
