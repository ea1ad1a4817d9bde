package fail

import "errors"

var (
	ErrFailNotFound    = errors.New("fail not found")
	ErrNotFailAuthor   = errors.New("only the author can change this fail")
	ErrStorageDisabled = errors.New("image storage is not configured")
)
