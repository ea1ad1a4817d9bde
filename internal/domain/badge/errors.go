package badge

import "errors"

var (
	ErrBadgeNotFound   = errors.New("badge not found")
	ErrDuplicateUnlock = errors.New("badge already unlocked")
	ErrEmptyCatalog    = errors.New("badge catalog is empty")
)
