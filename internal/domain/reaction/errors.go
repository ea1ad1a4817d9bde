package reaction

import "errors"

var (
	ErrFailNotFound     = errors.New("fail not found")
	ErrReactionNotFound = errors.New("reaction not found")
	ErrInvalidType      = errors.New("invalid reaction type")
)
