package moderation

import "errors"

var (
	ErrInvalidContentKind = errors.New("invalid content kind")
	ErrContentNotFound    = errors.New("content not found")
	ErrCannotReportOwn    = errors.New("cannot report your own content")
	ErrDuplicateReport    = errors.New("content already reported by this user")
	ErrInvalidConfig      = errors.New("invalid moderation config")
	ErrConfigMissing      = errors.New("moderation config not initialized")
	ErrConcurrentUpdate   = errors.New("moderation record changed concurrently")
)
