package cache

import "errors"

var (
	// ErrTokenNotFound token 未找到
	ErrTokenNotFound = errors.New("cache: token not found")
)
