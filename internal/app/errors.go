package app

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrWouldCycle = errors.New("dependency would create a cycle")
)
