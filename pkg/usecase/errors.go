package usecase

import "errors"

// Sentinel errors for use case layer
var (
	ErrCardNotRegistered = errors.New("card not registered")
	ErrDemoDisabled      = errors.New("demo features are disabled")
)
