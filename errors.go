package goEphemeral

import "errors"

var (
	// ErrSessionCreationFailed wraps every failure of SessionIssuer.CreateUserSession.
	ErrSessionCreationFailed = errors.New("session creation failed")
	// ErrInvalidConfig wraps Config validation failures.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidRange is returned by a RandomSource when min >= max.
	ErrInvalidRange = errors.New("invalid random range")
	// ErrBuilderUsed is returned when Build is called twice on the same Builder.
	ErrBuilderUsed = errors.New("builder already used")
)
