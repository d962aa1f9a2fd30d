package job

import "errors"

var (
	// ErrInvalidQuery is returned for caller misuse, e.g. a non-positive result cap
	ErrInvalidQuery = errors.New("invalid query")

	// ErrNoSources is returned when no provider is registered
	ErrNoSources = errors.New("no sources enabled")

	// ErrSoftBlocked marks a source that served an anti-bot challenge
	ErrSoftBlocked = errors.New("soft block detected")

	// ErrSourceUnavailable marks a source where no request succeeded
	ErrSourceUnavailable = errors.New("source unavailable")
)
