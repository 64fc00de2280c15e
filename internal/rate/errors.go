package rate

import "errors"

var (
	// ErrRateLimited signals that the attempt budget for the current
	// window is exhausted.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps Redis transport failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
