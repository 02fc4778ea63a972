package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a remote backend cannot be reached.
var ErrUnavailable = errors.New("cache backend unavailable")

// Backoff retries an operation with a doubling delay between tries.
type Backoff struct {
	Attempts int           // total tries, including the first
	Delay    time.Duration // wait before the second try
}

// DefaultBackoff is used when a [RedisConfig] leaves Backoff zero.
var DefaultBackoff = Backoff{Attempts: 3, Delay: time.Second}

// Do calls fn until it succeeds, retry rejects its error, the attempts run
// out or ctx ends. A nil retry retries every error. Do returns the last
// error from fn, or the context's error if it ended while waiting.
func (b Backoff) Do(ctx context.Context, fn func() error, retry func(error) bool) error {
	attempts := max(b.Attempts, 1)
	delay := b.Delay

	var err error
	for i := range attempts {
		if err = fn(); err == nil {
			return nil
		}
		if retry != nil && !retry(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return err
}
