package remote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/teampulse/pulse-service/pkg/logger/sl"
)

const (
	// maxRetries bounds retries after the first attempt, so a call runs at
	// most maxRetries+1 times.
	maxRetries   = 3
	initialDelay = time.Second
	maxDelay     = 8 * time.Second
)

// Caller runs remote operations with the shared retry policy: exponential
// backoff starting at initialDelay, doubling up to maxDelay, no jitter.
// Fatal errors abort immediately; retryable kinds are attempted up to
// maxRetries+1 times in total.
type Caller struct {
	log *slog.Logger

	// timer overrides the backoff sleep in tests; nil means real time.
	timer backoff.Timer
}

func NewCaller(log *slog.Logger) *Caller {
	return &Caller{log: log}
}

// NewCallerWithTimer is NewCaller with the backoff timer replaced, letting
// tests drive retries without real sleeps.
func NewCallerWithTimer(log *slog.Logger, timer backoff.Timer) *Caller {
	return &Caller{log: log, timer: timer}
}

// Call invokes fn until it succeeds, fails fatally, exhausts its retries or
// ctx is done. Errors coming out of fn are classified first, so fn may
// return either raw transport errors or errors already wrapped by Classify.
func (c *Caller) Call(ctx context.Context, op string, fn func(context.Context) error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = initialDelay
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxInterval = maxDelay
	bo.MaxElapsedTime = 0

	attempts := 0
	operation := func() error {
		attempts++

		err := fn(ctx)
		if err == nil {
			return nil
		}

		cerr := Classify(op, err)
		if !Retryable(cerr) {
			return backoff.Permanent(cerr)
		}

		return cerr
	}

	notify := func(err error, delay time.Duration) {
		c.log.Warn(
			"remote call failed, retrying",
			slog.String("op", op),
			slog.Duration("delay", delay),
			sl.Err(err),
		)
	}

	policy := backoff.WithMaxRetries(backoff.WithContext(bo, ctx), maxRetries)

	err := backoff.RetryNotifyWithTimer(operation, policy, notify, c.timer)
	if err == nil {
		return nil
	}

	if Retryable(err) && attempts > maxRetries {
		return fmt.Errorf("%s: retries exhausted after %d attempts: %w", op, attempts, err)
	}

	return err
}
