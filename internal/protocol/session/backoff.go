package session

import (
	"math"
	"math/rand"
	"time"
)

// Delay returns the wait after the given failed attempt (1-based). The
// first failure waits InitialDelay; each later one multiplies it, capped at
// MaxDelay. With Jitter the result is scaled by a factor in [0.5, 1.5).
func (b BackoffConfig) Delay(failures int, rng *rand.Rand) time.Duration {
	if b.InitialDelay <= 0 {
		return 0
	}
	growth := math.Max(b.Multiplier, 1)
	d := float64(b.InitialDelay) * math.Pow(growth, float64(max(failures, 1)-1))
	if b.MaxDelay > 0 {
		d = math.Min(d, float64(b.MaxDelay))
	}
	if b.Jitter && rng != nil {
		d *= 0.5 + rng.Float64()
	}
	return time.Duration(d)
}

// dialRetry is the connect retry policy of Dial: backoff between failed
// attempts and an optional cap on the number of attempts.
type dialRetry struct {
	backoff     BackoffConfig
	maxAttempts int
	rng         *rand.Rand
	failures    int
}

// newDialRetry caps dialing at maxAttempts; zero or less retries until the
// caller's context ends.
func newDialRetry(backoff BackoffConfig, maxAttempts int, rng *rand.Rand) *dialRetry {
	return &dialRetry{backoff: backoff, maxAttempts: maxAttempts, rng: rng}
}

// failed records a failed attempt and returns the wait before the next one.
// ok is false once the attempt cap is reached.
func (r *dialRetry) failed() (wait time.Duration, ok bool) {
	r.failures++
	if r.maxAttempts > 0 && r.failures >= r.maxAttempts {
		return 0, false
	}
	return r.backoff.Delay(r.failures, r.rng), true
}

// attempts is the number of failed attempts so far.
func (r *dialRetry) attempts() int {
	return r.failures
}
