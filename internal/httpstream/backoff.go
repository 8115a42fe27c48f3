package httpstream

import (
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RetryPolicy configures the retry loop. A zero MaxAttempts makes
// StreamChatCompletion use DefaultRetryPolicy in full; zero Multiplier or
// MaxWait values are used as given.
type RetryPolicy struct {
	MaxAttempts int
	Multiplier  float64
	MaxWait     time.Duration
}

// DefaultRetryPolicy matches GROK_RETRY_MAX_ATTEMPTS=3,
// GROK_RETRY_MULTIPLIER=1.0, GROK_RETRY_MAX_WAIT=10s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Multiplier: 1.0, MaxWait: 10 * time.Second}
}

// retryableStatus is the whitelisted set of transient HTTP statuses.
var retryableStatus = map[int]bool{
	http.StatusRequestTimeout:     true,
	http.StatusTooManyRequests:    true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// IsRetryableStatus reports whether code is in the retry whitelist.
func IsRetryableStatus(code int) bool {
	return retryableStatus[code]
}

// NextBackoff is the pure backoff function separated from the I/O loop so it
// can be tested deterministically with a seeded RNG: for attempt k (0-based),
// base = multiplier * 2^k; jitter is drawn uniformly from [0, base); the
// result is capped at maxWait.
func NextBackoff(attempt int, multiplier float64, maxWait time.Duration, rng *rand.Rand) time.Duration {
	base := multiplier * math.Pow(2, float64(attempt))
	jitter := rng.Float64() * base
	total := base + jitter
	d := time.Duration(total * float64(time.Second))
	if d > maxWait {
		return maxWait
	}
	if d < 0 {
		return 0
	}
	return d
}

// ParseRetryAfter parses a Retry-After header value as either an integer
// number of seconds or an RFC 1123/822-style HTTP date, returning a
// non-negative duration. ok is false if the header could not be parsed.
func ParseRetryAfter(value string, now time.Time) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			secs = 0
		}
		return time.Duration(secs) * time.Second, true
	}
	if t, err := http.ParseTime(value); err == nil {
		d := t.Sub(now)
		if d < 0 {
			d = 0
		}
		return d, true
	}
	return 0, false
}
