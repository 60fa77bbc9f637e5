package infra

import (
	"math/rand"
	"time"
)

const (
	backoffBase = 1 * time.Second
	backoffMax  = 30 * time.Second
)

// CalculateBackoff returns the reconnect delay for the given retry count.
// Exponential growth capped at backoffMax, with a small jitter so workers
// restarted together do not hammer the venue in lockstep.
func CalculateBackoff(retryCount int) time.Duration {
	delay := backoffBase
	for i := 0; i < retryCount; i++ {
		delay *= 2
		if delay >= backoffMax {
			delay = backoffMax
			break
		}
	}

	jitter := time.Duration(rand.Int63n(int64(delay) / 4))
	return delay + jitter
}
