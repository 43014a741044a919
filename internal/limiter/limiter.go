package limiter

import (
	"time"

	"golang.org/x/time/rate"
)

// DeleteLimiter caps how many native delete calls run per second
type DeleteLimiter struct {
	limiter *rate.Limiter
	sleep   func(time.Duration)
}

// New creates a limiter allowing perSecond deletes with the given burst.
// A nil limiter is returned when perSecond <= 0; Throttle on nil is a no-op.
func New(perSecond float64, burst int) *DeleteLimiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &DeleteLimiter{
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		sleep:   time.Sleep,
	}
}

// Throttle blocks until the next delete may proceed
func (l *DeleteLimiter) Throttle() {
	if l == nil {
		return
	}
	r := l.limiter.Reserve()
	if !r.OK() {
		return
	}
	if d := r.Delay(); d > 0 {
		l.sleep(d)
	}
}

// SetRate updates the allowed deletes per second
func (l *DeleteLimiter) SetRate(perSecond float64) {
	if l == nil || perSecond <= 0 {
		return
	}
	l.limiter.SetLimit(rate.Limit(perSecond))
}
