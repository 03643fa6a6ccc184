package http

import "golang.org/x/time/rate"

// frameGuard throttles raw inbound frames on one socket before they reach the
// hub. A nil guard allows everything.
type frameGuard struct {
	limiter *rate.Limiter
}

func newFrameGuard(perSecond float64, burst int) *frameGuard {
	if perSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &frameGuard{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

func (g *frameGuard) allow() bool {
	if g == nil {
		return true
	}
	return g.limiter.Allow()
}
