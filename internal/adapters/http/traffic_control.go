package httpadapter

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/docnamer/internal/observability/metrics"
)

// rateLimitMiddleware applies a process-wide token bucket. Rejected requests
// get a Retry-After hint derived from the bucket's refill delay.
func rateLimitMiddleware(next http.Handler, rps float64, burst int, serverMetrics *metrics.HTTPServerMetrics, service string) http.Handler {
	if rps <= 0 || burst <= 0 {
		return next
	}
	limiter := rate.NewLimiter(rate.Limit(rps), burst)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reservation := limiter.Reserve()
		if !reservation.OK() {
			rejectRateLimited(w, time.Second, serverMetrics, service)
			return
		}
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			rejectRateLimited(w, delay, serverMetrics, service)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func rejectRateLimited(w http.ResponseWriter, retryAfter time.Duration, serverMetrics *metrics.HTTPServerMetrics, service string) {
	if serverMetrics != nil {
		serverMetrics.RecordRateLimited(service)
	}
	seconds := int(math.Ceil(retryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
}

// backpressureMiddleware caps in-flight requests. A request that cannot get
// a slot within wait is shed with 503 instead of queueing unboundedly.
func backpressureMiddleware(next http.Handler, maxInFlight int, wait time.Duration) http.Handler {
	return backpressureMiddlewareWithMetrics(next, maxInFlight, wait, nil, "")
}

func backpressureMiddlewareWithMetrics(next http.Handler, maxInFlight int, wait time.Duration, serverMetrics *metrics.HTTPServerMetrics, service string) http.Handler {
	if maxInFlight <= 0 {
		return next
	}
	slots := make(chan struct{}, maxInFlight)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		timer := time.NewTimer(wait)
		defer timer.Stop()

		select {
		case slots <- struct{}{}:
			defer func() { <-slots }()
			next.ServeHTTP(w, r)
		case <-timer.C:
			if serverMetrics != nil {
				serverMetrics.RecordBackpressure(service)
			}
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server is overloaded, try again later"})
		case <-r.Context().Done():
		}
	})
}
