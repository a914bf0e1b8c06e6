package mid

import (
	"context"
	"net/http"
	"strconv"

	"github.com/ardanlabs/minichain/business/web/errs"
	"github.com/ardanlabs/minichain/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
)

// metrics represents the set of metrics we gather. These fields are
// safe to be accessed concurrently thanks to the prometheus types.
var metrics = struct {
	requests *prometheus.CounterVec
	errors   prometheus.Counter
	panics   prometheus.Counter
	latency  *prometheus.HistogramVec
}{
	requests: prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "minichain",
		Subsystem: "web",
		Name:      "requests_total",
		Help:      "Number of requests handled.",
	}, []string{"method", "code"}),
	errors: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Subsystem: "web",
		Name:      "errors_total",
		Help:      "Number of requests that returned an error.",
	}),
	panics: prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "minichain",
		Subsystem: "web",
		Name:      "panics_total",
		Help:      "Number of panics recovered.",
	}),
	latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "minichain",
		Subsystem: "web",
		Name:      "request_duration_seconds",
		Help:      "Time spent handling requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method"}),
}

// Collectors returns the web metrics so they can be registered with
// the registry the debug host serves.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		metrics.requests,
		metrics.errors,
		metrics.panics,
		metrics.latency,
	}
}

// Metrics updates program counters.
func Metrics() web.Middleware {

	// This is the actual middleware function to be executed.
	m := func(handler web.Handler) web.Handler {

		// Create the handler that will be attached in the middleware chain.
		h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
			timer := prometheus.NewTimer(metrics.latency.WithLabelValues(r.Method))
			defer timer.ObserveDuration()

			// Call the next handler.
			err := handler(ctx, w, r)

			// Increment the errors counter if an error occurred on this request.
			if err != nil {
				metrics.errors.Inc()
			}

			// Errors runs after this middleware returns, so a failed request
			// is labeled with the status it is going to be given.
			code := http.StatusOK
			switch {
			case err != nil:
				_, code = errs.ToResponse(err)
			default:
				if v, verr := web.GetValues(ctx); verr == nil && v.StatusCode != 0 {
					code = v.StatusCode
				}
			}
			metrics.requests.WithLabelValues(r.Method, strconv.Itoa(code)).Inc()

			// Return the error so it can be handled further up the chain.
			return err
		}

		return h
	}

	return m
}
