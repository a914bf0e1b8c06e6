// Package handlers manages the different versions of the API.
package handlers

import (
	"context"
	"expvar"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/ardanlabs/minichain/app/services/node/handlers/debug/checkgrp"
	"github.com/ardanlabs/minichain/app/services/node/handlers/public"
	"github.com/ardanlabs/minichain/app/services/node/handlers/viewer"
	"github.com/ardanlabs/minichain/business/web/mid"
	"github.com/ardanlabs/minichain/foundation/blockchain/state"
	"github.com/ardanlabs/minichain/foundation/events"
	"github.com/ardanlabs/minichain/foundation/nameservice"
	"github.com/ardanlabs/minichain/foundation/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MuxConfig contains all the mandatory systems required by handlers.
type MuxConfig struct {
	Shutdown      chan os.Signal
	Log           *zap.SugaredLogger
	State         *state.State
	NS            *nameservice.NameService
	Evts          *events.Events
	MiningTimeout time.Duration
	CORSOrigins   []string
}

// PublicMux constructs a http.Handler with all application routes defined.
func PublicMux(cfg MuxConfig) http.Handler {
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// Construct the web.App which holds all routes as well as common Middleware.
	app := web.NewApp(
		cfg.Shutdown,
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(),
		mid.Cors(origins...),
		mid.Panics(),
	)

	// Accept CORS 'OPTIONS' preflight requests for the configured origins,
	// set with NODE_WEB_CORS_ORIGINS="https://a.example;https://b.example".
	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return nil
	}
	app.Handle(http.MethodOptions, "", "/*", h, mid.Cors(origins...))

	// Load the v1 routes.
	public.Routes(app, public.Config{
		Log:           cfg.Log,
		State:         cfg.State,
		NS:            cfg.NS,
		Evts:          cfg.Evts,
		MiningTimeout: cfg.MiningTimeout,
	})

	// Load the page that renders the chain in a browser.
	viewer.Routes(app)

	return app
}

// DebugStandardLibraryMux registers all the debug routes from the standard library
// into a new mux bypassing the use of the DefaultServerMux. Using the
// DefaultServerMux would be a security risk since a dependency could inject a
// handler into our service without us knowing it.
func DebugStandardLibraryMux() *http.ServeMux {
	mux := http.NewServeMux()

	// Register all the standard library debug endpoints.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/debug/vars", expvar.Handler())

	return mux
}

// DebugMux registers all the debug standard library routes and then custom
// debug application routes for the service. This bypassing the use of the
// DefaultServerMux. Using the DefaultServerMux would be a security risk since
// a dependency could inject a handler into our service without us knowing it.
func DebugMux(build string, log *zap.SugaredLogger, st *state.State, reg *prometheus.Registry) http.Handler {
	mux := DebugStandardLibraryMux()

	// Register debug check endpoints.
	cgh := checkgrp.Handlers{
		Build: build,
		Log:   log,
		Ready: func() error {
			_, err := st.QueryBlock(st.Cursor().TailHash)
			return err
		},
	}
	mux.HandleFunc("/debug/readiness", cgh.Readiness)
	mux.HandleFunc("/debug/liveness", cgh.Liveness)

	// Register the prometheus endpoint for the chain and web metrics.
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return mux
}

// Registry constructs the prometheus registry served by the debug mux.
func Registry(st *state.State, evts *events.Events) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	cs := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		state.NewCollector(st),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "minichain_events_subscribers",
			Help: "Websocket clients following the event stream.",
		}, func() float64 { return float64(evts.Count()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "minichain_events_sent_total",
			Help: "Events delivered to websocket clients.",
		}, func() float64 { return float64(evts.Sent()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "minichain_events_dropped_total",
			Help: "Events skipped because a websocket client fell behind.",
		}, func() float64 { return float64(evts.Dropped()) }),
	}
	cs = append(cs, mid.Collectors()...)

	for _, c := range cs {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return reg, nil
}
