package mid_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/minichain/business/web/errs"
	"github.com/ardanlabs/minichain/business/web/mid"
	"github.com/ardanlabs/minichain/foundation/logger"
	"github.com/ardanlabs/minichain/foundation/web"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Middleware(t *testing.T) {
	log, err := logger.New("TEST", os.DevNull)
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct a logger: %v", failed, err)
	}

	app := web.NewApp(make(chan os.Signal, 1),
		mid.Logger(log),
		mid.Errors(log),
		mid.Metrics(),
		mid.Cors("*"),
		mid.Panics(),
	)

	app.Handle(http.MethodGet, "v1", "/ok", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, map[string]string{"status": "ok"}, http.StatusOK)
	})
	app.Handle(http.MethodGet, "v1", "/trusted", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return errs.NewTrusted(errors.New("no such block"), http.StatusNotFound)
	})
	app.Handle(http.MethodGet, "v1", "/panic", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		panic("boom")
	})

	type table struct {
		path   string
		status int
	}

	tt := []table{
		{path: "/v1/ok", status: http.StatusOK},
		{path: "/v1/trusted", status: http.StatusNotFound},
		{path: "/v1/panic", status: http.StatusInternalServerError},
	}

	t.Log("Given the need to run requests through the middleware.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen requesting %s.", testID, tst.path)
			{
				r := httptest.NewRequest(http.MethodGet, tst.path, nil)
				w := httptest.NewRecorder()
				app.ServeHTTP(w, r)

				if w.Code != tst.status {
					t.Fatalf("\t%s\tTest %d:\tShould receive status %d, got %d.", failed, testID, tst.status, w.Code)
				}
				t.Logf("\t%s\tTest %d:\tShould receive status %d.", success, testID, tst.status)

				if w.Header().Get("Access-Control-Allow-Origin") != "*" {
					t.Fatalf("\t%s\tTest %d:\tShould set the CORS headers.", failed, testID)
				}
				t.Logf("\t%s\tTest %d:\tShould set the CORS headers.", success, testID)
			}
		}
	}
}

func Test_Cors(t *testing.T) {
	type table struct {
		name    string
		allowed []string
		origin  string
		exp     string
	}

	tt := []table{
		{name: "any", allowed: []string{"*"}, origin: "https://viewer.local", exp: "*"},
		{name: "listed", allowed: []string{"https://a.local", "https://viewer.local"}, origin: "https://viewer.local", exp: "https://viewer.local"},
		{name: "unlisted", allowed: []string{"https://a.local"}, origin: "https://viewer.local", exp: ""},
		{name: "noorigin", allowed: []string{"https://a.local"}, origin: "", exp: ""},
	}

	t.Log("Given the need to answer cross origin requests for allowed origins only.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen the origin is %s.", testID, tst.name)
				{
					app := web.NewApp(make(chan os.Signal, 1), mid.Cors(tst.allowed...))
					app.Handle(http.MethodGet, "v1", "/ok", func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
						return web.Respond(ctx, w, nil, http.StatusNoContent)
					})

					r := httptest.NewRequest(http.MethodGet, "/v1/ok", nil)
					if tst.origin != "" {
						r.Header.Set("Origin", tst.origin)
					}
					w := httptest.NewRecorder()
					app.ServeHTTP(w, r)

					if got := w.Header().Get("Access-Control-Allow-Origin"); got != tst.exp {
						t.Fatalf("\t%s\tTest %d:\tShould allow origin %q : got %q", failed, testID, tst.exp, got)
					}
					t.Logf("\t%s\tTest %d:\tShould allow origin %q.", success, testID, tst.exp)

					if w.Header().Get("Access-Control-Allow-Methods") != "GET, POST, OPTIONS" {
						t.Fatalf("\t%s\tTest %d:\tShould list the node's methods.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould list the node's methods.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}
