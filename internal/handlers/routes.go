package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/juju/loggo"

	"statesapi/internal/auth"
	"statesapi/internal/config"
	"statesapi/internal/metrics"
	"statesapi/internal/statedata"
	"statesapi/internal/store"
)

// Deps is everything the router needs.
type Deps struct {
	Table   *statedata.Table
	Store   store.Store
	Auth    config.Auth
	Metrics *metrics.Metrics
	Timeout time.Duration
}

// NewRouter wires the states API onto a chi router.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  loggoPrinter{loggo.GetLogger("statesapi.http")},
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	if d.Timeout > 0 {
		r.Use(middleware.Timeout(d.Timeout))
	}
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "404 Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method))
	})

	r.Get("/", IndexHandler())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	guard := auth.WriteGuard(d.Auth)
	r.Route("/states", func(r chi.Router) {
		r.Get("/", ListStatesHandler(d.Table, d.Store))
		r.Route("/{state}", func(r chi.Router) {
			r.Use(auth.StateDataMiddleware(d.Table, d.Store))
			r.Get("/", GetStateHandler())
			r.Get("/funfact", GetFunFactHandler())
			r.With(guard).Post("/funfact", AddFunFactsHandler(d.Store))
			r.With(guard).Patch("/funfact", ReplaceFunFactHandler(d.Store))
			r.With(guard).Delete("/funfact", DeleteFunFactHandler(d.Store))
			r.Get("/{property}", GetStatePropertyHandler())
		})
	})
	return r
}

// IndexHandler describes the available endpoints.
func IndexHandler() http.HandlerFunc {
	endpoints := []string{
		"GET /states/?contig=true|false",
		"GET /states/{state}",
		"GET /states/{state}/{property}",
		"GET /states/{state}/funfact",
		"POST /states/{state}/funfact",
		"PATCH /states/{state}/funfact",
		"DELETE /states/{state}/funfact",
	}
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"name":      "US States API",
			"endpoints": endpoints,
		})
	}
}

// loggoPrinter lets chi's request logger write through loggo.
type loggoPrinter struct {
	loggo.Logger
}

func (p loggoPrinter) Print(v ...any) {
	p.Infof("%s", fmt.Sprint(v...))
}
